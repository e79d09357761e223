package types

import (
	"time"

	"github.com/google/uuid"
)

// FounderRecord is the reconciled, persistable person. Empty strings stand for NULL.
type FounderRecord struct {
	ID               uuid.UUID `json:"id,omitempty"`
	OrganizationID   uuid.UUID `json:"organization_id" validate:"required"`
	OrganizationName string    `json:"organization_name"`
	Name             string    `json:"name" validate:"required,min=3"`
	Role             string    `json:"role,omitempty"`
	PreviousCompany  string    `json:"previous_company,omitempty"`
	LinkedInURL      string    `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	TwitterURL       string    `json:"twitter_url,omitempty" validate:"omitempty,url"`
	ProfileURL       string    `json:"profile_url,omitempty" validate:"omitempty,url"`
	Bio              string    `json:"bio,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// NameKey returns the identity key within the organization.
func (f *FounderRecord) NameKey() string {
	return IdentityKey(f.Name)
}

// FounderField names a fill-only scalar column.
type FounderField string

const (
	FieldRole            FounderField = "role"
	FieldPreviousCompany FounderField = "previous_company"
	FieldLinkedInURL     FounderField = "linkedin_url"
	FieldTwitterURL      FounderField = "twitter_url"
	FieldProfileURL      FounderField = "profile_url"
	FieldBio             FounderField = "bio"
)

// FillableFields lists the scalar fields subject to "most complete wins" merging, in column order.
var FillableFields = []FounderField{
	FieldRole,
	FieldPreviousCompany,
	FieldLinkedInURL,
	FieldTwitterURL,
	FieldProfileURL,
	FieldBio,
}

// Field returns a pointer to the named scalar so merge code can treat fields uniformly.
func (f *FounderRecord) Field(name FounderField) *string {
	switch name {
	case FieldRole:
		return &f.Role
	case FieldPreviousCompany:
		return &f.PreviousCompany
	case FieldLinkedInURL:
		return &f.LinkedInURL
	case FieldTwitterURL:
		return &f.TwitterURL
	case FieldProfileURL:
		return &f.ProfileURL
	case FieldBio:
		return &f.Bio
	default:
		return nil
	}
}
