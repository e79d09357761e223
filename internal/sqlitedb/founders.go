package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

const founderColumns = `id, organization_id, organization_name, name, role, previous_company,
	linkedin_url, twitter_url, profile_url, bio, created_at`

func scanFounder(row scanner) (*types.FounderRecord, error) {
	var (
		f                                               types.FounderRecord
		role, previous, linkedin, twitter, profile, bio *string
		createdAt                                       int64
	)
	if err := row.Scan(&f.ID, &f.OrganizationID, &f.OrganizationName, &f.Name,
		&role, &previous, &linkedin, &twitter, &profile, &bio, &createdAt); err != nil {
		return nil, err
	}
	f.Role = deref(role)
	f.PreviousCompany = deref(previous)
	f.LinkedInURL = deref(linkedin)
	f.TwitterURL = deref(twitter)
	f.ProfileURL = deref(profile)
	f.Bio = deref(bio)
	f.CreatedAt = fromNanos(createdAt)
	return &f, nil
}

func collectFounders(rows *sql.Rows) ([]types.FounderRecord, error) {
	defer rows.Close()
	var founders []types.FounderRecord
	for rows.Next() {
		f, err := scanFounder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan founder: %w", err)
		}
		founders = append(founders, *f)
	}
	return founders, rows.Err()
}

func updateFounderFields(ctx context.Context, tx *sql.Tx, f types.FounderRecord, now int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE founders SET role = ?, previous_company = ?, linkedin_url = ?,
		     twitter_url = ?, profile_url = ?, bio = ?, updated_at = ?
		 WHERE id = ?`,
		nullable(f.Role), nullable(f.PreviousCompany), nullable(f.LinkedInURL),
		nullable(f.TwitterURL), nullable(f.ProfileURL), nullable(f.Bio), now, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update founder %q: %w", f.Name, err)
	}
	return nil
}

// UpsertFounder stores rec under (organization, case-insensitive name). A new
// person is inserted; an existing row only has its empty fields filled from rec.
func (s *Store) UpsertFounder(ctx context.Context, rec types.FounderRecord) (types.UpsertOutcome, error) {
	rec.Name = strings.Join(strings.Fields(rec.Name), " ")
	key := rec.NameKey()
	if key == "" {
		return types.UpsertOutcome{}, fmt.Errorf("founder name cannot be empty")
	}
	if rec.OrganizationID == uuid.Nil {
		return types.UpsertOutcome{}, fmt.Errorf("founder %q has no organization", rec.Name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.UpsertOutcome{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := toNanos(s.now())
	var outcome types.UpsertOutcome
	existing, err := scanFounder(tx.QueryRowContext(ctx,
		`SELECT `+founderColumns+` FROM founders WHERE organization_id = ? AND name_key = ?`,
		rec.OrganizationID, key))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id := uuid.New()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO founders (id, organization_id, organization_name, name, name_key, role,
			     previous_company, linkedin_url, twitter_url, profile_url, bio, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, rec.OrganizationID, rec.OrganizationName, rec.Name, key, nullable(rec.Role),
			nullable(rec.PreviousCompany), nullable(rec.LinkedInURL), nullable(rec.TwitterURL),
			nullable(rec.ProfileURL), nullable(rec.Bio), now, now,
		)
		if err != nil {
			return types.UpsertOutcome{}, fmt.Errorf("failed to insert founder %q: %w", rec.Name, err)
		}
		outcome = types.UpsertOutcome{FounderID: id, Action: types.UpsertInserted}
	case err != nil:
		return types.UpsertOutcome{}, fmt.Errorf("failed to load founder %q: %w", rec.Name, err)
	default:
		merged, changed := reconcile.FillOnly(*existing, rec)
		outcome = types.UpsertOutcome{FounderID: existing.ID, Action: types.UpsertUnchanged, Changed: changed}
		if len(changed) > 0 {
			if err := updateFounderFields(ctx, tx, merged, now); err != nil {
				return types.UpsertOutcome{}, err
			}
			outcome.Action = types.UpsertUpdated
		}
	}

	if err := tx.Commit(); err != nil {
		return types.UpsertOutcome{}, fmt.Errorf("failed to commit founder %q: %w", rec.Name, err)
	}
	return outcome, nil
}

// ListFounders returns an organization's founders in insertion order.
func (s *Store) ListFounders(ctx context.Context, orgID uuid.UUID) ([]types.FounderRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+founderColumns+` FROM founders WHERE organization_id = ? ORDER BY created_at, rowid`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list founders: %w", err)
	}
	return collectFounders(rows)
}

// ListFounderNames returns the stored founder names of an organization.
func (s *Store) ListFounderNames(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	founders, err := s.ListFounders(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(founders))
	for i, f := range founders {
		names[i] = f.Name
	}
	return names, nil
}
