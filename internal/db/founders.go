package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

const founderColumns = `id, organization_id, organization_name, name, role, previous_company,
	linkedin_url, twitter_url, profile_url, bio, created_at`

func scanFounder(row pgx.Row) (*types.FounderRecord, error) {
	var f types.FounderRecord
	var role, previous, linkedin, twitter, profile, bio *string
	if err := row.Scan(&f.ID, &f.OrganizationID, &f.OrganizationName, &f.Name,
		&role, &previous, &linkedin, &twitter, &profile, &bio, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Role = deref(role)
	f.PreviousCompany = deref(previous)
	f.LinkedInURL = deref(linkedin)
	f.TwitterURL = deref(twitter)
	f.ProfileURL = deref(profile)
	f.Bio = deref(bio)
	return &f, nil
}

func collectFounders(rows pgx.Rows) ([]types.FounderRecord, error) {
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

func updateFounderFields(ctx context.Context, tx pgx.Tx, f types.FounderRecord) error {
	_, err := tx.Exec(ctx,
		`UPDATE founders SET role = $2, previous_company = $3, linkedin_url = $4,
		     twitter_url = $5, profile_url = $6, bio = $7, updated_at = NOW()
		 WHERE id = $1`,
		f.ID, nullable(f.Role), nullable(f.PreviousCompany), nullable(f.LinkedInURL),
		nullable(f.TwitterURL), nullable(f.ProfileURL), nullable(f.Bio),
	)
	if err != nil {
		return fmt.Errorf("failed to update founder %q: %w", f.Name, err)
	}
	return nil
}

// UpsertFounder stores rec under (organization, case-insensitive name). A new
// person is inserted; an existing row only has its empty fields filled from
// rec. The row is locked for the read-merge-write so concurrent upserts of
// the same person cannot lose fields.
func (db *DB) UpsertFounder(ctx context.Context, rec types.FounderRecord) (types.UpsertOutcome, error) {
	rec.Name = strings.Join(strings.Fields(rec.Name), " ")
	key := rec.NameKey()
	if key == "" {
		return types.UpsertOutcome{}, fmt.Errorf("founder name cannot be empty")
	}
	if rec.OrganizationID == uuid.Nil {
		return types.UpsertOutcome{}, fmt.Errorf("founder %q has no organization", rec.Name)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return types.UpsertOutcome{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.New()
	tag, err := tx.Exec(ctx,
		`INSERT INTO founders (id, organization_id, organization_name, name, name_key, role,
		     previous_company, linkedin_url, twitter_url, profile_url, bio)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (organization_id, name_key) DO NOTHING`,
		id, rec.OrganizationID, rec.OrganizationName, rec.Name, key, nullable(rec.Role),
		nullable(rec.PreviousCompany), nullable(rec.LinkedInURL), nullable(rec.TwitterURL),
		nullable(rec.ProfileURL), nullable(rec.Bio),
	)
	if err != nil {
		return types.UpsertOutcome{}, fmt.Errorf("failed to insert founder %q: %w", rec.Name, err)
	}

	outcome := types.UpsertOutcome{FounderID: id, Action: types.UpsertInserted}
	if tag.RowsAffected() == 0 {
		existing, err := scanFounder(tx.QueryRow(ctx,
			`SELECT `+founderColumns+` FROM founders
			 WHERE organization_id = $1 AND name_key = $2 FOR UPDATE`, rec.OrganizationID, key))
		if err != nil {
			return types.UpsertOutcome{}, fmt.Errorf("failed to load founder %q: %w", rec.Name, err)
		}
		merged, changed := reconcile.FillOnly(*existing, rec)
		outcome = types.UpsertOutcome{FounderID: existing.ID, Action: types.UpsertUnchanged, Changed: changed}
		if len(changed) > 0 {
			if err := updateFounderFields(ctx, tx, merged); err != nil {
				return types.UpsertOutcome{}, err
			}
			outcome.Action = types.UpsertUpdated
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.UpsertOutcome{}, fmt.Errorf("failed to commit founder %q: %w", rec.Name, err)
	}
	return outcome, nil
}

// ListFounders returns an organization's founders in insertion order.
func (db *DB) ListFounders(ctx context.Context, orgID uuid.UUID) ([]types.FounderRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+founderColumns+` FROM founders WHERE organization_id = $1 ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list founders: %w", err)
	}
	return collectFounders(rows)
}

// ListFounderNames returns the stored founder names of an organization.
func (db *DB) ListFounderNames(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	founders, err := db.ListFounders(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(founders))
	for i, f := range founders {
		names[i] = f.Name
	}
	return names, nil
}
