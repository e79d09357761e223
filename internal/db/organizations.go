package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

const organizationColumns = `id, name, batch, description, website, location, industry,
	is_hiring, canonical_url, created_at, last_extracted_at`

func scanOrganization(row pgx.Row) (*types.OrganizationRecord, error) {
	var o types.OrganizationRecord
	var batch, description, website, location, industry, canonical *string
	if err := row.Scan(&o.ID, &o.Name, &batch, &description, &website, &location, &industry,
		&o.IsHiring, &canonical, &o.CreatedAt, &o.LastExtractedAt); err != nil {
		return nil, err
	}
	o.Batch = deref(batch)
	o.Description = deref(description)
	o.Website = deref(website)
	o.Location = deref(location)
	o.Industry = deref(industry)
	o.CanonicalURL = deref(canonical)
	return &o, nil
}

func collectOrganizations(rows pgx.Rows) ([]types.OrganizationRecord, error) {
	defer rows.Close()
	var orgs []types.OrganizationRecord
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}

// GetOrganization retrieves an organization by ID. Returns nil if not found.
func (db *DB) GetOrganization(ctx context.Context, id uuid.UUID) (*types.OrganizationRecord, error) {
	o, err := scanOrganization(db.pool.QueryRow(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return o, nil
}

// FindOrCreateOrganization returns the organization with the same canonical URL,
// or with the same name when no URL is given, creating it if none exists.
func (db *DB) FindOrCreateOrganization(ctx context.Context, org types.OrganizationRecord) (*types.OrganizationRecord, bool, error) {
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return nil, false, fmt.Errorf("organization name cannot be empty")
	}
	if org.CanonicalURL != "" {
		org.CanonicalURL = dom.NormalizeURL(org.CanonicalURL)
	}

	var existing *types.OrganizationRecord
	var err error
	if org.CanonicalURL != "" {
		existing, err = scanOrganization(db.pool.QueryRow(ctx,
			`SELECT `+organizationColumns+` FROM organizations
			 WHERE canonical_url = $1 ORDER BY created_at LIMIT 1`, org.CanonicalURL))
	} else {
		existing, err = scanOrganization(db.pool.QueryRow(ctx,
			`SELECT `+organizationColumns+` FROM organizations
			 WHERE name = $1 ORDER BY created_at LIMIT 1`, org.Name))
	}
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up organization: %w", err)
	}

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	created, err := scanOrganization(db.pool.QueryRow(ctx,
		`INSERT INTO organizations (id, name, batch, description, website, location, industry, is_hiring, canonical_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+organizationColumns,
		org.ID, org.Name, nullable(org.Batch), nullable(org.Description), nullable(org.Website),
		nullable(org.Location), nullable(org.Industry), org.IsHiring, nullable(org.CanonicalURL),
	))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create organization: %w", err)
	}
	return created, true, nil
}

// ListOrganizations returns every organization, oldest first.
func (db *DB) ListOrganizations(ctx context.Context) ([]types.OrganizationRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return collectOrganizations(rows)
}

// FindOrganizationsPendingExtraction returns organizations with a fetchable
// canonical URL that have no founders, were never extracted, or were
// extracted longer ago than filter.StaleAfter. Listing URLs carrying a query
// string are not organization pages and are excluded.
func (db *DB) FindOrganizationsPendingExtraction(ctx context.Context, filter types.PendingFilter) ([]types.OrganizationRecord, error) {
	var limit any
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations o
		 WHERE o.canonical_url IS NOT NULL
		   AND o.canonical_url <> ''
		   AND strpos(o.canonical_url, '?') = 0
		   AND (
		       NOT EXISTS (SELECT 1 FROM founders f WHERE f.organization_id = o.id)
		       OR o.last_extracted_at IS NULL
		       OR ($1::float8 > 0 AND o.last_extracted_at < NOW() - make_interval(secs => $1::float8))
		   )
		 ORDER BY o.last_extracted_at NULLS FIRST, o.created_at, o.id
		 LIMIT $2`,
		filter.StaleAfter.Seconds(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending organizations: %w", err)
	}
	return collectOrganizations(rows)
}

// MarkOrganizationExtracted records a completed extraction run.
func (db *DB) MarkOrganizationExtracted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE organizations SET last_extracted_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark organization extracted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("organization not found: %s", id)
	}
	return nil
}

// MergeOrganizations moves every founder of the discarded organizations to
// keepID and deletes the discarded rows, in one transaction. A founder whose
// name already exists under keepID is fill-only merged into that row.
func (db *DB) MergeOrganizations(ctx context.Context, keepID uuid.UUID, discardIDs []uuid.UUID) error {
	discard := make([]string, 0, len(discardIDs))
	for _, id := range discardIDs {
		if id != keepID {
			discard = append(discard, id.String())
		}
	}
	if len(discard) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var keepName string
	if err := tx.QueryRow(ctx,
		`SELECT name FROM organizations WHERE id = $1 FOR UPDATE`, keepID).Scan(&keepName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("organization to keep not found: %s", keepID)
		}
		return fmt.Errorf("failed to lock organization: %w", err)
	}
	displayName := (&types.OrganizationRecord{Name: keepName}).DisplayName()

	rows, err := tx.Query(ctx,
		`SELECT `+founderColumns+` FROM founders
		 WHERE organization_id = ANY($1::uuid[])
		 ORDER BY created_at, id FOR UPDATE`, discard)
	if err != nil {
		return fmt.Errorf("failed to list founders to move: %w", err)
	}
	moving, err := collectFounders(rows)
	if err != nil {
		return err
	}

	for _, f := range moving {
		kept, err := scanFounder(tx.QueryRow(ctx,
			`SELECT `+founderColumns+` FROM founders
			 WHERE organization_id = $1 AND name_key = $2 FOR UPDATE`, keepID, f.NameKey()))
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if _, err := tx.Exec(ctx,
				`UPDATE founders SET organization_id = $2, organization_name = $3, updated_at = NOW()
				 WHERE id = $1`, f.ID, keepID, displayName); err != nil {
				return fmt.Errorf("failed to move founder %q: %w", f.Name, err)
			}
			continue
		case err != nil:
			return fmt.Errorf("failed to look up founder %q: %w", f.Name, err)
		}

		merged, changed := reconcile.FillOnly(*kept, f)
		if len(changed) > 0 {
			if err := updateFounderFields(ctx, tx, merged); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM founders WHERE id = $1`, f.ID); err != nil {
			return fmt.Errorf("failed to remove merged founder %q: %w", f.Name, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM organizations WHERE id = ANY($1::uuid[])`, discard); err != nil {
		return fmt.Errorf("failed to delete duplicate organizations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit merge: %w", err)
	}
	return nil
}
