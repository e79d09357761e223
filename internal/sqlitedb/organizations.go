package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

const organizationColumns = `id, name, batch, description, website, location, industry,
	is_hiring, canonical_url, created_at, last_extracted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row scanner) (*types.OrganizationRecord, error) {
	var (
		o                                                       types.OrganizationRecord
		batch, description, website, location, industry, canon *string
		createdAt                                               int64
		extractedAt                                             *int64
	)
	if err := row.Scan(&o.ID, &o.Name, &batch, &description, &website, &location, &industry,
		&o.IsHiring, &canon, &createdAt, &extractedAt); err != nil {
		return nil, err
	}
	o.Batch = deref(batch)
	o.Description = deref(description)
	o.Website = deref(website)
	o.Location = deref(location)
	o.Industry = deref(industry)
	o.CanonicalURL = deref(canon)
	o.CreatedAt = fromNanos(createdAt)
	o.LastExtractedAt = fromNullNanos(extractedAt)
	return &o, nil
}

func collectOrganizations(rows *sql.Rows) ([]types.OrganizationRecord, error) {
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
func (s *Store) GetOrganization(ctx context.Context, id uuid.UUID) (*types.OrganizationRecord, error) {
	o, err := scanOrganization(s.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return o, nil
}

// FindOrCreateOrganization returns the organization with the same canonical URL,
// or with the same name when no URL is given, creating it if none exists.
func (s *Store) FindOrCreateOrganization(ctx context.Context, org types.OrganizationRecord) (*types.OrganizationRecord, bool, error) {
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return nil, false, fmt.Errorf("organization name cannot be empty")
	}
	if org.CanonicalURL != "" {
		org.CanonicalURL = dom.NormalizeURL(org.CanonicalURL)
	}

	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE name = ? ORDER BY created_at, rowid LIMIT 1`
	arg := org.Name
	if org.CanonicalURL != "" {
		query = `SELECT ` + organizationColumns + ` FROM organizations WHERE canonical_url = ? ORDER BY created_at, rowid LIMIT 1`
		arg = org.CanonicalURL
	}
	existing, err := scanOrganization(s.db.QueryRowContext(ctx, query, arg))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up organization: %w", err)
	}

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = s.now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, batch, description, website, location, industry, is_hiring, canonical_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, nullable(org.Batch), nullable(org.Description), nullable(org.Website),
		nullable(org.Location), nullable(org.Industry), org.IsHiring, nullable(org.CanonicalURL),
		toNanos(org.CreatedAt),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create organization: %w", err)
	}
	org.CreatedAt = fromNanos(toNanos(org.CreatedAt))
	org.LastExtractedAt = nil
	return &org, true, nil
}

// ListOrganizations returns every organization, oldest first.
func (s *Store) ListOrganizations(ctx context.Context) ([]types.OrganizationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return collectOrganizations(rows)
}

// FindOrganizationsPendingExtraction returns organizations with a fetchable
// canonical URL that have no founders, were never extracted, or were
// extracted longer ago than filter.StaleAfter. Listing URLs carrying a query
// string are excluded.
func (s *Store) FindOrganizationsPendingExtraction(ctx context.Context, filter types.PendingFilter) ([]types.OrganizationRecord, error) {
	limit := -1
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	var cutoff int64
	if filter.StaleAfter > 0 {
		cutoff = toNanos(s.now().Add(-filter.StaleAfter))
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations o
		 WHERE o.canonical_url IS NOT NULL
		   AND o.canonical_url <> ''
		   AND instr(o.canonical_url, '?') = 0
		   AND (
		       NOT EXISTS (SELECT 1 FROM founders f WHERE f.organization_id = o.id)
		       OR o.last_extracted_at IS NULL
		       OR (? > 0 AND o.last_extracted_at < ?)
		   )
		 ORDER BY o.last_extracted_at IS NOT NULL, o.last_extracted_at, o.created_at, o.rowid
		 LIMIT ?`,
		cutoff, cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending organizations: %w", err)
	}
	return collectOrganizations(rows)
}

// MarkOrganizationExtracted records a completed extraction run.
func (s *Store) MarkOrganizationExtracted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET last_extracted_at = ? WHERE id = ?`, toNanos(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark organization extracted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("organization not found: %s", id)
	}
	return nil
}

// MergeOrganizations moves every founder of the discarded organizations to
// keepID and deletes the discarded rows, in one transaction. A founder whose
// name already exists under keepID is fill-only merged into that row.
func (s *Store) MergeOrganizations(ctx context.Context, keepID uuid.UUID, discardIDs []uuid.UUID) error {
	var discard []uuid.UUID
	for _, id := range discardIDs {
		if id != keepID {
			discard = append(discard, id)
		}
	}
	if len(discard) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var keepName string
	if err := tx.QueryRowContext(ctx, `SELECT name FROM organizations WHERE id = ?`, keepID).Scan(&keepName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("organization to keep not found: %s", keepID)
		}
		return fmt.Errorf("failed to load organization: %w", err)
	}
	displayName := (&types.OrganizationRecord{Name: keepName}).DisplayName()
	now := toNanos(s.now())

	for _, orgID := range discard {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+founderColumns+` FROM founders WHERE organization_id = ? ORDER BY created_at, rowid`, orgID)
		if err != nil {
			return fmt.Errorf("failed to list founders to move: %w", err)
		}
		moving, err := collectFounders(rows)
		if err != nil {
			return err
		}

		for _, f := range moving {
			kept, err := scanFounder(tx.QueryRowContext(ctx,
				`SELECT `+founderColumns+` FROM founders WHERE organization_id = ? AND name_key = ?`,
				keepID, f.NameKey()))
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if _, err := tx.ExecContext(ctx,
					`UPDATE founders SET organization_id = ?, organization_name = ?, updated_at = ? WHERE id = ?`,
					keepID, displayName, now, f.ID); err != nil {
					return fmt.Errorf("failed to move founder %q: %w", f.Name, err)
				}
				continue
			case err != nil:
				return fmt.Errorf("failed to look up founder %q: %w", f.Name, err)
			}

			merged, changed := reconcile.FillOnly(*kept, f)
			if len(changed) > 0 {
				if err := updateFounderFields(ctx, tx, merged, now); err != nil {
					return err
				}
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM founders WHERE id = ?`, f.ID); err != nil {
				return fmt.Errorf("failed to remove merged founder %q: %w", f.Name, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, orgID); err != nil {
			return fmt.Errorf("failed to delete duplicate organization %s: %w", orgID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit merge: %w", err)
	}
	return nil
}
