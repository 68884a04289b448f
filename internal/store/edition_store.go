package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/towndigest/towndigest/internal/model"
)

// CreateEdition inserts a new edition, generating an ID if absent.
func (s *SQLiteStore) CreateEdition(ctx context.Context, edition *model.Edition) error {
	if edition.ID == "" {
		edition.ID = newID()
	}
	ts := now()
	edition.CreatedAt = ts
	edition.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO editions (id, name, slug, state, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		edition.ID, edition.Name, edition.Slug, edition.State,
		edition.Description, edition.CreatedAt, edition.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating edition %s: %w", edition.Slug, err)
	}

	return nil
}

// GetEditionBySlug retrieves a single edition by its unique slug.
func (s *SQLiteStore) GetEditionBySlug(ctx context.Context, slug string) (*model.Edition, error) {
	var edition model.Edition
	err := s.db.GetContext(ctx, &edition,
		"SELECT * FROM editions WHERE slug = ?", slug,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("edition %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting edition %s: %w", slug, err)
	}

	return &edition, nil
}

// ListEditions retrieves all editions ordered by name.
func (s *SQLiteStore) ListEditions(ctx context.Context) ([]model.Edition, error) {
	var editions []model.Edition
	err := s.db.SelectContext(ctx, &editions, "SELECT * FROM editions ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing editions: %w", err)
	}
	return editions, nil
}

// DeleteEdition removes an edition. Aliases, emails, events, and
// announcements owned by it go with it via foreign key cascades.
func (s *SQLiteStore) DeleteEdition(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM editions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting edition %s: %w", id, err)
	}
	return nil
}

// CreateAlias inserts a new email alias, generating an ID if absent.
func (s *SQLiteStore) CreateAlias(ctx context.Context, alias *model.EmailAlias) error {
	if alias.ID == "" {
		alias.ID = newID()
	}
	ts := now()
	alias.CreatedAt = ts
	alias.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_aliases (id, edition_id, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		alias.ID, alias.EditionID, alias.Address, alias.CreatedAt, alias.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating alias %s: %w", alias.Address, err)
	}

	return nil
}

// FindAliasByAddresses returns the first alias whose address matches one
// of the given addresses. A miss is not an error: it returns (nil, nil).
func (s *SQLiteStore) FindAliasByAddresses(ctx context.Context, addresses []string) (*model.EmailAlias, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM email_aliases WHERE address IN (?) LIMIT 1", addresses,
	)
	if err != nil {
		return nil, fmt.Errorf("building alias query: %w", err)
	}

	var alias model.EmailAlias
	err = s.db.GetContext(ctx, &alias, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding alias: %w", err)
	}

	return &alias, nil
}
