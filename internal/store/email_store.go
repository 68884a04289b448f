package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/towndigest/towndigest/internal/model"
)

// ExistingMessageIDs reports which of the given message identifiers are
// already persisted.
func (s *SQLiteStore) ExistingMessageIDs(ctx context.Context, messageIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(messageIDs))
	if len(messageIDs) == 0 {
		return existing, nil
	}

	query, args, err := sqlx.In(
		"SELECT message_id FROM emails WHERE message_id IN (?)", messageIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("building message id query: %w", err)
	}

	var found []string
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying existing message ids: %w", err)
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// InsertEmails persists a batch of new messages in one transaction.
// The unique index on message_id is the authoritative guard against
// concurrent runs; a conflicting row is left untouched.
func (s *SQLiteStore) InsertEmails(ctx context.Context, emails []*model.Email) error {
	if len(emails) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO emails (
			id, edition_id, email_alias_id,
			subject, from_name, from_email, to_emails,
			message_id, received_at, body_text, body_html,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing email insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range emails {
		if e.ID == "" {
			e.ID = newID()
		}
		if e.Status == "" {
			e.Status = model.EmailStatusReceived
		}
		ts := now()
		e.CreatedAt = ts
		e.UpdatedAt = ts

		_, err = stmt.ExecContext(ctx,
			e.ID, e.EditionID, e.EmailAliasID,
			e.Subject, e.FromName, e.FromEmail, e.ToEmails,
			e.MessageID, e.ReceivedAt.UTC(), e.BodyText, e.BodyHTML,
			string(e.Status), e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting email %s: %w", e.MessageID, err)
		}
	}

	return tx.Commit()
}

// GetEmail retrieves a single email by its ID.
func (s *SQLiteStore) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	var email model.Email
	err := s.db.GetContext(ctx, &email, "SELECT * FROM emails WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("email %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting email %s: %w", id, err)
	}

	return &email, nil
}

// AssignRouting sets the edition/alias references of an unrouted email.
// The WHERE clause refuses a second assignment: the routing of a
// message is set exactly once and never changed afterward.
func (s *SQLiteStore) AssignRouting(ctx context.Context, emailID, editionID, aliasID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE emails
		SET edition_id = ?, email_alias_id = ?, updated_at = ?
		WHERE id = ? AND edition_id IS NULL AND email_alias_id IS NULL`,
		editionID, aliasID, now(), emailID,
	)
	if err != nil {
		return fmt.Errorf("assigning routing for email %s: %w", emailID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assigning routing for email %s: %w", emailID, err)
	}
	if affected == 0 {
		return fmt.Errorf("email %s is missing or already routed", emailID)
	}

	return nil
}

// MarkEmailProcessed transitions an email to the processed status.
func (s *SQLiteStore) MarkEmailProcessed(ctx context.Context, emailID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE emails SET status = ?, updated_at = ? WHERE id = ?",
		string(model.EmailStatusProcessed), now(), emailID,
	)
	if err != nil {
		return fmt.Errorf("marking email %s processed: %w", emailID, err)
	}
	return nil
}

// ListUnroutedEmails retrieves persisted messages that never matched an
// alias, oldest first, for manual reconciliation.
func (s *SQLiteStore) ListUnroutedEmails(ctx context.Context) ([]model.Email, error) {
	var emails []model.Email
	err := s.db.SelectContext(ctx, &emails,
		"SELECT * FROM emails WHERE edition_id IS NULL ORDER BY received_at",
	)
	if err != nil {
		return nil, fmt.Errorf("listing unrouted emails: %w", err)
	}
	return emails, nil
}

// DeleteEmail removes an email; its join rows cascade, the linked
// announcements and events stay.
func (s *SQLiteStore) DeleteEmail(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM emails WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting email %s: %w", id, err)
	}
	return nil
}
