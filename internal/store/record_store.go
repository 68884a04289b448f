package store

import (
	"context"
	"fmt"

	"github.com/towndigest/towndigest/internal/model"
)

// CreateAnnouncements persists announcement rows and links each to the
// source message in one transaction.
func (s *SQLiteStore) CreateAnnouncements(ctx context.Context, emailID string, announcements []*model.Announcement) error {
	if len(announcements) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range announcements {
		if a.ID == "" {
			a.ID = newID()
		}
		ts := now()
		a.CreatedAt = ts
		a.UpdatedAt = ts

		_, err = tx.ExecContext(ctx, `
			INSERT INTO announcements (id, edition_id, title, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.EditionID, a.Title, a.Body, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting announcement: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO email_announcements (email_id, announcement_id) VALUES (?, ?)",
			emailID, a.ID,
		)
		if err != nil {
			return fmt.Errorf("linking announcement to email %s: %w", emailID, err)
		}
	}

	return tx.Commit()
}

// CreateEvents persists event rows and links each to the source message
// in one transaction.
func (s *SQLiteStore) CreateEvents(ctx context.Context, emailID string, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		if e.ID == "" {
			e.ID = newID()
		}
		ts := now()
		e.CreatedAt = ts
		e.UpdatedAt = ts

		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (
				id, edition_id, title, description, location,
				start_date, start_time, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.EditionID, e.Title, e.Description, e.Location,
			e.StartDate, e.StartTime, e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO email_events (email_id, event_id) VALUES (?, ?)",
			emailID, e.ID,
		)
		if err != nil {
			return fmt.Errorf("linking event to email %s: %w", emailID, err)
		}
	}

	return tx.Commit()
}

// DeleteAnnouncement removes an announcement; its join rows cascade,
// the source messages stay.
func (s *SQLiteStore) DeleteAnnouncement(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting announcement %s: %w", id, err)
	}
	return nil
}

// DeleteEvent removes an event; its join rows cascade, the source
// messages stay.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return nil
}

// ListAnnouncementsByEdition retrieves an edition's announcements,
// newest first.
func (s *SQLiteStore) ListAnnouncementsByEdition(ctx context.Context, editionID string) ([]model.Announcement, error) {
	var announcements []model.Announcement
	err := s.db.SelectContext(ctx, &announcements,
		"SELECT * FROM announcements WHERE edition_id = ? ORDER BY created_at DESC",
		editionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing announcements for edition %s: %w", editionID, err)
	}
	return announcements, nil
}

// ListEventsByEdition retrieves an edition's events ordered by start
// date.
func (s *SQLiteStore) ListEventsByEdition(ctx context.Context, editionID string) ([]model.Event, error) {
	var events []model.Event
	err := s.db.SelectContext(ctx, &events,
		"SELECT * FROM events WHERE edition_id = ? ORDER BY start_date, start_time",
		editionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events for edition %s: %w", editionID, err)
	}
	return events, nil
}

// ListAnnouncementsForEmail retrieves the announcements linked to a
// source message.
func (s *SQLiteStore) ListAnnouncementsForEmail(ctx context.Context, emailID string) ([]model.Announcement, error) {
	var announcements []model.Announcement
	err := s.db.SelectContext(ctx, &announcements, `
		SELECT a.* FROM announcements a
		JOIN email_announcements ea ON ea.announcement_id = a.id
		WHERE ea.email_id = ?
		ORDER BY a.created_at`,
		emailID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing announcements for email %s: %w", emailID, err)
	}
	return announcements, nil
}

// ListEventsForEmail retrieves the events linked to a source message.
func (s *SQLiteStore) ListEventsForEmail(ctx context.Context, emailID string) ([]model.Event, error) {
	var events []model.Event
	err := s.db.SelectContext(ctx, &events, `
		SELECT e.* FROM events e
		JOIN email_events ee ON ee.event_id = e.id
		WHERE ee.email_id = ?
		ORDER BY e.start_date, e.start_time`,
		emailID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events for email %s: %w", emailID, err)
	}
	return events, nil
}
