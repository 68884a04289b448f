package model

import "time"

// Announcement is an unstructured civic notice extracted from one or
// more emails. Title may be empty; the body is markdown.
type Announcement struct {
	ID        string    `db:"id"`
	EditionID string    `db:"edition_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
