package model

import "time"

// Edition is a geographic publication grouping emails, events, and
// announcements. Deleting an edition cascades to everything it owns.
type Edition struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	State       string    `db:"state"` // two-letter state code
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
