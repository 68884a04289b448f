package model

import "time"

// Event is a structured calendar item extracted from one or more
// emails. StartDate is an ISO calendar date (2006-01-02); StartTime is
// an ISO time of day, empty when unknown.
type Event struct {
	ID          string    `db:"id"`
	EditionID   string    `db:"edition_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"` // markdown, empty when absent
	Location    string    `db:"location"`
	StartDate   string    `db:"start_date"`
	StartTime   string    `db:"start_time"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
