package model

import "time"

// EmailAlias is an inbound address bound to exactly one edition. The
// address is globally unique; routing matches message recipients
// against it.
type EmailAlias struct {
	ID        string    `db:"id"`
	EditionID string    `db:"edition_id"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
