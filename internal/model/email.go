package model

import (
	"strings"
	"time"
)

// EmailStatus tracks how far a persisted message has moved through the
// pipeline.
type EmailStatus string

const (
	// EmailStatusReceived is the initial status of a fetched message.
	EmailStatusReceived EmailStatus = "received"

	// EmailStatusProcessed means both extraction passes completed.
	EmailStatusProcessed EmailStatus = "processed"
)

// Email is a message fetched from the mailbox. EditionID and
// EmailAliasID stay NULL until routing resolves an alias; they are set
// exactly once and never changed afterward.
type Email struct {
	ID           string      `db:"id"`
	EditionID    *string     `db:"edition_id"`
	EmailAliasID *string     `db:"email_alias_id"`
	Subject      string      `db:"subject"`
	FromName     string      `db:"from_name"`
	FromEmail    string      `db:"from_email"`
	ToEmails     string      `db:"to_emails"` // comma-separated recipient addresses
	MessageID    string      `db:"message_id"`
	ReceivedAt   time.Time   `db:"received_at"`
	BodyText     string      `db:"body_text"`
	BodyHTML     string      `db:"body_html"`
	Status       EmailStatus `db:"status"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// Routed reports whether the message has been assigned to an edition.
func (e *Email) Routed() bool {
	return e.EditionID != nil && e.EmailAliasID != nil
}

// BestBody returns the body used for extraction, preferring HTML over
// plain text when both are present.
func (e *Email) BestBody() string {
	if strings.TrimSpace(e.BodyHTML) != "" {
		return e.BodyHTML
	}
	return e.BodyText
}

// Recipients splits the stored recipient list into individual
// addresses, dropping empty entries.
func (e *Email) Recipients() []string {
	var addrs []string
	for _, part := range strings.Split(e.ToEmails, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
