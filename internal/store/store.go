package store

import (
	"context"
	"errors"

	"github.com/towndigest/towndigest/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for editions, aliases,
// emails, and the extracted announcement/event records.
type Store interface {
	// === Editions and aliases (administrative seeding + routing) ===

	CreateEdition(ctx context.Context, edition *model.Edition) error
	GetEditionBySlug(ctx context.Context, slug string) (*model.Edition, error)
	ListEditions(ctx context.Context) ([]model.Edition, error)
	DeleteEdition(ctx context.Context, id string) error

	CreateAlias(ctx context.Context, alias *model.EmailAlias) error

	// FindAliasByAddresses returns the first alias whose address matches
	// one of the given addresses, or (nil, nil) when none match.
	FindAliasByAddresses(ctx context.Context, addresses []string) (*model.EmailAlias, error)

	// === Emails ===

	// ExistingMessageIDs reports which of the given message identifiers
	// are already persisted.
	ExistingMessageIDs(ctx context.Context, messageIDs []string) (map[string]bool, error)

	// InsertEmails persists a batch of new messages in one transaction.
	// A conflicting message_id leaves the existing row untouched.
	InsertEmails(ctx context.Context, emails []*model.Email) error

	GetEmail(ctx context.Context, id string) (*model.Email, error)

	// AssignRouting sets the edition/alias references of an unrouted
	// message. The assignment happens exactly once; a second call fails.
	AssignRouting(ctx context.Context, emailID, editionID, aliasID string) error

	MarkEmailProcessed(ctx context.Context, emailID string) error
	ListUnroutedEmails(ctx context.Context) ([]model.Email, error)
	DeleteEmail(ctx context.Context, id string) error

	// === Extracted records ===

	// CreateAnnouncements persists announcement rows and links each to
	// the source message in one transaction.
	CreateAnnouncements(ctx context.Context, emailID string, announcements []*model.Announcement) error

	// CreateEvents persists event rows and links each to the source
	// message in one transaction.
	CreateEvents(ctx context.Context, emailID string, events []*model.Event) error

	DeleteAnnouncement(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, id string) error

	// === Read-only display queries ===

	ListAnnouncementsByEdition(ctx context.Context, editionID string) ([]model.Announcement, error)
	ListEventsByEdition(ctx context.Context, editionID string) ([]model.Event, error)
	ListAnnouncementsForEmail(ctx context.Context, emailID string) ([]model.Announcement, error)
	ListEventsForEmail(ctx context.Context, emailID string) ([]model.Event, error)
}
