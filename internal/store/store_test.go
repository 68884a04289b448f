package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/towndigest/towndigest/internal/model"
	"github.com/towndigest/towndigest/internal/store"
	"github.com/towndigest/towndigest/tests/testutil"
)

func newEdition(t *testing.T, ctx context.Context, s store.Store, slug string) *model.Edition {
	t.Helper()
	edition := &model.Edition{
		Name:        "Springfield Digest",
		Slug:        slug,
		State:       "MA",
		Description: "Weekly civic newsletter",
	}
	require.NoError(t, s.CreateEdition(ctx, edition))
	return edition
}

func newAlias(t *testing.T, ctx context.Context, s store.Store, editionID, address string) *model.EmailAlias {
	t.Helper()
	alias := &model.EmailAlias{EditionID: editionID, Address: address}
	require.NoError(t, s.CreateAlias(ctx, alias))
	return alias
}

func newEmail(messageID string) *model.Email {
	return &model.Email{
		Subject:    "Weekly Digest",
		FromName:   "Town Clerk",
		FromEmail:  "clerk@example.com",
		ToEmails:   "springfield@towndigest.example",
		MessageID:  messageID,
		ReceivedAt: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
		BodyText:   "Plain text body.",
		Status:     model.EmailStatusReceived,
	}
}

func TestEditionLookup(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created := newEdition(t, ctx, s, "springfield-ma")

	got, err := s.GetEditionBySlug(ctx, "springfield-ma")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "Springfield Digest", got.Name)

	_, err = s.GetEditionBySlug(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	editions, err := s.ListEditions(ctx)
	require.NoError(t, err)
	require.Len(t, editions, 1)
}

func TestFindAliasByAddresses(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	edition := newEdition(t, ctx, s, "springfield-ma")
	alias := newAlias(t, ctx, s, edition.ID, "springfield@towndigest.example")

	got, err := s.FindAliasByAddresses(ctx, []string{
		"someone@else.example",
		"springfield@towndigest.example",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, alias.ID, got.ID)
	require.Equal(t, edition.ID, got.EditionID)

	// No match is not an error.
	got, err = s.FindAliasByAddresses(ctx, []string{"nobody@nowhere.example"})
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = s.FindAliasByAddresses(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInsertEmailsDeduplicates(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := newEmail("digest-1@example.com")
	require.NoError(t, s.InsertEmails(ctx, []*model.Email{first}))
	require.NotEmpty(t, first.ID)
	require.Equal(t, model.EmailStatusReceived, first.Status)

	existing, err := s.ExistingMessageIDs(ctx, []string{"digest-1@example.com", "digest-2@example.com"})
	require.NoError(t, err)
	require.True(t, existing["digest-1@example.com"])
	require.False(t, existing["digest-2@example.com"])

	// Re-inserting the same message identifier is silently ignored.
	dup := newEmail("digest-1@example.com")
	require.NoError(t, s.InsertEmails(ctx, []*model.Email{dup}))

	unrouted, err := s.ListUnroutedEmails(ctx)
	require.NoError(t, err)
	require.Len(t, unrouted, 1)
	require.Equal(t, first.ID, unrouted[0].ID)
}

func TestAssignRoutingHappensOnce(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	edition := newEdition(t, ctx, s, "springfield-ma")
	alias := newAlias(t, ctx, s, edition.ID, "springfield@towndigest.example")

	email := newEmail("digest-1@example.com")
	require.NoError(t, s.InsertEmails(ctx, []*model.Email{email}))

	require.NoError(t, s.AssignRouting(ctx, email.ID, edition.ID, alias.ID))

	got, err := s.GetEmail(ctx, email.ID)
	require.NoError(t, err)
	require.True(t, got.Routed())
	require.Equal(t, edition.ID, *got.EditionID)
	require.Equal(t, alias.ID, *got.EmailAliasID)

	err = s.AssignRouting(ctx, email.ID, edition.ID, alias.ID)
	require.Error(t, err)

	unrouted, err := s.ListUnroutedEmails(ctx)
	require.NoError(t, err)
	require.Empty(t, unrouted)
}

func TestMarkEmailProcessed(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	email := newEmail("digest-1@example.com")
	require.NoError(t, s.InsertEmails(ctx, []*model.Email{email}))
	require.NoError(t, s.MarkEmailProcessed(ctx, email.ID))

	got, err := s.GetEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Equal(t, model.EmailStatusProcessed, got.Status)
}

func TestGetEmailNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.GetEmail(context.Background(), "no-such-id")
	require.ErrorIs(t, err, store.ErrNotFound)
}

// routedEmailWithRecords persists a fully ingested message: routed,
// with one announcement and one event linked to it.
func routedEmailWithRecords(t *testing.T, ctx context.Context, s store.Store) (*model.Edition, *model.Email, model.Announcement, model.Event) {
	t.Helper()

	edition := newEdition(t, ctx, s, "springfield-ma")
	alias := newAlias(t, ctx, s, edition.ID, "springfield@towndigest.example")

	email := newEmail("digest-1@example.com")
	require.NoError(t, s.InsertEmails(ctx, []*model.Email{email}))
	require.NoError(t, s.AssignRouting(ctx, email.ID, edition.ID, alias.ID))

	announcement := &model.Announcement{
		EditionID: edition.ID,
		Title:     "Road Closure",
		Body:      "Main St closed all week.",
	}
	require.NoError(t, s.CreateAnnouncements(ctx, email.ID, []*model.Announcement{announcement}))

	event := &model.Event{
		EditionID: edition.ID,
		Title:     "Town Fair",
		Location:  "Green",
		StartDate: "2026-03-15",
		StartTime: "10:00:00",
	}
	require.NoError(t, s.CreateEvents(ctx, email.ID, []*model.Event{event}))

	return edition, email, *announcement, *event
}

func TestRecordsLinkedToEmail(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	edition, email, announcement, event := routedEmailWithRecords(t, ctx, s)

	announcements, err := s.ListAnnouncementsForEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	require.Equal(t, announcement.ID, announcements[0].ID)

	events, err := s.ListEventsForEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, event.ID, events[0].ID)
	require.Equal(t, "2026-03-15", events[0].StartDate)

	byEdition, err := s.ListAnnouncementsByEdition(ctx, edition.ID)
	require.NoError(t, err)
	require.Len(t, byEdition, 1)
}

func TestDeleteEditionCascades(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	edition, email, _, _ := routedEmailWithRecords(t, ctx, s)

	require.NoError(t, s.DeleteEdition(ctx, edition.ID))

	_, err := s.GetEmail(ctx, email.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	announcements, err := s.ListAnnouncementsByEdition(ctx, edition.ID)
	require.NoError(t, err)
	require.Empty(t, announcements)

	events, err := s.ListEventsByEdition(ctx, edition.ID)
	require.NoError(t, err)
	require.Empty(t, events)

	alias, err := s.FindAliasByAddresses(ctx, []string{"springfield@towndigest.example"})
	require.NoError(t, err)
	require.Nil(t, alias)
}

func TestDeleteAnnouncementKeepsEmail(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, email, announcement, event := routedEmailWithRecords(t, ctx, s)

	require.NoError(t, s.DeleteAnnouncement(ctx, announcement.ID))

	// The source message and the sibling event stay in place; only the
	// announcement and its link row go away.
	_, err := s.GetEmail(ctx, email.ID)
	require.NoError(t, err)

	announcements, err := s.ListAnnouncementsForEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Empty(t, announcements)

	events, err := s.ListEventsForEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, s.DeleteEvent(ctx, event.ID))
	events, err = s.ListEventsForEmail(ctx, email.ID)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestDeleteEmailKeepsRecords(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	edition, email, announcement, event := routedEmailWithRecords(t, ctx, s)

	require.NoError(t, s.DeleteEmail(ctx, email.ID))

	_, err := s.GetEmail(ctx, email.ID)
	require.True(t, errors.Is(err, store.ErrNotFound))

	// Extracted records outlive their source message.
	announcements, err := s.ListAnnouncementsByEdition(ctx, edition.ID)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	require.Equal(t, announcement.ID, announcements[0].ID)

	events, err := s.ListEventsByEdition(ctx, edition.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, event.ID, events[0].ID)
}
