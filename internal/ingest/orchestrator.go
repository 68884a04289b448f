// Package ingest composes the mailbox, storage, and extraction
// boundaries into the ingestion pipeline: fetch, dedupe-and-persist,
// mark-seen, then per-message routing and extraction.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/towndigest/towndigest/internal/extract"
	"github.com/towndigest/towndigest/internal/mail"
	"github.com/towndigest/towndigest/internal/model"
	"github.com/towndigest/towndigest/internal/store"
)

// Options holds pipeline tuning knobs for one orchestrator.
type Options struct {
	// FetchLimit caps how many mailbox references one run pulls.
	FetchLimit int

	// IncludeSeen lists all messages instead of only unseen ones.
	IncludeSeen bool
}

// Orchestrator runs the ingestion pipeline. It assumes at most one run
// in flight against a given mailbox; serializing concurrent runs is the
// scheduler's job, and the unique message_id index is the storage-level
// guard if that assumption is ever violated.
type Orchestrator struct {
	dialer    mail.Dialer
	store     store.Store
	extractor *extract.Extractor
	log       zerolog.Logger
	opts      Options
}

// New creates an Orchestrator.
func New(dialer mail.Dialer, st store.Store, extractor *extract.Extractor, log zerolog.Logger, opts Options) *Orchestrator {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = 100
	}
	return &Orchestrator{
		dialer:    dialer,
		store:     st,
		extractor: extractor,
		log:       log,
		opts:      opts,
	}
}

// MessageFailure records a per-message ingestion failure. Message-level
// failures never abort sibling messages.
type MessageFailure struct {
	EmailID string
	Err     error
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID         string
	Fetched       int
	Persisted     int
	Routed        int
	Unrouted      int
	Extracted     int
	Announcements int
	Events        int
	Failed        []MessageFailure
}

// Run executes one full ingestion pass. Stage-level failures (dial,
// list, fetch, batch persist, mark-seen) abort the run and are returned
// alongside the partial report; routing and extraction failures are
// isolated per message and recorded in the report instead.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.New().String()}
	log := o.log.With().Str("run_id", report.RunID).Logger()

	src, err := o.dialer.Dial(ctx)
	if err != nil {
		return report, err
	}
	defer func() { _ = src.Close() }()

	refs, err := src.ListRefs(ctx, !o.opts.IncludeSeen, o.opts.FetchLimit)
	if err != nil {
		return report, fmt.Errorf("listing messages: %w", err)
	}

	contents := make([]*mail.MessageContent, 0, len(refs))
	for _, ref := range refs {
		content, err := src.FetchContent(ctx, ref)
		if err != nil {
			return report, fmt.Errorf("fetching message uid %d: %w", ref.UID, err)
		}
		contents = append(contents, content)
	}
	report.Fetched = len(contents)

	if len(contents) == 0 {
		log.Info().Msg("no messages fetched")
		return report, nil
	}

	newEmails, err := o.persistNew(ctx, contents)
	if err != nil {
		return report, err
	}
	report.Persisted = len(newEmails)

	// Every fetched reference is acknowledged, not just newly persisted
	// ones, so messages already in storage stop being re-fetched.
	for _, ref := range refs {
		if err := src.MarkSeen(ctx, ref); err != nil {
			return report, fmt.Errorf("marking uid %d seen: %w", ref.UID, err)
		}
	}

	for _, email := range newEmails {
		if err := o.ingestEmail(ctx, log, email.ID, report); err != nil {
			report.Failed = append(report.Failed, MessageFailure{EmailID: email.ID, Err: err})
			log.Error().Err(err).Str("email_id", email.ID).Msg("message ingestion failed")
		}
	}

	log.Info().
		Int("fetched", report.Fetched).
		Int("persisted", report.Persisted).
		Int("routed", report.Routed).
		Int("unrouted", report.Unrouted).
		Int("extracted", report.Extracted).
		Int("failed", len(report.Failed)).
		Msg("ingestion run complete")

	return report, nil
}

// persistNew filters out messages whose identifier is already in
// storage and persists the remainder in one batch.
func (o *Orchestrator) persistNew(ctx context.Context, contents []*mail.MessageContent) ([]*model.Email, error) {
	ids := make([]string, 0, len(contents))
	for _, c := range contents {
		ids = append(ids, c.MessageID)
	}

	existing, err := o.store.ExistingMessageIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}

	var emails []*model.Email
	for _, c := range contents {
		if existing[c.MessageID] {
			continue
		}
		existing[c.MessageID] = true // same identifier twice in one fetch
		emails = append(emails, emailFromContent(c))
	}

	if err := o.store.InsertEmails(ctx, emails); err != nil {
		return nil, fmt.Errorf("persisting messages: %w", err)
	}

	return emails, nil
}

// ingestEmail routes a single persisted message and runs both
// extraction contracts against it.
func (o *Orchestrator) ingestEmail(ctx context.Context, log zerolog.Logger, emailID string, report *RunReport) error {
	email, err := o.store.GetEmail(ctx, emailID)
	if err != nil {
		return err
	}

	alias, err := o.store.FindAliasByAddresses(ctx, email.Recipients())
	if err != nil {
		return fmt.Errorf("resolving alias: %w", err)
	}
	if alias == nil {
		// Expected for mail not addressed to a registered alias. The
		// message stays persisted, unrouted, for manual reconciliation.
		log.Warn().
			Str("email_id", email.ID).
			Str("recipients", email.ToEmails).
			Msg("no alias matches recipients, leaving message unrouted")
		report.Unrouted++
		return nil
	}

	if err := o.store.AssignRouting(ctx, email.ID, alias.EditionID, alias.ID); err != nil {
		return err
	}
	report.Routed++

	body := email.BestBody()

	announcementDrafts, err := o.extractor.Announcements(ctx, body)
	if err != nil {
		return err
	}
	eventDrafts, err := o.extractor.Events(ctx, body)
	if err != nil {
		return err
	}

	announcements := make([]*model.Announcement, 0, len(announcementDrafts))
	for _, d := range announcementDrafts {
		announcements = append(announcements, &model.Announcement{
			EditionID: alias.EditionID,
			Title:     d.Title,
			Body:      d.Body,
		})
	}
	events := make([]*model.Event, 0, len(eventDrafts))
	for _, d := range eventDrafts {
		events = append(events, &model.Event{
			EditionID:   alias.EditionID,
			Title:       d.Title,
			Description: d.Description,
			Location:    d.Location,
			StartDate:   d.StartDate.Format("2006-01-02"),
			StartTime:   d.StartTime,
		})
	}

	if err := o.store.CreateAnnouncements(ctx, email.ID, announcements); err != nil {
		return fmt.Errorf("persisting announcements: %w", err)
	}
	if err := o.store.CreateEvents(ctx, email.ID, events); err != nil {
		return fmt.Errorf("persisting events: %w", err)
	}

	if err := o.store.MarkEmailProcessed(ctx, email.ID); err != nil {
		return err
	}

	report.Extracted++
	report.Announcements += len(announcements)
	report.Events += len(events)
	return nil
}

// emailFromContent maps fetched message content onto a storage row.
func emailFromContent(c *mail.MessageContent) *model.Email {
	return &model.Email{
		Subject:    c.Subject,
		FromName:   c.FromName,
		FromEmail:  c.FromAddress,
		ToEmails:   strings.Join(c.ToAddresses, ","),
		MessageID:  c.MessageID,
		ReceivedAt: c.Date,
		BodyText:   c.BodyText,
		BodyHTML:   c.BodyHTML,
		Status:     model.EmailStatusReceived,
	}
}
