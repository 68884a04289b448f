package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventDraft is an unpersisted, validated candidate event. StartDate is
// the calendar date only; StartTime is a normalized HH:MM:SS string,
// empty when unknown.
type EventDraft struct {
	Title       string
	Description string
	Location    string
	StartDate   time.Time
	StartTime   string
}

const eventInstructions = "Extract civic events from newsletter text. " +
	"Only return events with a clear title and explicit calendar date. " +
	"DO NOT return non-event announcements, subscribe calls, or generic newsletter text. " +
	"The description MUST be markdown-formatted, the title MUST be plain text. " +
	"Return start_date as YYYY-MM-DD and start_time as 24-hour HH:MM:SS when known; " +
	"otherwise set start_time to null. " +
	"Include location when explicitly present; otherwise set location to null. " +
	"If there are no events, return an empty list."

var eventsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"events": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"description": {"type": ["string", "null"]},
					"location": {"type": ["string", "null"]},
					"start_date": {"type": "string"},
					"start_time": {"type": ["string", "null"]}
				},
				"required": ["title", "description", "location", "start_date", "start_time"],
				"additionalProperties": false
			}
		}
	},
	"required": ["events"],
	"additionalProperties": false
}`)

// Events extracts structured civic events from message text. Blank
// input short-circuits to an empty list without invoking the
// capability. A draft with a blank title is discarded; an unparsable
// start_date or start_time is a schema violation, fatal for the call,
// because it means the capability broke its contract.
func (x *Extractor) Events(ctx context.Context, text string) ([]EventDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	output, err := x.invoker.Invoke(ctx, Request{
		Instructions: eventInstructions,
		Input:        text,
		SchemaName:   "event_extraction",
		Schema:       eventsSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("event extraction: %w", err)
	}
	if output == "" {
		return nil, fmt.Errorf("%w: no output text for event extraction", ErrSchemaViolation)
	}

	var payload struct {
		Events *[]struct {
			Title       string  `json:"title"`
			Description *string `json:"description"`
			Location    *string `json:"location"`
			StartDate   string  `json:"start_date"`
			StartTime   *string `json:"start_time"`
		} `json:"events"`
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		return nil, fmt.Errorf("%w: unparsable event output: %v", ErrSchemaViolation, err)
	}
	if payload.Events == nil {
		return nil, fmt.Errorf("%w: 'events' must be a list", ErrSchemaViolation)
	}

	var drafts []EventDraft
	for _, item := range *payload.Events {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		startDate, err := time.Parse("2006-01-02", item.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start_date %q", ErrSchemaViolation, item.StartDate)
		}

		startTime, err := parseStartTime(item.StartTime)
		if err != nil {
			return nil, err
		}

		drafts = append(drafts, EventDraft{
			Title:       title,
			Description: normalizeOptional(item.Description),
			Location:    normalizeOptional(item.Location),
			StartDate:   startDate,
			StartTime:   startTime,
		})
	}

	return drafts, nil
}

// parseStartTime validates an optional ISO time of day and normalizes
// it to HH:MM:SS. A nil value means the time is unknown.
func parseStartTime(value *string) (string, error) {
	if value == nil {
		return "", nil
	}

	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, *value); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("%w: invalid start_time %q", ErrSchemaViolation, *value)
}

func normalizeOptional(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
