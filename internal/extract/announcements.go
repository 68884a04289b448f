package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// AnnouncementDraft is an unpersisted, validated candidate
// announcement. Title is empty when the capability returned none; Body
// is markdown and never blank.
type AnnouncementDraft struct {
	Title string
	Body  string
}

const announcementInstructions = "Extract non-event civic announcements from newsletter text. " +
	"DO NOT return newsletter sign-up calls, welcome announcements, event listings, or other non-announcement content. " +
	"Return concise reworded announcements that are suitable for display on a website. " +
	"The body MUST be markdown-formatted, the title MUST be plain text. " +
	"Feel free to include links in the body if there are any relevant links in the email text. " +
	"If there are no announcements, return an empty list."

var announcementsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"announcements": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": ["string", "null"]},
					"body": {"type": "string"}
				},
				"required": ["title", "body"],
				"additionalProperties": false
			}
		}
	},
	"required": ["announcements"],
	"additionalProperties": false
}`)

// Announcements extracts civic announcements from message text. Blank
// input short-circuits to an empty list without invoking the
// capability. Drafts with a blank body are discarded silently.
func (x *Extractor) Announcements(ctx context.Context, text string) ([]AnnouncementDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	output, err := x.invoker.Invoke(ctx, Request{
		Instructions: announcementInstructions,
		Input:        text,
		SchemaName:   "announcement_extraction",
		Schema:       announcementsSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("announcement extraction: %w", err)
	}
	if output == "" {
		return nil, fmt.Errorf("%w: no output text for announcement extraction", ErrSchemaViolation)
	}

	var payload struct {
		Announcements *[]struct {
			Title *string `json:"title"`
			Body  string  `json:"body"`
		} `json:"announcements"`
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		return nil, fmt.Errorf("%w: unparsable announcement output: %v", ErrSchemaViolation, err)
	}
	if payload.Announcements == nil {
		return nil, fmt.Errorf("%w: 'announcements' must be a list", ErrSchemaViolation)
	}

	var drafts []AnnouncementDraft
	for _, item := range *payload.Announcements {
		body := strings.TrimSpace(item.Body)
		if body == "" {
			continue
		}

		var title string
		if item.Title != nil {
			title = strings.TrimSpace(*item.Title)
		}

		drafts = append(drafts, AnnouncementDraft{Title: title, Body: body})
	}

	return drafts, nil
}
