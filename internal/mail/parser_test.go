package mail

import (
	"reflect"
	"testing"
	"time"
)

const multipartTemplate = "Subject: Weekly Digest\r\n" +
	"From: Town Clerk <clerk@example.com>\r\n" +
	"To: A <a@example.com>, B <b@example.com>\r\n" +
	"Date: Mon, 02 Feb 2026 10:00:00 +0000\r\n" +
	"Message-Id: <digest-1@example.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n"

const plainPart = "--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Plain text body.\r\n"

const htmlPart = "--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>HTML body.</p>\r\n"

const closing = "--b1--\r\n"

func TestParseMessageMultipart(t *testing.T) {
	// Both bodies must come out the same whichever part comes first.
	orderings := map[string]string{
		"plain_first": multipartTemplate + plainPart + htmlPart + closing,
		"html_first":  multipartTemplate + htmlPart + plainPart + closing,
	}

	for name, raw := range orderings {
		t.Run(name, func(t *testing.T) {
			content := ParseMessage([]byte(raw))

			if content.BodyText != "Plain text body." {
				t.Errorf("BodyText = %q, want %q", content.BodyText, "Plain text body.")
			}
			if content.BodyHTML != "<p>HTML body.</p>" {
				t.Errorf("BodyHTML = %q, want %q", content.BodyHTML, "<p>HTML body.</p>")
			}
			if content.Subject != "Weekly Digest" {
				t.Errorf("Subject = %q, want %q", content.Subject, "Weekly Digest")
			}
			if content.MessageID != "digest-1@example.com" {
				t.Errorf("MessageID = %q, want %q", content.MessageID, "digest-1@example.com")
			}
			if content.FromName != "Town Clerk" || content.FromAddress != "clerk@example.com" {
				t.Errorf("From = %q <%q>, want Town Clerk <clerk@example.com>",
					content.FromName, content.FromAddress)
			}

			want := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
			if !content.Date.Equal(want) {
				t.Errorf("Date = %v, want %v", content.Date, want)
			}
		})
	}
}

func TestParseMessageAddressList(t *testing.T) {
	raw := multipartTemplate + plainPart + closing
	content := ParseMessage([]byte(raw))

	want := []string{"a@example.com", "b@example.com"}
	if !reflect.DeepEqual(content.ToAddresses, want) {
		t.Errorf("ToAddresses = %v, want %v", content.ToAddresses, want)
	}
}

func TestParseMessageSinglePart(t *testing.T) {
	raw := "Subject: Hello\r\n" +
		"From: sender@example.com\r\n" +
		"To: a@example.com\r\n" +
		"Date: Mon, 02 Feb 2026 10:00:00 +0000\r\n" +
		"\r\n" +
		"Just a plain message.\r\n"

	content := ParseMessage([]byte(raw))

	if content.BodyText != "Just a plain message." {
		t.Errorf("BodyText = %q, want %q", content.BodyText, "Just a plain message.")
	}
	if content.BodyHTML != "" {
		t.Errorf("BodyHTML = %q, want empty", content.BodyHTML)
	}
}

func TestParseMessageMissingHeaders(t *testing.T) {
	raw := "To: a@example.com\r\n" +
		"\r\n" +
		"Body.\r\n"

	content := ParseMessage([]byte(raw))

	if content.Subject != "" {
		t.Errorf("Subject = %q, want empty", content.Subject)
	}
	if !content.Date.Equal(time.Unix(0, 0)) {
		t.Errorf("Date = %v, want epoch fallback", content.Date)
	}
}

func TestParseMessageUnparsableDate(t *testing.T) {
	raw := "Subject: Hi\r\n" +
		"Date: not a date\r\n" +
		"\r\n" +
		"Body.\r\n"

	content := ParseMessage([]byte(raw))

	if !content.Date.Equal(time.Unix(0, 0)) {
		t.Errorf("Date = %v, want epoch fallback", content.Date)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	raw := "Subject: Hi\r\n" +
		"\r\n" +
		"   \r\n"

	content := ParseMessage([]byte(raw))

	if content.BodyText != "" {
		t.Errorf("BodyText = %q, want empty after trim", content.BodyText)
	}
}

func TestParseMessageNotMIME(t *testing.T) {
	raw := "complete garbage without any header"

	content := ParseMessage([]byte(raw))

	if content.BodyText != raw {
		t.Errorf("BodyText = %q, want raw bytes kept", content.BodyText)
	}
	if !content.Date.Equal(time.Unix(0, 0)) {
		t.Errorf("Date = %v, want epoch fallback", content.Date)
	}
}

func TestParseMessageSkipsMalformedAddresses(t *testing.T) {
	raw := "Subject: Hi\r\n" +
		"To: not-an-address-at-all <<, B <b@example.com>\r\n" +
		"\r\n" +
		"Body.\r\n"

	content := ParseMessage([]byte(raw))

	want := []string{"b@example.com"}
	if !reflect.DeepEqual(content.ToAddresses, want) {
		t.Errorf("ToAddresses = %v, want %v", content.ToAddresses, want)
	}
}
