package mail

import (
	"bytes"
	"io"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// epoch is the fallback timestamp for messages with a missing or
// unparsable Date header.
var epoch = time.Unix(0, 0).UTC()

// ParseMessage decodes raw message bytes into normalized content. It is
// a pure function and never fails: malformed headers resolve to empty
// strings, an unparsable date falls back to the Unix epoch, and bytes
// that cannot be read as MIME at all are kept as the plain body.
func ParseMessage(raw []byte) *MessageContent {
	content := &MessageContent{
		Date:    epoch,
		Headers: make(map[string]string),
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		content.BodyText = strings.TrimSpace(string(raw))
		return content
	}
	defer mr.Close()

	h := mr.Header

	if subject, err := h.Subject(); err == nil {
		content.Subject = strings.TrimSpace(subject)
	} else {
		content.Subject = strings.TrimSpace(h.Get("Subject"))
	}

	if id, err := h.MessageID(); err == nil {
		content.MessageID = id
	}

	if date, err := h.Date(); err == nil && !date.IsZero() {
		content.Date = date
	}

	content.FromName, content.FromAddress = parseFrom(h)
	content.ToAddresses = parseAddressList(h, "To")

	fields := h.Fields()
	for fields.Next() {
		text, err := fields.Text()
		if err != nil {
			text = fields.Value()
		}
		content.Headers[fields.Key()] = text
	}

	contentType, _, _ := h.ContentType()
	multipart := strings.HasPrefix(contentType, "multipart/")

	var textParts, htmlParts []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		// A single-part message is the plain body whatever its type.
		if !multipart {
			textParts = append(textParts, string(body))
			continue
		}

		partType, _, _ := inline.ContentType()
		switch {
		case strings.HasPrefix(partType, "text/plain"):
			textParts = append(textParts, string(body))
		case strings.HasPrefix(partType, "text/html"):
			htmlParts = append(htmlParts, string(body))
		}
	}

	content.BodyText = strings.TrimSpace(strings.Join(textParts, "\n"))
	content.BodyHTML = strings.TrimSpace(strings.Join(htmlParts, "\n"))

	return content
}

// parseFrom extracts the sender's display name and address, falling
// back to the raw header text when the list does not parse.
func parseFrom(h mail.Header) (name, address string) {
	if addrs, err := h.AddressList("From"); err == nil && len(addrs) > 0 {
		return addrs[0].Name, addrs[0].Address
	}

	raw := strings.TrimSpace(h.Get("From"))
	return "", raw
}

// parseAddressList extracts the bare addresses of a recipient header,
// dropping display names. When the header as a whole does not parse,
// each comma-separated entry is tried on its own and unparsable entries
// are skipped; a malformed address never fails the parse.
func parseAddressList(h mail.Header, key string) []string {
	if addrs, err := h.AddressList(key); err == nil {
		var out []string
		for _, a := range addrs {
			if a.Address != "" {
				out = append(out, a.Address)
			}
		}
		return out
	}

	raw := h.Get(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, entry := range strings.Split(raw, ",") {
		addr, err := netmail.ParseAddress(strings.TrimSpace(entry))
		if err != nil {
			continue
		}
		out = append(out, addr.Address)
	}
	return out
}
