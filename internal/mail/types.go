package mail

import "time"

// MessageRef identifies a message on the remote source without its body.
type MessageRef struct {
	UID     uint32
	Subject string
	From    string
	Date    time.Time
}

// MessageContent holds the full normalized content of a message.
//
// BodyText and BodyHTML are trimmed; an empty string means the message
// carried no body of that type. MessageID is the RFC Message-Id header
// when present, otherwise a UID-derived fallback assigned by the source.
type MessageContent struct {
	UID         uint32
	MessageID   string
	Subject     string
	FromName    string
	FromAddress string
	ToAddresses []string
	Date        time.Time
	BodyText    string
	BodyHTML    string
	Headers     map[string]string
}
