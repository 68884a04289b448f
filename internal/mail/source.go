package mail

import (
	"context"
	"errors"
	"fmt"
)

// Source abstracts an open mailbox session. Implementations hold a live
// connection; Close releases it and must be called on every exit path.
type Source interface {
	// ListRefs returns references for messages in the source folder,
	// oldest first, capped at limit. With onlyUnseen set, messages
	// already marked seen are excluded.
	ListRefs(ctx context.Context, onlyUnseen bool, limit int) ([]MessageRef, error)

	// FetchContent fetches and parses the full message for a reference.
	FetchContent(ctx context.Context, ref MessageRef) (*MessageContent, error)

	// MarkSeen flags the message as seen on the remote source.
	MarkSeen(ctx context.Context, ref MessageRef) error

	// MoveTo moves the message to another folder.
	MoveTo(ctx context.Context, ref MessageRef, folder string) error

	Close() error
}

// Dialer opens a mailbox session. The orchestrator dials once per run
// and closes the returned Source when the run ends.
type Dialer interface {
	Dial(ctx context.Context) (Source, error)
}

// ErrNoMessage is returned when a referenced message no longer exists
// on the remote source.
var ErrNoMessage = errors.New("message not found")

// ConnError reports a mailbox connection or authentication failure.
// Callers treat it as fatal for the run; retrying is the scheduler's
// concern, not the pipeline's.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("mailbox connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// IsConnError reports whether err is a mailbox connection failure.
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}
