package mail

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Client holds the connection settings for an IMAP mailbox.
type Client struct {
	host     string
	port     int
	username string
	password string
	folder   string
}

// NewClient creates a new IMAP client configuration. folder is the
// mailbox folder polled for messages, usually INBOX.
func NewClient(host string, port int, username, password, folder string) *Client {
	if folder == "" {
		folder = "INBOX"
	}
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		folder:   folder,
	}
}

// Dial connects to the IMAP server over TLS and authenticates. The
// returned Source holds the live connection; the caller must Close it.
func (c *Client) Dial(_ context.Context) (Source, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, &ConnError{Op: "dial", Err: err}
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &ConnError{Op: "login", Err: err}
	}

	return &Session{client: client, folder: c.folder}, nil
}

// Session is an authenticated IMAP connection implementing Source.
type Session struct {
	client   *imapclient.Client
	folder   string
	selected bool
}

// Close logs out and releases the connection.
func (s *Session) Close() error {
	return s.client.Logout().Wait()
}

// ListRefs searches the folder and returns envelope references, oldest
// first. When more than limit messages match, the most recent limit
// messages are kept (still in ascending order).
func (s *Session) ListRefs(_ context.Context, onlyUnseen bool, limit int) ([]MessageRef, error) {
	if err := s.selectFolder(); err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{}
	if onlyUnseen {
		criteria.NotFlag = []imap.Flag{imap.FlagSeen}
	}

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", s.folder, err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	})
	defer fetchCmd.Close()

	var refs []MessageRef
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		ref := MessageRef{UID: uint32(buf.UID)}
		if buf.Envelope != nil {
			ref.Subject = buf.Envelope.Subject
			ref.Date = buf.Envelope.Date
			if len(buf.Envelope.From) > 0 {
				ref.From = buf.Envelope.From[0].Addr()
			}
		}
		refs = append(refs, ref)
	}

	if err := fetchCmd.Close(); err != nil {
		return refs, fmt.Errorf("fetching envelopes: %w", err)
	}

	return refs, nil
}

// FetchContent fetches the full message bytes for a reference and
// parses them into normalized content.
func (s *Session) FetchContent(_ context.Context, ref MessageRef) (*MessageContent, error) {
	if err := s.selectFolder(); err != nil {
		return nil, err
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := s.client.Fetch(imap.UIDSetNum(imap.UID(ref.UID)), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("uid %d: %w", ref.UID, ErrNoMessage)
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message uid %d: %w", ref.UID, err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, fmt.Errorf("uid %d returned no body section: %w", ref.UID, ErrNoMessage)
	}

	content := ParseMessage(raw)
	content.UID = ref.UID
	if content.MessageID == "" {
		content.MessageID = fmt.Sprintf("imap-uid-%d", ref.UID)
	}

	if err := fetchCmd.Close(); err != nil {
		return content, fmt.Errorf("closing fetch: %w", err)
	}

	return content, nil
}

// MarkSeen flags the message as seen on the remote source.
func (s *Session) MarkSeen(_ context.Context, ref MessageRef) error {
	if err := s.selectFolder(); err != nil {
		return err
	}

	storeCmd := s.client.Store(imap.UIDSetNum(imap.UID(ref.UID)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("marking uid %d seen: %w", ref.UID, err)
	}
	return nil
}

// MoveTo moves the message to another folder.
func (s *Session) MoveTo(_ context.Context, ref MessageRef, folder string) error {
	if err := s.selectFolder(); err != nil {
		return err
	}

	if _, err := s.client.Move(imap.UIDSetNum(imap.UID(ref.UID)), folder).Wait(); err != nil {
		return fmt.Errorf("moving uid %d to %s: %w", ref.UID, folder, err)
	}
	return nil
}

// selectFolder selects the configured folder once per session.
func (s *Session) selectFolder() error {
	if s.selected {
		return nil
	}
	if _, err := s.client.Select(s.folder, nil).Wait(); err != nil {
		return fmt.Errorf("selecting %s: %w", s.folder, err)
	}
	s.selected = true
	return nil
}
