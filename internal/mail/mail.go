package mail

import "context"

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
}

// Sender delivers transactional mail (password resets). Implementations must
// be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
