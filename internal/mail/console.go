package mail

import (
	"context"
	"log"
)

// ConsoleSender logs mail instead of delivering it; the dev/offline default.
type ConsoleSender struct{}

func (ConsoleSender) Send(ctx context.Context, msg Message) error {
	log.Printf("mail to %s <%s>: %s\n%s", msg.ToName, msg.ToEmail, msg.Subject, msg.Text)
	return nil
}
