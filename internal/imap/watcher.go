package imap

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/client"
)

// Watch runs IMAP IDLE on this connection and invokes onMail for every
// mailbox update until ctx is canceled. IDLE occupies the connection for its
// whole lifetime, so Watch must run on a session of its own, separate from
// the one used for search and fetch.
func (c *StandardClient) Watch(ctx context.Context, onMail func()) error {
	if c.client == nil {
		return fmt.Errorf("not connected")
	}

	updates := make(chan client.Update, 16)
	c.client.Updates = updates

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- c.client.Idle(stop, nil)
	}()

	for {
		select {
		case <-ctx.Done():
			close(stop)
			<-done
			return ctx.Err()
		case err := <-done:
			if err != nil {
				return fmt.Errorf("IMAP idle ended: %w", err)
			}
			return nil
		case update := <-updates:
			if _, ok := update.(*client.MailboxUpdate); ok {
				onMail()
			}
		}
	}
}
