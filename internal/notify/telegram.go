package notify

import (
	"context"
	"fmt"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"

	"rewe-ebon-bot/internal/logging"
)

// Telegram delivers notifications through a Telegram bot session. The
// session is opened once by Run and reused for every message; Notify only
// enqueues.
type Telegram struct {
	client *telegram.Client
	token  string
	peer   string
	queue  chan notification
}

type notification struct {
	title string
	body  string
}

// NewTelegram creates a notifier bound to one fixed peer, authenticated as
// a bot with the given token under the API id/hash pair.
func NewTelegram(apiID int, apiHash, token, peer string) *Telegram {
	return &Telegram{
		client: telegram.NewClient(apiID, apiHash, telegram.Options{
			SessionStorage: &session.StorageMemory{},
		}),
		token: token,
		peer:  peer,
		queue: make(chan notification, 64),
	}
}

// Run owns the Telegram session. It blocks until ctx is canceled, draining
// the notification queue and delivering each message as bold title plus
// plain body.
func (t *Telegram) Run(ctx context.Context) error {
	return t.client.Run(ctx, func(ctx context.Context) error {
		status, err := t.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("error checking Telegram auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := t.client.Auth().Bot(ctx, t.token); err != nil {
				return fmt.Errorf("error authenticating Telegram bot: %w", err)
			}
		}

		sender := message.NewSender(t.client.API())
		logging.Log.Infof("Telegram bot session established, notifying %q.", t.peer)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case n := <-t.queue:
				_, err := sender.Resolve(t.peer).StyledText(ctx,
					styling.Bold(n.title),
					styling.Plain("\n\n"+n.body),
				)
				if err != nil {
					logging.Log.WithError(err).Errorf("Failed to deliver notification %q.", n.title)
				}
			}
		}
	})
}

// Notify enqueues a message for delivery. It only fails when the queue is
// full, which means the session has been down for a while.
func (t *Telegram) Notify(title, body string) error {
	select {
	case t.queue <- notification{title: title, body: body}:
		return nil
	default:
		return fmt.Errorf("notification queue is full, dropping %q", title)
	}
}
