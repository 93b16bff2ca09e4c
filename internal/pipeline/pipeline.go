package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/google/uuid"

	"rewe-ebon-bot/internal/ebon"
	imapclient "rewe-ebon-bot/internal/imap"
	"rewe-ebon-bot/internal/logging"
	"rewe-ebon-bot/internal/mailparse"
	"rewe-ebon-bot/internal/notify"
	"rewe-ebon-bot/internal/storage"
)

// Pipeline orchestrates one receipt intake sweep: search unseen eBon mail,
// extract and parse each attachment, persist the artifact pair, and notify.
// All collaborators are injected; the pipeline owns no connections.
type Pipeline struct {
	mail     imapclient.Client
	parser   ebon.Parser
	store    storage.Store
	notifier notify.Notifier
	sender   string

	trigger chan struct{}
}

// New creates a pipeline that watches for mail from the given sender
// address.
func New(mail imapclient.Client, parser ebon.Parser, store storage.Store, notifier notify.Notifier, sender string) *Pipeline {
	return &Pipeline{
		mail:     mail,
		parser:   parser,
		store:    store,
		notifier: notifier,
		sender:   sender,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a sweep. At most one sweep runs at a time; a trigger
// arriving while a sweep is in flight coalesces into exactly one follow-up
// sweep, so mail arriving mid-sweep is never missed.
func (p *Pipeline) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run serves trigger requests until ctx is canceled.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.trigger:
			p.Sweep()
		}
	}
}

// Sweep performs one full intake pass over the mailbox. Messages are
// processed concurrently and independently: a failing message never blocks
// its siblings, and each successful message is notified right after its own
// artifacts are persisted. All failures of the batch are reported in one
// summary notification.
func (p *Pipeline) Sweep() {
	sweeplog := logging.Log.WithField("sweep_id", uuid.New().String())

	sweeplog.Infof("Searching for unseen eBon mail(s) from %s.", p.sender)
	uids, err := p.mail.SearchUnseenFrom(p.sender)
	if err != nil {
		sweeplog.WithError(err).Error("Mailbox search failed.")
		return
	}
	sweeplog.Infof("Found %d unseen eBon mail(s).", len(uids))
	if len(uids) == 0 {
		return
	}

	if err := p.mail.MarkSeen(uids); err != nil {
		sweeplog.WithError(err).Error("Failed to mark mail(s) as seen, duplicates are possible.")
	}

	// An IMAP client must not run commands from multiple goroutines, so all
	// messages are fetched here before the per-message work fans out.
	type fetched struct {
		uid uint32
		msg *imap.Message
	}
	var (
		messages []fetched
		failures []error
	)
	for _, uid := range uids {
		msg, err := p.mail.FetchMessage(uid)
		if err != nil {
			failures = append(failures, fmt.Errorf("message UID %d: %w", uid, err))
			continue
		}
		messages = append(messages, fetched{uid: uid, msg: msg})
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, m := range messages {
		wg.Add(1)
		go func(uid uint32, msg *imap.Message) {
			defer wg.Done()
			if err := p.processMessage(msg); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("message UID %d: %w", uid, err))
				mu.Unlock()
			}
		}(m.uid, m.msg)
	}
	wg.Wait()

	if len(failures) > 0 {
		err := errors.Join(failures...)
		sweeplog.WithError(err).Errorf("%d of %d eBon mail(s) failed.", len(failures), len(uids))
		if nerr := p.notifier.Notify(failureTitle, fmt.Sprintf("At least one mail failed with error: %s", err)); nerr != nil {
			sweeplog.WithError(nerr).Error("Failed to queue failure notification.")
		}
		return
	}
	sweeplog.Infof("Successfully handled %d eBon mail(s).", len(uids))
}

// processMessage runs the extraction chain for one fetched message: locate
// attachment → parse → persist PDF and JSON → notify. Persistence is the
// unit of success; a notification is sent as soon as both artifacts exist.
func (p *Pipeline) processMessage(msg *imap.Message) error {
	locallog := logging.Log.WithField("trace_id", uuid.New().String())

	locallog.Infof("Searching eBon attachment in message received at %s.", msg.InternalDate.UTC().Format(time.RFC3339))
	data, filename, err := mailparse.Attachment(msg)
	if err != nil {
		return err
	}

	locallog.Infof("Parsing eBon attachment %q.", filename)
	receipt, err := p.parser.Parse(data)
	if err != nil {
		return fmt.Errorf("error parsing eBon: %w", err)
	}

	base := receipt.ArtifactBaseName()
	locallog.Infof("Saving eBon as %s.pdf and %s.json.", base, base)
	if err := p.store.Write(base+".pdf", data); err != nil {
		return fmt.Errorf("error saving eBon document: %w", err)
	}
	encoded, err := json.MarshalIndent(receipt, "", "    ")
	if err != nil {
		return fmt.Errorf("error serializing eBon: %w", err)
	}
	if err := p.store.Write(base+".json", encoded); err != nil {
		return fmt.Errorf("error saving eBon JSON: %w", err)
	}

	title, body := ComposeNotification(receipt)
	if err := p.notifier.Notify(title, body); err != nil {
		// The receipt is persisted, losing the notification is acceptable.
		locallog.WithError(err).Error("Failed to queue notification.")
	}
	return nil
}
