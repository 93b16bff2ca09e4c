package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rewe-ebon-bot/internal/config"
	"rewe-ebon-bot/internal/ebon"
	imapclient "rewe-ebon-bot/internal/imap"
	"rewe-ebon-bot/internal/logging"
	"rewe-ebon-bot/internal/notify"
	"rewe-ebon-bot/internal/pipeline"
	"rewe-ebon-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			logging.Log.Errorf("Configuration is missing the following environment variables: %s", strings.Join(missing.Names, ", "))
			os.Exit(1)
		}
		logging.Log.Fatalf("Error loading configuration: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		if errors.Is(err, storage.ErrTargetNotFound) {
			logging.Log.Errorf("Storage target does not exist: %v", err)
			os.Exit(3)
		}
		logging.Log.Fatalf("Error opening storage: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Log.Infof("Connecting to %q as %q.", cfg.IMAP.Addr(), cfg.IMAP.Username)
	mail := openMailbox(cfg)
	defer func() { _ = mail.Close() }()

	// IDLE occupies its connection, so the watcher gets a session of its own.
	watch := openMailbox(cfg)
	defer func() { _ = watch.Close() }()
	logging.Log.Infof("Opened mailbox %q.", cfg.IMAP.Mailbox)

	notifier := notify.NewTelegram(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Telegram.BotToken, cfg.Telegram.Peer)
	go func() {
		if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Log.WithError(err).Error("Telegram session ended.")
		}
	}()

	intake := pipeline.New(mail, ebon.PDFParser{}, store, notifier, cfg.Sender)
	go intake.Run(ctx)

	go func() {
		if err := watch.Watch(ctx, intake.Trigger); err != nil && !errors.Is(err, context.Canceled) {
			logging.Log.WithError(err).Error("Mailbox watch ended.")
		}
	}()

	// Catch up on mail that arrived while the agent was down.
	intake.Trigger()

	<-ctx.Done()
	logging.Log.Info("Received interrupt signal, shutting down.")
}

// openMailbox dials, authenticates and selects the configured mailbox on a
// fresh IMAP session.
func openMailbox(cfg *config.Config) *imapclient.StandardClient {
	client := imapclient.NewStandardClient()
	if err := client.Connect(cfg.IMAP.Addr()); err != nil {
		logging.Log.Fatalf("IMAP connection error: %v", err)
	}
	if err := client.Login(cfg.IMAP.Username, cfg.IMAP.Password); err != nil {
		logging.Log.Fatalf("IMAP login error: %v", err)
	}
	if err := client.SelectMailbox(cfg.IMAP.Mailbox); err != nil {
		logging.Log.Fatalf("Mailbox selection error: %v", err)
	}
	return client
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendFilesystem:
		return storage.NewFilesystem(cfg.SaveDirectory)
	default:
		return storage.NewWebDAV(cfg.Nextcloud.ServerURL, cfg.Nextcloud.Username, cfg.Nextcloud.Password, cfg.Nextcloud.Directory)
	}
}
