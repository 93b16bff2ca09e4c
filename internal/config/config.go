package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend selects which artifact store the agent persists receipts to
type Backend string

const (
	BackendNextcloud  Backend = "nextcloud"
	BackendFilesystem Backend = "filesystem"
)

// Config represents the complete agent configuration, read from EBB_*
// environment variables
type Config struct {
	IMAP      IMAPConfig
	Telegram  TelegramConfig
	Nextcloud NextcloudConfig

	SaveDirectory string  `env:"EBB_SAVE_DIRECTORY"`
	Backend       Backend `env:"EBB_STORAGE_BACKEND" envDefault:"nextcloud"`
	Sender        string  `env:"EBB_EBON_SENDER" envDefault:"ebon@mailing.rewe.de"`
}

// IMAPConfig represents the mailbox connection configuration
type IMAPConfig struct {
	Host     string `env:"EBB_IMAP_HOST"`
	Username string `env:"EBB_IMAP_USERNAME"`
	Password string `env:"EBB_IMAP_PASSWORD"`
	Port     int    `env:"EBB_IMAP_PORT"`
	Mailbox  string `env:"EBB_IMAP_BOX"`
}

// Addr returns the host:port dial address of the IMAP server
func (c IMAPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TelegramConfig represents the bot session configuration
type TelegramConfig struct {
	BotToken string `env:"EBB_TELEGRAM_BOT_TOKEN"`
	APIID    int    `env:"EBB_TELEGRAM_API_ID"`
	APIHash  string `env:"EBB_TELEGRAM_API_HASH"`
	Peer     string `env:"EBB_TELEGRAM_PEER"`
}

// NextcloudConfig represents the cloud folder backend configuration
type NextcloudConfig struct {
	ServerURL string `env:"EBB_NEXTCLOUD_SERVER_URL"`
	Username  string `env:"EBB_NEXTCLOUD_USERNAME"`
	Password  string `env:"EBB_NEXTCLOUD_PASSWORD"`
	Directory string `env:"EBB_NEXTCLOUD_DIRECTORY"`
}

var requiredAlways = []string{
	"EBB_IMAP_HOST",
	"EBB_IMAP_USERNAME",
	"EBB_IMAP_PASSWORD",
	"EBB_IMAP_PORT",
	"EBB_IMAP_BOX",
	"EBB_TELEGRAM_BOT_TOKEN",
	"EBB_TELEGRAM_API_ID",
	"EBB_TELEGRAM_API_HASH",
	"EBB_TELEGRAM_PEER",
}

var requiredNextcloud = []string{
	"EBB_NEXTCLOUD_SERVER_URL",
	"EBB_NEXTCLOUD_USERNAME",
	"EBB_NEXTCLOUD_PASSWORD",
	"EBB_NEXTCLOUD_DIRECTORY",
}

var requiredFilesystem = []string{
	"EBB_SAVE_DIRECTORY",
}

// MissingError reports which required environment variables are absent
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing environment variables: " + strings.Join(e.Names, ", ")
}

// Validate returns the required variable names for the given backend whose
// value is absent or empty, in declared order. The lookup function maps a
// variable name to its value (os.Getenv in production).
func Validate(lookup func(string) string, backend Backend) []string {
	required := make([]string, 0, len(requiredAlways)+len(requiredNextcloud))
	required = append(required, requiredAlways...)

	switch backend {
	case BackendFilesystem:
		required = append(required, requiredFilesystem...)
	default:
		required = append(required, requiredNextcloud...)
	}

	var missing []string
	for _, name := range required {
		if lookup(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Load reads the configuration from the environment, loading a local .env
// file first if one exists. A *MissingError is returned when required
// variables are absent.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if missing := Validate(os.Getenv, cfg.Backend); len(missing) > 0 {
		return nil, &MissingError{Names: missing}
	}

	return cfg, nil
}
