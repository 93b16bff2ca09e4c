package config

import (
	"errors"
	"reflect"
	"testing"
)

func lookupFrom(vars map[string]string) func(string) string {
	return func(name string) string {
		return vars[name]
	}
}

func completeNextcloudEnv() map[string]string {
	return map[string]string{
		"EBB_IMAP_HOST":            "imap.example.org",
		"EBB_IMAP_USERNAME":        "bot@example.org",
		"EBB_IMAP_PASSWORD":        "secret",
		"EBB_IMAP_PORT":            "993",
		"EBB_IMAP_BOX":             "INBOX",
		"EBB_TELEGRAM_BOT_TOKEN":   "123:abc",
		"EBB_TELEGRAM_API_ID":      "4242",
		"EBB_TELEGRAM_API_HASH":    "deadbeef",
		"EBB_TELEGRAM_PEER":        "myself",
		"EBB_NEXTCLOUD_SERVER_URL": "https://cloud.example.org",
		"EBB_NEXTCLOUD_USERNAME":   "cloud",
		"EBB_NEXTCLOUD_PASSWORD":   "cloudsecret",
		"EBB_NEXTCLOUD_DIRECTORY":  "eBons",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		remove  []string
		missing []string
	}{
		{
			name:    "Complete nextcloud profile",
			backend: BackendNextcloud,
			missing: nil,
		},
		{
			name:    "Single missing variable",
			backend: BackendNextcloud,
			remove:  []string{"EBB_IMAP_PASSWORD"},
			missing: []string{"EBB_IMAP_PASSWORD"},
		},
		{
			name:    "Missing subset keeps declared order",
			backend: BackendNextcloud,
			remove:  []string{"EBB_NEXTCLOUD_PASSWORD", "EBB_IMAP_HOST", "EBB_TELEGRAM_PEER"},
			missing: []string{"EBB_IMAP_HOST", "EBB_TELEGRAM_PEER", "EBB_NEXTCLOUD_PASSWORD"},
		},
		{
			name:    "Empty value counts as missing",
			backend: BackendNextcloud,
			remove:  []string{"EBB_TELEGRAM_API_HASH"},
			missing: []string{"EBB_TELEGRAM_API_HASH"},
		},
		{
			name:    "Filesystem profile ignores nextcloud variables",
			backend: BackendFilesystem,
			remove:  []string{"EBB_NEXTCLOUD_SERVER_URL", "EBB_NEXTCLOUD_USERNAME", "EBB_NEXTCLOUD_PASSWORD", "EBB_NEXTCLOUD_DIRECTORY", "EBB_SAVE_DIRECTORY"},
			missing: []string{"EBB_SAVE_DIRECTORY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := completeNextcloudEnv()
			if tt.backend == BackendFilesystem {
				vars["EBB_SAVE_DIRECTORY"] = "/var/ebons"
			}
			for _, name := range tt.remove {
				delete(vars, name)
			}

			got := Validate(lookupFrom(vars), tt.backend)
			if !reflect.DeepEqual(got, tt.missing) {
				t.Errorf("Validate() = %v, want %v", got, tt.missing)
			}
		})
	}
}

func TestValidate_AllMissing(t *testing.T) {
	got := Validate(lookupFrom(nil), BackendNextcloud)

	want := append([]string{}, requiredAlways...)
	want = append(want, requiredNextcloud...)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %v, want full required list %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	for name, value := range completeNextcloudEnv() {
		t.Setenv(name, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.IMAP.Addr() != "imap.example.org:993" {
		t.Errorf("Expected IMAP addr 'imap.example.org:993', got %q", cfg.IMAP.Addr())
	}
	if cfg.Telegram.APIID != 4242 {
		t.Errorf("Expected API id 4242, got %d", cfg.Telegram.APIID)
	}
	if cfg.Backend != BackendNextcloud {
		t.Errorf("Expected default backend %q, got %q", BackendNextcloud, cfg.Backend)
	}
	if cfg.Sender != "ebon@mailing.rewe.de" {
		t.Errorf("Expected default sender 'ebon@mailing.rewe.de', got %q", cfg.Sender)
	}
	if cfg.Nextcloud.Directory != "eBons" {
		t.Errorf("Expected nextcloud directory 'eBons', got %q", cfg.Nextcloud.Directory)
	}
}

func TestLoad_FilesystemBackend(t *testing.T) {
	for name, value := range completeNextcloudEnv() {
		t.Setenv(name, value)
	}
	t.Setenv("EBB_STORAGE_BACKEND", "filesystem")
	t.Setenv("EBB_SAVE_DIRECTORY", "/var/ebons")
	t.Setenv("EBB_EBON_SENDER", "other@rewe.de")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Backend != BackendFilesystem {
		t.Errorf("Expected backend %q, got %q", BackendFilesystem, cfg.Backend)
	}
	if cfg.SaveDirectory != "/var/ebons" {
		t.Errorf("Expected save directory '/var/ebons', got %q", cfg.SaveDirectory)
	}
	if cfg.Sender != "other@rewe.de" {
		t.Errorf("Expected sender override 'other@rewe.de', got %q", cfg.Sender)
	}
}

func TestLoad_Missing(t *testing.T) {
	for name, value := range completeNextcloudEnv() {
		t.Setenv(name, value)
	}
	t.Setenv("EBB_TELEGRAM_BOT_TOKEN", "")

	_, err := Load()

	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Load() error = %v, want *MissingError", err)
	}
	if !reflect.DeepEqual(missing.Names, []string{"EBB_TELEGRAM_BOT_TOKEN"}) {
		t.Errorf("MissingError.Names = %v, want [EBB_TELEGRAM_BOT_TOKEN]", missing.Names)
	}
}
