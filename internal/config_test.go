package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/kneeview/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if !cfg.Receiver.Enabled || cfg.Receiver.Address() != ":31090" {
		t.Errorf("receiver defaults = %+v", cfg.Receiver)
	}
}

func TestKneeboardConfig_RootRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Kneeboard.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty kneeboard root should fail")
	}
}

func TestReceiverConfig(t *testing.T) {
	cfg := ReceiverConfig{Enabled: true, Port: 0, MaxFileBytes: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled receiver without port should fail")
	}

	cfg = ReceiverConfig{Enabled: true, Port: 9000, MaxFileBytes: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled receiver without size limit should fail")
	}

	cfg = ReceiverConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled receiver should skip validation: %v", err)
	}
}

func TestWatcherConfig_IgnorePatterns(t *testing.T) {
	cfg := WatcherConfig{Ignore: []string{"**/*.tmp", "backup/**"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid patterns rejected: %v", err)
	}

	cfg = WatcherConfig{Ignore: []string{"[unclosed"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid pattern should fail")
	}

	cfg = WatcherConfig{Debounce: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("KNEEVIEW_TEST_ROOT", filepath.Join(dir, "pages"))
	yaml := `
app:
  log_level: debug
  http:
    port: 9090
kneeboard:
  root: ${KNEEVIEW_TEST_ROOT}
  default_aircraft: FA-18C_hornet
  default_theater: Caucasus
sqlite:
  path: ./test.db
watcher:
  enabled: true
  debounce: 150ms
  ignore:
    - "**/*.bak"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Kneeboard.Root != filepath.Join(dir, "pages") || cfg.Kneeboard.DefaultTheater != "Caucasus" {
		t.Errorf("kneeboard = %+v", cfg.Kneeboard)
	}
	if cfg.Watcher.Debounce != 150*time.Millisecond || len(cfg.Watcher.Ignore) != 1 {
		t.Errorf("watcher = %+v", cfg.Watcher)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Receiver.Port != 31090 {
		t.Errorf("receiver port = %d, want default", cfg.Receiver.Port)
	}
}
