package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Chart.Search.ArcDegrees != 88 {
		t.Errorf("Expected 88 degree arc, got %v", cfg.Chart.Search.ArcDegrees)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
server:
  addr: ":9000"
chart:
  timeout: 3s
  save: false
  search:
    fine_step: 30s
store:
  path: /var/lib/bodygraph/charts.db
telemetry:
  logging:
    level: debug
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Chart.Timeout != 3*time.Second || cfg.Chart.Save {
		t.Errorf("Chart = %+v", cfg.Chart)
	}
	if cfg.Chart.Search.FineStep != 30*time.Second {
		t.Errorf("FineStep = %v", cfg.Chart.Search.FineStep)
	}
	// Unset keys keep their defaults
	if cfg.Chart.Search.CoarseStep != time.Hour || cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Defaults were not preserved: %+v", cfg)
	}
	if cfg.Store.Path != "/var/lib/bodygraph/charts.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.ServiceName != "bodygraph" {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Expected defaults, got %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown key", "chart:\n  colour: blue\n", "colour"},
		{"bad duration", "chart:\n  timeout: soon\n", "parse"},
		{"unknown provider", "chart:\n  provider: swiss\n", "Provider"},
		{"negative timeout", "chart:\n  timeout: -1s\n", "Timeout"},
		{"empty addr", "server:\n  addr: \"\"\n", "Addr"},
		{"empty store path", "store:\n  path: \"\"\n", "Path"},
		{"list limits", "chart:\n  default_list_limit: 900\n", "DefaultListLimit"},
		{"fine above coarse", "chart:\n  search:\n    fine_tolerance: 2\n", "FineTolerance"},
		{"window order", "chart:\n  search:\n    coarse_window_start: 24h\n", "CoarseWindowStart"},
		{"bad log level", "telemetry:\n  logging:\n    level: loud\n", "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Chart.Provider != "analytic" {
		t.Errorf("Provider = %q", cfg.Chart.Provider)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bodygraph.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bodygraph.yaml")
	if err := os.WriteFile(path, []byte("chart:\n  timeout: 1s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(path, zerolog.Nop())
	w.SetDelay(20 * time.Millisecond)

	reloaded := make(chan *Config, 4)
	if err := w.Watch(ctx, func(cfg *Config) error {
		reloaded <- cfg
		return nil
	}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Stop()

	// Invalid content is skipped
	if err := os.WriteFile(path, []byte("chart:\n  timeout: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Unrelated files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("chart:\n  timeout: 7s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Chart.Timeout == 7*time.Second {
				return
			}
		case <-deadline:
			t.Fatal("Config was not reloaded")
		}
	}
}
