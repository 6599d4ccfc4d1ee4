package config

import (
	"os"
	"path/filepath"
	"testing"

	"bfc/internal/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MemSize != 100000 {
		t.Errorf("default mem size: got %d, want 100000", cfg.MemSize)
	}
	if cfg.Cache.Disabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Toolchain.OptLevel != "O2" {
		t.Errorf("default opt level: got %q, want %q", cfg.Toolchain.OptLevel, "O2")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("default log settings: got %s/%s, want info/text", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bfc.yaml")
	body := `
mem_size: 4096
cache:
  disabled: true
toolchain:
  llc: /opt/llvm/bin/llc
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.MemSize != 4096 {
		t.Errorf("mem size: got %d, want 4096", cfg.MemSize)
	}
	if !cfg.Cache.Disabled {
		t.Error("cache.disabled should be applied")
	}
	if cfg.Toolchain.LLC != "/opt/llvm/bin/llc" {
		t.Errorf("toolchain.llc: got %q, want /opt/llvm/bin/llc", cfg.Toolchain.LLC)
	}
	// Untouched fields keep their defaults.
	if cfg.Toolchain.OptLevel != "O2" {
		t.Errorf("opt level should keep its default, got %q", cfg.Toolchain.OptLevel)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log format should keep its default, got %q", cfg.Log.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("loading a missing config should fail")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bfc.yaml")
	if err := os.WriteFile(path, []byte("mem_size: [not a number"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("loading malformed yaml should fail")
	}
}

func TestLogLevelMapping(t *testing.T) {
	cases := []struct {
		name string
		want logging.Level
	}{
		{"debug", logging.LevelDebug},
		{"info", logging.LevelInfo},
		{"warn", logging.LevelWarn},
		{"error", logging.LevelError},
		{"nonsense", logging.LevelInfo},
		{"", logging.LevelInfo},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		cfg.Log.Level = c.name
		if got := cfg.LogLevel(); got != c.want {
			t.Errorf("level %q: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLogFormatMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	if cfg.LogFormat() != logging.FormatJSON {
		t.Error("json should map to FormatJSON")
	}
	cfg.Log.Format = "text"
	if cfg.LogFormat() != logging.FormatText {
		t.Error("text should map to FormatText")
	}
}
