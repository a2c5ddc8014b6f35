package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	content := []byte("mode: remote\nserver_url: http://chat.example.com\ntoken: abc\nlog_level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, gotPath, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if gotPath != path {
		t.Fatalf("expected path %s, got %s", path, gotPath)
	}
	if cfg.Mode != ModeRemote || cfg.ServerURL != "http://chat.example.com" || cfg.Token != "abc" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	// Values absent from the file keep their defaults.
	if cfg.DatabasePath != Default().DatabasePath {
		t.Fatalf("expected default database path, got %q", cfg.DatabasePath)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WIRECHAT_LOG_LEVEL", "debug")
	t.Setenv("WIRECHAT_ROOM", "r42")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected env to win, got %q", cfg.LogLevel)
	}
	if cfg.Room != "r42" {
		t.Fatalf("expected room from env, got %q", cfg.Room)
	}
}

func TestLoadWritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Fatalf("expected default mode, got %q", cfg.Mode)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "p2p" }, wantErr: true},
		{name: "remote without server url", mutate: func(c *Config) { c.Mode = ModeRemote; c.ServerURL = "" }, wantErr: true},
		{name: "local without db path", mutate: func(c *Config) { c.DatabasePath = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
