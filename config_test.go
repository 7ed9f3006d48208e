/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func validConfig() *Config {
	return &Config{
		bind:       "127.0.0.1",
		codeLength: 6,
		metrics:    true,
		port:       8080,
		sendBuffer: 32,
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	texts := filepath.Join(dir, "texts.txt")
	if err := os.WriteFile(texts, []byte("a passage\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, true},
		{"both tls files", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 65536 }, true},
		{"short codes", func(c *Config) { c.codeLength = 3 }, true},
		{"long codes", func(c *Config) { c.codeLength = 13 }, true},
		{"no send buffer", func(c *Config) { c.sendBuffer = 0 }, true},
		{"texts file", func(c *Config) { c.texts = texts }, false},
		{"missing texts", func(c *Config) { c.texts = filepath.Join(dir, "missing.txt") }, true},
		{"texts is a directory", func(c *Config) { c.texts = dir }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	if cfg.scheme() != "http" {
		t.Fatalf("expected http, got %s", cfg.scheme())
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if cfg.scheme() != "https" {
		t.Fatalf("expected https, got %s", cfg.scheme())
	}
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 8080 || cfg.bind != "0.0.0.0" || cfg.codeLength != 6 || cfg.sendBuffer != 32 || !cfg.metrics {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("TYPERACE_PORT", "9090")
	t.Setenv("TYPERACE_ROOM_CODE_LENGTH", "8")
	t.Setenv("TYPERACE_CORS_ORIGIN", "https://a.example,https://b.example")
	t.Setenv("TYPERACE_VERBOSE", "true")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 9090 {
		t.Fatalf("expected port 9090 from env, got %d", cfg.port)
	}
	if cfg.codeLength != 8 {
		t.Fatalf("expected code length 8 from env, got %d", cfg.codeLength)
	}
	if !cfg.verbose {
		t.Fatalf("expected verbose from env")
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.corsOrigins, want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.corsOrigins)
	}
}

func TestNewCmdRejectsArgs(t *testing.T) {
	cmd := newCmd(&Config{})
	cmd.SetArgs([]string{"extra"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected positional arguments to be rejected")
	}
}
