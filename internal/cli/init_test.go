package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"listrik/internal/config"
	"listrik/internal/log"
)

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}

	cfg, err = LoadAndValidateConfig(func(c *config.Config) { c.Port = "7070" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("override not applied: %q", cfg.Port)
	}
}

func TestLoadAndValidateConfig_Invalid(t *testing.T) {
	_, err := LoadAndValidateConfig(func(c *config.Config) {
		c.Port = "not-a-port"
		c.LogLevel = "loud"
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid port", "invalid log level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"text", "info", log.FormatText, false},
		{"json", "debug", log.FormatJSON, false},
		{"tint", "warn", log.FormatTint, false},
		{"bad level", "loud", log.FormatText, true},
		{"bad format", "info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := SetupLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format}, &buf)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			logger.Warn("hello")
			if !strings.Contains(buf.String(), "hello") {
				t.Fatalf("log output = %q", buf.String())
			}
		})
	}
}

func TestGracefulShutdown_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := GracefulShutdown(parent, log.Discard())
	defer stop()

	cancel()
	<-ctx.Done()
}
