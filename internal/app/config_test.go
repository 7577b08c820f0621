package app

import (
	"log/slog"
	"testing"
)

func TestDefaultConfig_HasSensibleValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port == 0 {
		t.Error("Port should not be zero")
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should not be empty")
	}
	if cfg.CollectionsDir != "" {
		t.Error("collections should be opt-in")
	}
	if cfg.HistorySize == 0 {
		t.Error("HistorySize should not be zero")
	}
	if cfg.UpstreamTimeout == 0 {
		t.Error("UpstreamTimeout should not be zero")
	}
	if cfg.BatchRate <= 0 || cfg.BatchBurst <= 0 {
		t.Error("batch pacing should be positive")
	}
	if cfg.PacerTTL == 0 || cfg.WatcherDebounce == 0 {
		t.Error("PacerTTL and WatcherDebounce should not be zero")
	}
	if cfg.WriteTimeout < cfg.UpstreamTimeout {
		t.Error("WriteTimeout should outlast a single upstream call")
	}
	if cfg.ReadTimeout == 0 || cfg.IdleTimeout == 0 || cfg.ShutdownTimeout == 0 {
		t.Error("server timeouts should not be zero")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
