package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf, Service: "taskd"})

	log.Info().Msg("dropped")
	log.Warn().Str("username", "alice").Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "kept" {
		t.Errorf("unexpected message %v", entry["message"])
	}
	if entry["service"] != "taskd" {
		t.Errorf("expected service field, got %v", entry["service"])
	}
	if entry["username"] != "alice" {
		t.Errorf("expected username field, got %v", entry["username"])
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Pretty: true, Output: &buf})
	log.Info().Msg("hello")

	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("expected console output to contain message, got %q", buf.String())
	}
	if json.Valid(buf.Bytes()) {
		t.Errorf("expected non-JSON console output")
	}
}
