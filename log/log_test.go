package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJSONLoggerWithChain(t *testing.T) {
	var buf bytes.Buffer
	l := WithChain(NewJSONLogger(&buf, "info"), "solana")
	l.Info().Str("sig", "abc").Msg("submitted")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["chain"] != "solana" {
		t.Errorf("chain = %v, want solana", entry["chain"])
	}
	if entry["message"] != "submitted" {
		t.Errorf("message = %v, want submitted", entry["message"])
	}
}

func TestJSONLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "error")
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info line written at error level: %q", buf.String())
	}
}
