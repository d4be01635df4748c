package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGetBeforeInitIsDisabled(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	log := Get()
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("level = %v, want disabled before Init", log.GetLevel())
	}
	// Chaining straight off Get must work uninitialised and must not emit.
	Get().Info().Str("k", "v").Msg("dropped")
}

func TestGetIsChainable(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	if _, err := Init(Options{Output: &buf}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	Get().Warn().Str("screen", "login").Msg("session expired")
	if !strings.Contains(buf.String(), "session expired") {
		t.Errorf("output = %q, want the chained write", buf.String())
	}
}

func TestInitWritesTo(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log, err := Init(Options{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	log.Info().Str("screen", "products").Msg("fetch complete")
	out := buf.String()
	if !strings.Contains(out, `"screen":"products"`) {
		t.Errorf("output = %q, want the structured field", out)
	}
	if !strings.Contains(out, "fetch complete") {
		t.Errorf("output = %q, want the message", out)
	}
}

func TestInitRespectsLevel(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log, err := Init(Options{Level: "error", Output: &buf})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	log.Info().Msg("quiet")
	if buf.Len() != 0 {
		t.Errorf("info under error level wrote %q", buf.String())
	}
	log.Error().Msg("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Error("error level messages should pass")
	}
}

func TestInitOnlyOnce(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	if _, err := Init(Options{Output: &first}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if _, err := Init(Options{Output: &second}); err != nil {
		t.Fatalf("second Init() error: %v", err)
	}

	Get().Info().Msg("hello")
	if first.Len() == 0 {
		t.Error("the first Init's writer should receive logs")
	}
	if second.Len() != 0 {
		t.Error("a second Init must not rewire the logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
