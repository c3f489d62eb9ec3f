package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func captureLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestInfoWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelInfo)

	Info("free time computed", "date", "2021-10-28", "slots", 2, "dangling")

	lines := captureLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	got := lines[0]
	if got["message"] != "free time computed" || got["date"] != "2021-10-28" || got["slots"] != float64(2) {
		t.Fatalf("unexpected line: %v", got)
	}
	if _, ok := got["dangling"]; ok {
		t.Fatal("odd trailing key was written")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelError)

	Debug("hidden")
	Info("hidden")
	Error("refresh failed", errors.New("boom"), "source", "work")

	lines := captureLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0]["error"] != "boom" || lines[0]["source"] != "work" {
		t.Fatalf("unexpected line: %v", lines[0])
	}

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("visible")
	if len(captureLines(t, &buf)) != 1 {
		t.Fatal("debug line not written after SetLevel(DEBUG)")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":  LevelDebug,
		" ERROR": LevelError,
		"info":   LevelInfo,
		"":       LevelInfo,
		"trace":  LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
