package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Listen != defaultListen || cfg.Workday.Start != "09:00" || cfg.Workday.End != "17:00" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perms = %o, want 600", perm)
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	src := `
timezone: Europe/Berlin
workday:
  start: "08:30"
ics:
  - url: https://example.com/cal.ics
    name: work
busy:
  - start: 1635411600
    end: 1635415200
`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Workday.Start != "08:30" || cfg.Workday.End != "17:00" {
		t.Fatalf("workday = %+v", cfg.Workday)
	}
	if cfg.RefreshCron != defaultRefreshCron {
		t.Fatalf("refresh = %q", cfg.RefreshCron)
	}
	if len(cfg.ICS) != 1 || cfg.ICS[0].SourceID() != "work" {
		t.Fatalf("ics = %+v", cfg.ICS)
	}
	if len(cfg.Busy) != 1 || cfg.Busy[0].Duration() != 3600 {
		t.Fatalf("busy = %+v", cfg.Busy)
	}

	start, end, err := cfg.WorkdayOffsets()
	if err != nil {
		t.Fatalf("WorkdayOffsets: %v", err)
	}
	if start != 8*time.Hour+30*time.Minute || end != 17*time.Hour {
		t.Fatalf("offsets = %v, %v", start, end)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"inverted workday": "workday:\n  start: \"18:00\"\n  end: \"09:00\"\n",
		"bad clock":        "workday:\n  start: \"9am\"\n",
		"bad timezone":     "timezone: Mars/Olympus\n",
		"inverted busy":    "busy:\n  - start: 20\n    end: 10\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Listen = "0.0.0.0:9000"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Listen != "0.0.0.0:9000" || got.BasicAuth == nil || got.BasicAuth.Username != "u" {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestWorkdayAllowsMidnightEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workday = WorkdayConfig{Start: "00:00", End: "24:00"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestSourceIDFallback(t *testing.T) {
	if got := (ICSConfig{URL: "u"}).SourceID(); got != "u" {
		t.Fatalf("SourceID = %q", got)
	}
	if got := (ICSConfig{URL: "u", ID: "id", Name: "n"}).SourceID(); got != "id" {
		t.Fatalf("SourceID = %q", got)
	}
}
