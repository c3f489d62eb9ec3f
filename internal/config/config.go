package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"timespan/internal/span"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// SourceID returns ID, falling back to Name and then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return c.URL
	}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// WorkdayConfig is the daily window free time is computed in, as "HH:MM"
// wall-clock values in Config.Timezone.
type WorkdayConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone workday windows are anchored in (e.g. "Europe/Kyiv").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Workday bounds each day's schedule.
	Workday WorkdayConfig `yaml:"workday" json:"workday"`

	// BlockAllDay makes all-day calendar events occupy the whole workday.
	// When false they are ignored.
	BlockAllDay bool `yaml:"block_all_day" json:"block_all_day"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic ICS refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the on-disk ICS cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// Busy lists fixed busy spans (Unix seconds) added to every matching day.
	Busy []span.Span `yaml:"busy,omitempty" json:"busy,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health and /metrics.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "UTC"
	defaultWorkdayStart = "09:00"
	defaultWorkdayEnd   = "17:00"
	defaultRefreshCron  = "*/15 * * * *"
	defaultCacheDir     = "./var/ics-cache"
	defaultLogLevel     = "info"

	clockLayout = "15:04"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		Workday:     WorkdayConfig{Start: defaultWorkdayStart, End: defaultWorkdayEnd},
		BlockAllDay: true,
		RefreshCron: defaultRefreshCron,
		CacheDir:    defaultCacheDir,
		LogLevel:    defaultLogLevel,
		ICS:         []ICSConfig{},
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Workday.Start == "" {
		c.Workday.Start = defaultWorkdayStart
	}
	if c.Workday.End == "" {
		c.Workday.End = defaultWorkdayEnd
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	start, end, err := c.WorkdayOffsets()
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("workday start %s must be before end %s", c.Workday.Start, c.Workday.End)
	}
	return nil
}

// Location returns the configured timezone, or UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WorkdayOffsets returns the workday start and end as offsets from midnight.
func (c *Config) WorkdayOffsets() (start, end time.Duration, err error) {
	start, err = parseClock(c.Workday.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("workday start: %w", err)
	}
	end, err = parseClock(c.Workday.End)
	if err != nil {
		return 0, 0, fmt.Errorf("workday end: %w", err)
	}
	return start, end, nil
}

func parseClock(v string) (time.Duration, error) {
	if v == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timespan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
