package config

import "time"

// Config holds runtime settings for the upload CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the gallery server, e.g. "http://localhost:8080".
//   - EventID: identifier of the event the client uploads into.
//   - GuestName: display name used when registering a guest session.
//   - DatabasePath: path of the local SQLite file tracking uploaded media.
//   - BatchSize: number of files sent per upload round-trip.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerBaseURL  string
	EventID        string
	GuestName      string
	DatabasePath   string
	BatchSize      int
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080"
	c.GuestName = "guest"
	c.DatabasePath = "uploads.db"
	c.BatchSize = 5
	c.RequestTimeout = 60 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
