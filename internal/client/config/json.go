package config

import (
	"encoding/json"
	"os"

	"guestsnap/internal/flagx"
	"guestsnap/internal/timex"
)

// JsonConfig is the JSON-file shape of Config. Duration fields use
// timex.Duration so both "30s" strings and integer nanoseconds parse.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	EventID        string         `json:"event_id"`
	GuestName      string         `json:"guest_name"`
	DatabasePath   string         `json:"database_path"`
	BatchSize      int            `json:"batch_size"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration from the JSON file named by the -c or
// -config flag. When no flag is given nothing is loaded. An unreadable
// or malformed file panics: a config file that was asked for but cannot
// be applied is a startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlag()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerBaseURL != "" {
		config.ServerBaseURL = c.ServerBaseURL
	}
	if c.EventID != "" {
		config.EventID = c.EventID
	}
	if c.GuestName != "" {
		config.GuestName = c.GuestName
	}
	if c.DatabasePath != "" {
		config.DatabasePath = c.DatabasePath
	}
	if c.BatchSize != 0 {
		config.BatchSize = c.BatchSize
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}
