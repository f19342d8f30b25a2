package config

import (
	"encoding/json"
	"os"
	"time"

	"guestsnap/internal/flagx"
	"guestsnap/internal/timex"
)

// JsonConfig is the JSON-file shape of Config. Duration fields use
// timex.Duration so both "5m" strings and integer nanoseconds parse.
// After unmarshalling, values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr               string         `json:"endpoint_addr"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	GuestTokenValidityDuration timex.Duration `json:"guest_token_validity_duration"`
	FilesystemRoot             string         `json:"filesystem_root"`
	PublicBaseURL              string         `json:"public_base_url"`
	S3AccessKey                string         `json:"s3_access_key"`
	S3SecretKey                string         `json:"s3_secret_key"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
	EventCacheTTL              timex.Duration `json:"event_cache_ttl"`
	PictureCountCacheTTL       timex.Duration `json:"picture_count_cache_ttl"`
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

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.GuestTokenValidityDuration = time.Duration(c.GuestTokenValidityDuration.Duration)
	config.FilesystemRoot = c.FilesystemRoot
	config.PublicBaseURL = c.PublicBaseURL
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.EventCacheTTL = time.Duration(c.EventCacheTTL.Duration)
	config.PictureCountCacheTTL = time.Duration(c.PictureCountCacheTTL.Duration)
}
