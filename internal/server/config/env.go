package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file in
// the working directory is loaded first if present; absence is not an
// error. Unset variables leave the current value untouched.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ENDPOINT_ADDR", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("GUEST_TOKEN_VALIDITY_DURATION", &config.GuestTokenValidityDuration)
	setString("FILESYSTEM_ROOT", &config.FilesystemRoot)
	setString("PUBLIC_BASE_URL", &config.PublicBaseURL)
	setString("S3_ACCESS_KEY", &config.S3AccessKey)
	setString("S3_SECRET_KEY", &config.S3SecretKey)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setDuration("EVENT_CACHE_TTL", &config.EventCacheTTL)
	setDuration("PICTURE_COUNT_CACHE_TTL", &config.PictureCountCacheTTL)
}
