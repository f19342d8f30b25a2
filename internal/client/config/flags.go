package config

import (
	"flag"
	"os"
	"time"

	"guestsnap/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the gallery server
//	-e string   event identifier
//	-n string   guest display name
//	-d string   local SQLite database path
//	-b int      files per upload batch
//	-r int      request timeout in seconds
//
// Args are first filtered to only the flags handled here, avoiding
// collisions with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-e", "-n", "-d", "-b", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the gallery server")
	fs.StringVar(&cfg.EventID, "e", cfg.EventID, "event identifier")
	fs.StringVar(&cfg.GuestName, "n", cfg.GuestName, "guest display name")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.IntVar(&cfg.BatchSize, "b", cfg.BatchSize, "files per upload batch")
	requestTimeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
