// Package cli implements the guest upload command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"guestsnap/internal/client/client"
	"guestsnap/internal/client/config"
	"guestsnap/internal/client/repositories/uploads"
)

// App wires the API client, the local database, and the command surface.
type App struct {
	config  *config.Config
	api     client.Client
	uploads uploads.Repository
	closer  io.Closer
	out     io.Writer
}

// NewApp opens the local database and constructs the API client.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	return &App{
		config:  cfg,
		api:     client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout),
		uploads: repos.Uploads,
		closer:  repos,
		out:     os.Stdout,
	}, nil
}

// Close releases the local database.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Run dispatches one command. The first arg selects the command; the rest
// are its arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.usage()
		return nil
	}
	if a.config.EventID == "" {
		return fmt.Errorf("no event selected: pass -e or set event_id in the config file")
	}

	switch args[0] {
	case "upload":
		return a.Upload(ctx, args[1:])
	case "list":
		return a.List(ctx)
	case "delete":
		return a.Delete(ctx, args[1:])
	case "event":
		return a.ShowEvent(ctx)
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  upload <file>...   upload photos or videos to the event gallery")
	fmt.Fprintln(a.out, "  list               show media uploaded from this device")
	fmt.Fprintln(a.out, "  delete [token]...  delete uploads by magic-delete token (default: all local)")
	fmt.Fprintln(a.out, "  event              show event details")
	fmt.Fprintln(a.out, "  help               show this help")
}

// ShowEvent prints the public event view.
func (a *App) ShowEvent(ctx context.Context) error {
	event, err := a.api.GetEvent(ctx, a.config.EventID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", event.Name, event.ID)
	fmt.Fprintf(a.out, "  state:    %s\n", event.State)
	fmt.Fprintf(a.out, "  storage:  %s\n", event.BucketType)
	fmt.Fprintf(a.out, "  pictures: %d\n", event.PictureCount)
	return nil
}

// List prints the media records uploaded from this device.
func (a *App) List(ctx context.Context) error {
	records, err := a.uploads.ListByEvent(ctx, a.config.EventID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "no uploads recorded for this event")
		return nil
	}

	for _, r := range records {
		kind := "photo"
		if r.IsVideo {
			kind = "video"
		}
		fmt.Fprintf(a.out, "%s  %s  %s  delete-token=%s\n",
			r.UploadedAt.Format("2006-01-02 15:04"), kind, r.Name, r.DeleteID)
	}
	return nil
}
