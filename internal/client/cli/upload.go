package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"guestsnap/internal/client/client"
	"guestsnap/internal/client/models"
	"guestsnap/internal/client/upload"
)

// Upload registers a guest session, uploads the named files in batches,
// and records each successful upload in the local database for later
// magic-delete lookups.
func (a *App) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("nothing to upload: name at least one file")
	}

	files, err := loadFiles(paths)
	if err != nil {
		return err
	}

	event, err := a.api.GetEvent(ctx, a.config.EventID)
	if err != nil {
		return err
	}

	if _, err := a.api.Register(ctx, event.ID, a.config.GuestName); err != nil {
		return fmt.Errorf("failed to register guest session: %w", err)
	}

	coordinator := upload.NewCoordinator(a.api,
		upload.WithBatchSize(a.config.BatchSize),
		upload.WithCallbacks(upload.Callbacks{
			OnBatchComplete: func(_ int, result *client.BatchUploadResult) {
				a.recordUploads(ctx, event.ID, result.UploadedMedia)
			},
			OnBatchError: func(batchIndex int, err error) {
				fmt.Fprintf(a.out, "batch %d failed: %v\n", batchIndex+1, err)
			},
		}))

	result, err := coordinator.Upload(ctx, event, files)
	if err != nil {
		return err
	}

	a.printResult(result)
	return nil
}

// recordUploads persists uploaded-media records locally. A record that
// cannot be written is reported but does not fail the upload: the media
// is already on the server.
func (a *App) recordUploads(ctx context.Context, eventID string, media []client.UploadedMedia) {
	for _, m := range media {
		err := a.uploads.CreateOrUpdate(ctx, &models.UploadedPicture{
			ID:           m.ID,
			EventID:      eventID,
			Name:         path.Base(m.URL),
			URL:          m.URL,
			ThumbnailURL: m.ThumbnailURL,
			DeleteID:     m.DeleteID,
			IsVideo:      m.IsVideo,
			UploadedAt:   time.Now().UTC(),
		})
		if err != nil {
			fmt.Fprintf(a.out, "warning: could not record upload %s locally: %v\n", m.ID, err)
		}
	}
}

// printResult shows the session outcome. Detail lists appear only when
// there is something beyond clean successes to report.
func (a *App) printResult(result *upload.Result) {
	fmt.Fprintf(a.out, "uploaded %d file(s)\n", result.SuccessCount)
	if !result.Noteworthy() {
		return
	}

	for _, d := range result.Duplicates {
		fmt.Fprintf(a.out, "skipped duplicate: %s\n", nameOrHash(d.Name, d.Hash))
	}
	for _, inv := range result.Invalid {
		fmt.Fprintf(a.out, "rejected %s: %s\n", nameOrHash(inv.Name, inv.Hash), inv.Reason)
	}
	for _, err := range result.BatchErrors {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
}

func nameOrHash(name, hash string) string {
	if name != "" {
		return name
	}
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// loadFiles reads each path into memory and detects its content type from
// the file extension, falling back to content sniffing.
func loadFiles(paths []string) ([]upload.File, error) {
	files := make([]upload.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		files = append(files, upload.File{
			Name:        filepath.Base(p),
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}
