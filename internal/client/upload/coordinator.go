package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"guestsnap/internal/client/client"
	"guestsnap/internal/fingerprint"
	"guestsnap/internal/thumbnail"
)

// DefaultBatchSize is the number of files sent per upload round-trip.
const DefaultBatchSize = 5

// WakeLock keeps the host awake while an upload session runs. Acquire is
// best-effort; Release must be safe to call after a failed Acquire.
type WakeLock interface {
	Acquire()
	Release()
}

type noopWakeLock struct{}

func (noopWakeLock) Acquire() {}
func (noopWakeLock) Release() {}

// File is one user-selected file queued for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Callbacks observe per-batch outcomes during a session. Either field may
// be nil.
type Callbacks struct {
	// OnBatchComplete fires after a batch was classified by the server.
	// Callers use it to persist uploaded-media records locally.
	OnBatchComplete func(batchIndex int, result *client.BatchUploadResult)

	// OnBatchError fires when a batch fails wholesale. The session
	// continues with the next batch.
	OnBatchError func(batchIndex int, err error)
}

// Result is the consolidated outcome of one session.
type Result struct {
	SuccessCount int
	Uploaded     []client.UploadedMedia
	Duplicates   []client.DuplicateMedia
	Invalid      []client.InvalidFile
	BatchErrors  []error
}

// Noteworthy reports whether the result carries anything beyond clean
// successes. Pure-success sessions only need the count shown.
func (r *Result) Noteworthy() bool {
	return len(r.Duplicates) > 0 || len(r.Invalid) > 0 || len(r.BatchErrors) > 0
}

// Coordinator drives one upload session: fingerprints files, partitions
// them into batches, and runs the transfer flow matching the event's
// storage mode. Batches run sequentially; a failed batch is reported and
// skipped, never aborting the session.
type Coordinator struct {
	api       client.Client
	session   *Session
	batchSize int
	wakeLock  WakeLock
	callbacks Callbacks
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithBatchSize overrides the files-per-batch partition size.
func WithBatchSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithWakeLock installs a wake-lock held for each session's duration.
func WithWakeLock(w WakeLock) Option {
	return func(c *Coordinator) { c.wakeLock = w }
}

// WithCallbacks installs per-batch observers.
func WithCallbacks(cb Callbacks) Option {
	return func(c *Coordinator) { c.callbacks = cb }
}

// NewCoordinator returns a Coordinator over the given API client.
func NewCoordinator(api client.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:       api,
		session:   NewSession(),
		batchSize: DefaultBatchSize,
		wakeLock:  noopWakeLock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the session for progress snapshots.
func (c *Coordinator) Session() *Session {
	return c.session
}

// fingerprinted pairs a file with its content hash and capture time,
// computed before any network call.
type fingerprinted struct {
	File
	hash       string
	capturedAt time.Time
}

// Upload runs one session over files against the given event. The error
// return covers only session-level misuse; batch failures are captured in
// the result and reported through OnBatchError.
func (c *Coordinator) Upload(ctx context.Context, event *client.Event, files []File) (*Result, error) {
	result := &Result{}
	if len(files) == 0 {
		return result, nil
	}

	c.session.Start(len(files))
	c.wakeLock.Acquire()
	defer c.wakeLock.Release()

	prints := make([]fingerprinted, len(files))
	for i, f := range files {
		prints[i] = fingerprinted{
			File:       f,
			hash:       fingerprint.Hash(f.Data),
			capturedAt: fingerprint.CaptureTime(f.Data),
		}
	}

	batchCount := 0
	for start := 0; start < len(prints); start += c.batchSize {
		end := start + c.batchSize
		if end > len(prints) {
			end = len(prints)
		}
		batch := prints[start:end]
		batchIndex := batchCount
		batchCount++

		var br *client.BatchUploadResult
		var err error
		switch event.BucketType {
		case client.BucketFilesystem:
			br, err = c.uploadBatchInline(ctx, event.ID, batch)
		case client.BucketObjectStore:
			br, err = c.uploadBatchPresigned(ctx, event.ID, batch)
		default:
			err = fmt.Errorf("unknown storage mode %q", event.BucketType)
		}

		if err != nil {
			result.BatchErrors = append(result.BatchErrors, fmt.Errorf("batch %d: %w", batchIndex, err))
			if c.callbacks.OnBatchError != nil {
				c.callbacks.OnBatchError(batchIndex, err)
			}
			// a failed batch still counts as processed
			c.session.IncrementProgress(len(batch))
			continue
		}

		result.SuccessCount += len(br.UploadedMedia)
		result.Uploaded = append(result.Uploaded, br.UploadedMedia...)
		result.Duplicates = append(result.Duplicates, br.DuplicateMedia...)
		result.Invalid = append(result.Invalid, br.InvalidFiles...)
		if c.callbacks.OnBatchComplete != nil {
			c.callbacks.OnBatchComplete(batchIndex, br)
		}
	}

	if len(result.BatchErrors) == batchCount {
		c.session.Fail()
	} else {
		c.session.Complete()
	}
	return result, nil
}

// uploadBatchInline sends one batch with bytes inline, for filesystem
// events. Progress advances per whole batch.
func (c *Coordinator) uploadBatchInline(ctx context.Context, eventID string, batch []fingerprinted) (*client.BatchUploadResult, error) {
	files := make([]client.InlineFile, len(batch))
	infos := make([]client.FileInformation, len(batch))
	for i, f := range batch {
		files[i] = client.InlineFile{
			Name:    f.Name,
			Type:    f.ContentType,
			Size:    int64(len(f.Data)),
			Content: base64.StdEncoding.EncodeToString(f.Data),
		}
		capturedAt := f.capturedAt
		infos[i] = client.FileInformation{Hash: f.hash, CapturedAt: &capturedAt}
	}

	br, err := c.api.UploadInline(ctx, eventID, files, infos)
	if err != nil {
		return nil, err
	}
	c.session.IncrementProgress(len(batch))
	return br, nil
}

// uploadBatchPresigned runs the inquire, direct-PUT, confirm flow for one
// batch against an object-store event. Duplicates and invalid files are
// known after the inquiry and skip the transfer. The main object and its
// thumbnail transfer in parallel; per-file progress follows the main
// transfer. Any transfer failure fails the whole batch.
func (c *Coordinator) uploadBatchPresigned(ctx context.Context, eventID string, batch []fingerprinted) (*client.BatchUploadResult, error) {
	infos := make([]client.InquireFileInfo, len(batch))
	for i, f := range batch {
		infos[i] = client.InquireFileInfo{
			Hash:        f.hash,
			Extension:   extensionOf(f.Name),
			ContentType: f.ContentType,
			Length:      int64(len(f.Data)),
		}
	}

	payloads, err := c.api.Inquire(ctx, eventID, infos)
	if err != nil {
		return nil, err
	}
	if len(payloads) != len(batch) {
		return nil, fmt.Errorf("inquiry answered %d payloads for %d files", len(payloads), len(batch))
	}

	br := &client.BatchUploadResult{
		UploadedMedia:  []client.UploadedMedia{},
		DuplicateMedia: []client.DuplicateMedia{},
		InvalidFiles:   []client.InvalidFile{},
	}

	var confirm []client.FileInformation
	for i, p := range payloads {
		f := batch[i]

		switch {
		case p.IsDuplicate:
			br.DuplicateMedia = append(br.DuplicateMedia, client.DuplicateMedia{
				Hash: f.hash, Name: f.Name, ContentType: f.ContentType,
			})
			c.session.IncrementProgress(1)
			continue
		case p.IsInvalid:
			br.InvalidFiles = append(br.InvalidFiles, client.InvalidFile{
				Hash: f.hash, Name: f.Name, ContentType: f.ContentType,
				Reason: "Invalid file type",
			})
			c.session.IncrementProgress(1)
			continue
		}

		if err := c.transferFile(ctx, f, p); err != nil {
			return nil, err
		}
		c.session.IncrementProgress(1)

		capturedAt := f.capturedAt
		confirm = append(confirm, client.FileInformation{
			Hash:             p.Payload.Hash,
			CapturedAt:       &capturedAt,
			Extension:        extensionOf(f.Name),
			ContentType:      p.Payload.ContentType,
			Length:           p.Payload.Length,
			ID:               p.Payload.ID,
			Filename:         p.Payload.Filename,
			FileKey:          p.Payload.FileKey,
			ThumbnailFileKey: p.Payload.ThumbnailFileKey,
		})
	}

	if len(confirm) > 0 {
		cr, err := c.api.ConfirmUpload(ctx, eventID, confirm)
		if err != nil {
			return nil, err
		}
		br.Merge(cr)
	}
	return br, nil
}

// transferFile PUTs one file's bytes and, for images, its derived
// thumbnail in parallel.
func (c *Coordinator) transferFile(ctx context.Context, f fingerprinted, p client.InquirePayload) error {
	thumbErr := make(chan error, 1)
	if p.ThumbnailURL != "" {
		go func() {
			thumb, err := thumbnail.Generate(f.Data)
			if err != nil {
				thumbErr <- fmt.Errorf("thumbnail of %s: %w", f.Name, err)
				return
			}
			thumbErr <- c.api.PutPresigned(ctx, p.ThumbnailURL, p.Headers, "image/jpeg", thumb, nil)
		}()
	} else {
		thumbErr <- nil
	}

	c.session.BeginFile(f.Name, int64(len(f.Data)))
	err := c.api.PutPresigned(ctx, p.URL, p.Headers, f.ContentType, f.Data, func(uploaded, _ int64) {
		c.session.UpdateFile(uploaded)
	})
	terr := <-thumbErr
	c.session.EndFile()

	if err != nil {
		return fmt.Errorf("transfer of %s: %w", f.Name, err)
	}
	if terr != nil {
		return terr
	}
	return nil
}

func extensionOf(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}
