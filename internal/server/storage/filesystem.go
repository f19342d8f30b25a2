package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"guestsnap/internal/common"
	"guestsnap/internal/logging"
	mediakeys "guestsnap/internal/media"
	"guestsnap/internal/server/models"
	mediarepo "guestsnap/internal/server/repositories/media"
	"guestsnap/internal/thumbnail"
)

// FilesystemStrategy persists bytes under a per-event local path and
// derives thumbnails inline. The files it writes are served as static
// content from Root.
type FilesystemStrategy struct {
	// Root is the directory the public/ tree lives under.
	Root string
	Repo mediarepo.Repository
	Log  logging.Logger
}

func NewFilesystemStrategy(root string, repo mediarepo.Repository, log logging.Logger) *FilesystemStrategy {
	return &FilesystemStrategy{Root: root, Repo: repo, Log: log}
}

func (s *FilesystemStrategy) RequiresPresignedFlow() bool { return false }

type storedFile struct {
	record *models.Media
	// paths written for this item, removed on cleanup
	paths []string
}

// UploadFiles implements the direct upload path: allowlist partition,
// per-item write + thumbnail, one duplicate-tolerant batch insert, then
// reconciliation of every input hash into exactly one result list.
func (s *FilesystemStrategy) UploadFiles(ctx context.Context, files []*models.ProcessedFile, eventID, guestID string, event *models.Event) (*models.BatchUploadResult, error) {
	if event.BucketType != models.BucketFilesystem {
		return nil, fmt.Errorf("event %s: %w", event.ID, common.ErrStorageModeInvalid)
	}

	invalid := make(map[string]models.InvalidFile)
	var valid []*models.ProcessedFile

	// Allowlist check happens before any byte is written: invalid files
	// cost zero storage I/O.
	for _, f := range files {
		if !f.HasInlineBytes() {
			return nil, fmt.Errorf("file %s: missing content: %w", f.Hash, common.ErrValidation)
		}
		if !mediakeys.IsValidContent(f.ContentType) {
			invalid[f.Hash] = models.InvalidFile{Hash: f.Hash, ContentType: f.ContentType, Reason: ReasonInvalidFileType}
			continue
		}
		valid = append(valid, f)
	}

	stored := make(map[string]*models.UploadedMedia, len(valid))
	var records []*models.Media
	var written []storedFile

	for _, f := range valid {
		sf, up, err := s.storeOne(ctx, f, eventID, guestID)
		if err != nil {
			s.Log.Warn(ctx, "file processing failed", "event_id", eventID, "hash", f.Hash, "error", err)
			invalid[f.Hash] = models.InvalidFile{Hash: f.Hash, ContentType: f.ContentType, Reason: ReasonProcessFailed}
			// Cleanup of partially written bytes is best effort only.
			if sf != nil {
				s.removePaths(ctx, sf.paths)
			}
			continue
		}
		records = append(records, sf.record)
		written = append(written, *sf)
		stored[f.Hash] = up
	}

	inserted, err := s.Repo.BatchInsert(ctx, records)
	if err != nil {
		// The index is the source of truth: an unrecorded file is a lost
		// file, so the whole batch fails together and its bytes go away.
		s.Log.Error(ctx, "media index insert failed, cleaning up batch", "event_id", eventID, "error", err)
		s.cleanupAll(ctx, written)
		result := &models.BatchUploadResult{
			UploadedMedia:  []models.UploadedMedia{},
			DuplicateMedia: []models.DuplicateMedia{},
			InvalidFiles:   []models.InvalidFile{},
		}
		for _, f := range files {
			if inv, ok := invalid[f.Hash]; ok {
				result.InvalidFiles = append(result.InvalidFiles, inv)
				continue
			}
			result.InvalidFiles = append(result.InvalidFiles, models.InvalidFile{
				Hash: f.Hash, ContentType: f.ContentType, Reason: ReasonRecordFailed,
			})
		}
		return result, nil
	}

	// Rows that did not survive the insert collided with an existing
	// (event, hash) pair: their bytes are redundant and removed.
	for _, sf := range written {
		if _, ok := inserted[sf.record.ContentHash]; !ok {
			delete(stored, sf.record.ContentHash)
			s.removePaths(ctx, sf.paths)
		}
	}

	return reconcile(files, stored, invalid), nil
}

// storeOne writes one file (and its thumbnail for non-video content) and
// builds the index record. Returned storedFile carries the written paths
// even on error so the caller can clean up.
func (s *FilesystemStrategy) storeOne(ctx context.Context, f *models.ProcessedFile, eventID, guestID string) (*storedFile, *models.UploadedMedia, error) {
	mediaID := uuid.NewString()
	filename := mediakeys.Filename(mediaID, f.Extension)
	isVideo := mediakeys.IsVideoContent(f.ContentType)

	sf := &storedFile{}

	mediaDir := filepath.Join(s.Root, mediakeys.UploadedMediaFolder(eventID))
	if err := os.MkdirAll(mediaDir, 0o770); err != nil {
		return sf, nil, fmt.Errorf("mkdir %s: %w", mediaDir, err)
	}

	mediaPath := filepath.Join(mediaDir, filename)
	if err := os.WriteFile(mediaPath, f.Content, 0o660); err != nil {
		return sf, nil, fmt.Errorf("write %s: %w", mediaPath, err)
	}
	sf.paths = append(sf.paths, mediaPath)

	size := int64(len(f.Content))
	thumbnailURL := ""

	if !isVideo {
		thumb, err := thumbnail.Generate(f.Content)
		if err != nil {
			return sf, nil, fmt.Errorf("thumbnail: %w", err)
		}

		thumbDir := filepath.Join(s.Root, mediakeys.UploadedThumbnailFolder(eventID))
		if err := os.MkdirAll(thumbDir, 0o770); err != nil {
			return sf, nil, fmt.Errorf("mkdir %s: %w", thumbDir, err)
		}

		thumbName := mediakeys.ThumbnailFilename(mediaID)
		thumbPath := filepath.Join(thumbDir, thumbName)
		if err := os.WriteFile(thumbPath, thumb, 0o660); err != nil {
			return sf, nil, fmt.Errorf("write %s: %w", thumbPath, err)
		}
		sf.paths = append(sf.paths, thumbPath)
		size += int64(len(thumb))
		thumbnailURL = mediakeys.UploadedThumbnailURL(eventID, thumbName)
	}

	magicDeleteID := uuid.NewString()
	url := mediakeys.UploadedMediaURL(eventID, filename)

	sf.record = &models.Media{
		ID:            mediaID,
		EventID:       eventID,
		GuestID:       guestID,
		URL:           url,
		ThumbnailURL:  thumbnailURL,
		Filename:      filename,
		Size:          size,
		ContentHash:   f.Hash,
		CapturedAt:    f.CapturedAt,
		MediaType:     mediakeys.TypeOf(f.ContentType),
		MagicDeleteID: magicDeleteID,
	}

	up := &models.UploadedMedia{
		ID:           mediaID,
		URL:          url,
		ThumbnailURL: thumbnailURL,
		DeleteID:     magicDeleteID,
		IsVideo:      isVideo,
	}
	return sf, up, nil
}

// cleanupAll removes every written file concurrently. Results are
// settled, not escalated: a cleanup failure must never mask the original
// error.
func (s *FilesystemStrategy) cleanupAll(ctx context.Context, written []storedFile) {
	var wg sync.WaitGroup
	for _, sf := range written {
		wg.Add(1)
		go func(paths []string) {
			defer wg.Done()
			s.removePaths(ctx, paths)
		}(sf.paths)
	}
	wg.Wait()
}

func (s *FilesystemStrategy) removePaths(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.Log.Warn(ctx, "cleanup failed", "path", p, "error", err)
		}
	}
}

// DeleteFile removes the original and, if present, its derived thumbnail.
func (s *FilesystemStrategy) DeleteFile(ctx context.Context, filename, eventID string) error {
	mediaPath := filepath.Join(s.Root, mediakeys.UploadedMediaFolder(eventID), filename)
	if err := os.Remove(mediaPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", mediaPath, err)
	}

	mediaID := strings.TrimSuffix(filename, filepath.Ext(filename))
	thumbPath := filepath.Join(s.Root, mediakeys.UploadedThumbnailFolder(eventID), mediakeys.ThumbnailFilename(mediaID))
	if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
		s.Log.Warn(ctx, "thumbnail cleanup failed", "path", thumbPath, "error", err)
	}
	return nil
}
