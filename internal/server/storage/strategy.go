// Package storage implements the two interchangeable storage backends for
// uploaded media: a local filesystem bucket and an S3-compatible object
// store driven by presigned URLs. The variant set is closed; the factory
// dispatches on the event's stored bucket type.
package storage

import (
	"context"

	"guestsnap/internal/server/models"
)

// Reasons surfaced in BatchUploadResult.InvalidFiles.
const (
	ReasonInvalidFileType = "Invalid file type"
	ReasonProcessFailed   = "Valid file, but not able to process it"
	ReasonRecordFailed    = "Valid file, but unable to save record"
)

// Strategy encapsulates how bytes get from the uploader to durable
// storage and how a durable item is later removed.
type Strategy interface {
	// UploadFiles persists one batch and partitions outcomes into
	// uploaded/duplicate/invalid. One bad item never aborts the batch;
	// only batch-level infrastructure failures or validation errors
	// return a non-nil error.
	UploadFiles(ctx context.Context, files []*models.ProcessedFile, eventID, guestID string, event *models.Event) (*models.BatchUploadResult, error)

	// DeleteFile removes the stored bytes (original and any thumbnail)
	// for a previously uploaded filename.
	DeleteFile(ctx context.Context, filename, eventID string) error

	// RequiresPresignedFlow reports whether uploads must go through the
	// inquire/confirm protocol instead of carrying bytes inline.
	RequiresPresignedFlow() bool
}

// reconcile assigns every input descriptor's hash to exactly one result
// list. stored maps hashes that survived the index insert; invalid lists
// descriptors that failed before the insert. An input whose hash survived
// but was already claimed by an earlier input (byte-identical file in the
// same batch) counts as a duplicate.
func reconcile(files []*models.ProcessedFile, stored map[string]*models.UploadedMedia, invalid map[string]models.InvalidFile) *models.BatchUploadResult {
	result := &models.BatchUploadResult{
		UploadedMedia:  []models.UploadedMedia{},
		DuplicateMedia: []models.DuplicateMedia{},
		InvalidFiles:   []models.InvalidFile{},
	}

	claimed := make(map[string]struct{}, len(stored))
	for _, f := range files {
		if inv, ok := invalid[f.Hash]; ok {
			result.InvalidFiles = append(result.InvalidFiles, inv)
			delete(invalid, f.Hash)
			continue
		}
		if up, ok := stored[f.Hash]; ok {
			if _, dup := claimed[f.Hash]; !dup {
				claimed[f.Hash] = struct{}{}
				result.UploadedMedia = append(result.UploadedMedia, *up)
				continue
			}
		}
		result.DuplicateMedia = append(result.DuplicateMedia, models.DuplicateMedia{
			Hash:        f.Hash,
			ContentType: f.ContentType,
		})
	}
	return result
}
