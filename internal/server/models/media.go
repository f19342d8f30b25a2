// Package models defines server-side data models persisted in the database
// and the transient batch-pipeline types exchanged between the upload
// strategies and their callers.
package models

import (
	"time"

	"guestsnap/internal/media"
)

// Media describes one uploaded item recorded in the index. Rows are
// immutable after creation and removed only by magic-token deletion.
type Media struct {
	// ID is the opaque media identifier, also embedded in the storage key.
	ID string
	// EventID is the owning event.
	EventID string
	// GuestID is the uploading guest.
	GuestID string

	// URL is the public location of the original bytes.
	URL string
	// ThumbnailURL is the public location of the derived preview, empty
	// for video content.
	ThumbnailURL string
	// Filename is the globally unique storage filename ("{id}.{ext}").
	Filename string
	// Size is the stored byte count (original plus thumbnail for the
	// filesystem backend; store-reported content length for the object
	// store).
	Size int64

	// ContentHash is the hex SHA-256 of the original bytes. Unique per
	// event via a generated composite constraint.
	ContentHash string
	// CapturedAt is the best-effort EXIF capture time.
	CapturedAt time.Time
	// MediaType distinguishes pictures from videos.
	MediaType media.Type

	// MagicDeleteID is the unguessable capability token for guest
	// deletion. Generated at creation, never reused.
	MagicDeleteID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProcessedFile is the pipeline-internal descriptor for one file in a
// batch. Two shapes exist behind the one struct: the direct/filesystem
// shape carries Content; the object-store confirm shape carries the
// inquiry receipt (ID, Filename, FileKey, ThumbnailFileKey) and no bytes.
type ProcessedFile struct {
	Hash        string
	Extension   string
	ContentType string
	Length      int64
	CapturedAt  time.Time

	// Content holds raw bytes on the direct path; nil on the confirm path.
	Content []byte

	// Inquiry receipt, set only on the object-store confirm path.
	ID               string
	Filename         string
	FileKey          string
	ThumbnailFileKey string
}

// HasInlineBytes reports whether the descriptor carries raw content.
func (p *ProcessedFile) HasInlineBytes() bool { return p.Content != nil }

// HasRemoteKey reports whether the descriptor references a pre-agreed
// object-store key from an earlier inquiry.
func (p *ProcessedFile) HasRemoteKey() bool { return p.FileKey != "" }

// UploadedMedia is one successfully recorded item as returned to the
// uploader. DeleteID is the magic token the client must retain to delete
// the item later.
type UploadedMedia struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	DeleteID     string `json:"deleteId"`
	IsVideo      bool   `json:"isVideo"`
}

// DuplicateMedia reports an input whose content hash already exists for
// the event. Name and ContentType are optional diagnostics filled in
// client-side.
type DuplicateMedia struct {
	Hash        string `json:"hash"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// InvalidFile reports an input that could not be stored, with the reason.
type InvalidFile struct {
	Hash        string `json:"hash"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Reason      string `json:"reason"`
}

// BatchUploadResult partitions one batch's inputs into three disjoint
// lists. Every input hash appears in exactly one list.
type BatchUploadResult struct {
	UploadedMedia  []UploadedMedia  `json:"uploadedMedia"`
	DuplicateMedia []DuplicateMedia `json:"duplicateMedia"`
	InvalidFiles   []InvalidFile    `json:"invalidFiles"`
}

// Merge appends other's lists onto r.
func (r *BatchUploadResult) Merge(other *BatchUploadResult) {
	r.UploadedMedia = append(r.UploadedMedia, other.UploadedMedia...)
	r.DuplicateMedia = append(r.DuplicateMedia, other.DuplicateMedia...)
	r.InvalidFiles = append(r.InvalidFiles, other.InvalidFiles...)
}
