// Package client implements the HTTP client for the gallery server's
// guest API and owns the local database bootstrap.
package client

import (
	"context"
	"time"
)

// Event is the public event representation returned by the server.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ShortName    string    `json:"shortName"`
	State        string    `json:"state"`
	ImageURL     string    `json:"imageUrl"`
	BucketType   string    `json:"bucketType"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	PictureCount int64     `json:"pictureCount"`
}

// Storage modes reported in Event.BucketType.
const (
	BucketFilesystem  = "filesystem"
	BucketObjectStore = "objectstore"
)

// GuestSession is the credential pair issued on registration.
type GuestSession struct {
	GuestID string `json:"guestId"`
	Token   string `json:"token"`
}

// InlineFile carries one file's bytes base64-encoded inside the upload body.
type InlineFile struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	Content string `json:"content"`
}

// FileInformation describes one file in an upload request. The filesystem
// shape fills only Hash and CapturedAt; the object-store confirm shape
// echoes the full inquiry receipt.
type FileInformation struct {
	Hash             string     `json:"hash"`
	CapturedAt       *time.Time `json:"capturedAt,omitempty"`
	Extension        string     `json:"extension,omitempty"`
	ContentType      string     `json:"contentType,omitempty"`
	Length           int64      `json:"length,omitempty"`
	ID               string     `json:"id,omitempty"`
	Filename         string     `json:"filename,omitempty"`
	FileKey          string     `json:"filekey,omitempty"`
	ThumbnailFileKey string     `json:"thumbnailFilekey,omitempty"`
}

// UploadedMedia is one successfully stored item.
type UploadedMedia struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	DeleteID     string `json:"deleteId"`
	IsVideo      bool   `json:"isVideo"`
}

// DuplicateMedia is one item the server already knew by content hash.
type DuplicateMedia struct {
	Hash        string `json:"hash"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// InvalidFile is one item the server rejected, with the reason.
type InvalidFile struct {
	Hash        string `json:"hash"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Reason      string `json:"reason"`
}

// BatchUploadResult partitions one batch into the three outcome lists.
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

// InquireFileInfo is the per-file request shape for an upload inquiry.
type InquireFileInfo struct {
	Hash        string `json:"hash"`
	Extension   string `json:"extension"`
	ContentType string `json:"contentType"`
	Length      int64  `json:"length"`
}

// InquireReceipt is the server-generated identity of an inquired file,
// echoed back verbatim on confirm.
type InquireReceipt struct {
	Filename         string `json:"filename"`
	FileKey          string `json:"filekey"`
	ThumbnailFileKey string `json:"thumbnailFilekey,omitempty"`
	ID               string `json:"id"`
	ContentType      string `json:"contentType"`
	Length           int64  `json:"length"`
	Hash             string `json:"hash"`
}

// InquirePayload is the per-file response to an upload inquiry. Duplicate
// and invalid entries carry no URLs.
type InquirePayload struct {
	URL          string            `json:"url"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	IsDuplicate  bool              `json:"isDuplicate"`
	IsInvalid    bool              `json:"isInvalid"`
	Payload      InquireReceipt    `json:"payload"`
	Headers      map[string]string `json:"headers"`
}

// MagicDeleteResult reports the outcome of a magic-delete request.
type MagicDeleteResult struct {
	Success       bool     `json:"success"`
	DeletedCount  int      `json:"deletedCount"`
	DeletedIDs    []string `json:"deletedIds"`
	StorageErrors []string `json:"storageErrors,omitempty"`
}

// Picture is one gallery item in a listing.
type Picture struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	MediaType    string    `json:"mediaType"`
	CapturedAt   time.Time `json:"capturedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProgressFunc reports transfer progress of one direct object-store PUT.
type ProgressFunc func(bytesUploaded, totalBytes int64)

// Client describes the guest API surface of the gallery server.
type Client interface {
	// Register creates a guest session for the event and stores the
	// returned token for subsequent authenticated calls.
	Register(ctx context.Context, eventID, name string) (*GuestSession, error)

	// GetEvent fetches the public event view.
	GetEvent(ctx context.Context, eventID string) (*Event, error)

	// ListPictures fetches one page of the event's gallery.
	ListPictures(ctx context.Context, eventID string, limit, offset int) ([]Picture, error)

	// UploadInline sends file bytes inline for filesystem-backed events.
	// A 422 response still carries a full BatchUploadResult.
	UploadInline(ctx context.Context, eventID string, files []InlineFile, infos []FileInformation) (*BatchUploadResult, error)

	// Inquire requests presigned upload URLs for object-store events.
	Inquire(ctx context.Context, eventID string, infos []InquireFileInfo) ([]InquirePayload, error)

	// PutPresigned transfers bytes directly to the object store using a
	// presigned URL. Progress is reported via onProgress when non-nil.
	PutPresigned(ctx context.Context, url string, headers map[string]string, contentType string, data []byte, onProgress ProgressFunc) error

	// ConfirmUpload records previously inquired objects in the gallery index.
	ConfirmUpload(ctx context.Context, eventID string, infos []FileInformation) (*BatchUploadResult, error)

	// MagicDelete removes pictures matching the given magic-delete tokens.
	MagicDelete(ctx context.Context, eventID string, deleteIDs []string) (*MagicDeleteResult, error)
}
