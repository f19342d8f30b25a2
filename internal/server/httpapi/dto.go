package httpapi

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"guestsnap/internal/fingerprint"
	"guestsnap/internal/server/models"
)

const (
	maxExtensionLength   = 10
	maxContentTypeLength = 100
)

// inlineFile is one file carried inside the upload body on the
// filesystem path. Content is base64, with or without a data-URL prefix.
type inlineFile struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	Content string `json:"content"`
}

// fileInformation describes one file in an upload request. The filesystem
// shape fills only Hash and CapturedAt; the object-store confirm shape
// carries the full inquiry receipt.
type fileInformation struct {
	Hash       string     `json:"hash"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`

	Extension        string `json:"extension,omitempty"`
	ContentType      string `json:"contentType,omitempty"`
	Length           int64  `json:"length,omitempty"`
	ID               string `json:"id,omitempty"`
	Filename         string `json:"filename,omitempty"`
	FileKey          string `json:"filekey,omitempty"`
	ThumbnailFileKey string `json:"thumbnailFilekey,omitempty"`
}

// uploadRequest is the body of POST /upload. Files present selects the
// filesystem shape; absent selects the object-store confirm shape.
type uploadRequest struct {
	Files             []inlineFile      `json:"files,omitempty"`
	FilesInformations []fileInformation `json:"filesInformations"`
}

// registerRequest is the body of POST /register.
type registerRequest struct {
	Name string `json:"name"`
}

// magicDeleteRequest is the body of DELETE /pictures/magic-delete.
type magicDeleteRequest struct {
	MagicDeleteIDs []string `json:"magicDeleteIds"`
}

// magicDeleteResponse reports what the tokens matched. Success is false
// when some stored bytes could not be removed; the index rows are gone
// either way.
type magicDeleteResponse struct {
	Success       bool     `json:"success"`
	DeletedCount  int      `json:"deletedCount"`
	DeletedIDs    []string `json:"deletedIds"`
	StorageErrors []string `json:"storageErrors,omitempty"`
}

// eventView is the public event representation with the cached gallery
// size.
type eventView struct {
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

// pictureView is one gallery item in a listing.
type pictureView struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	MediaType    string    `json:"mediaType"`
	CapturedAt   time.Time `json:"capturedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newPictureView(m *models.Media) pictureView {
	return pictureView{
		ID:           m.ID,
		URL:          m.URL,
		ThumbnailURL: m.ThumbnailURL,
		MediaType:    string(m.MediaType),
		CapturedAt:   m.CapturedAt,
		CreatedAt:    m.CreatedAt,
	}
}

// decodeInlineContent turns the body's base64 payload into raw bytes.
// A "data:*;base64," prefix is tolerated.
func decodeInlineContent(content string) ([]byte, error) {
	if i := strings.Index(content, ";base64,"); i >= 0 {
		content = content[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("decoding file content: %w", err)
	}
	return data, nil
}

// descriptorsFromInline builds pipeline descriptors for the filesystem
// shape. The content hash is recomputed server-side from the actual
// bytes; the client's declared hash is advisory only.
func descriptorsFromInline(files []inlineFile, infos []fileInformation) ([]*models.ProcessedFile, error) {
	if len(files) != len(infos) {
		return nil, fmt.Errorf("files count %d does not match file informations count %d", len(files), len(infos))
	}

	descriptors := make([]*models.ProcessedFile, 0, len(files))
	for i, f := range files {
		if f.Name == "" || f.Content == "" {
			return nil, fmt.Errorf("file at index %d is missing name or content", i)
		}

		content, err := decodeInlineContent(f.Content)
		if err != nil {
			return nil, fmt.Errorf("file at index %d: %w", i, err)
		}

		capturedAt := fingerprint.CaptureTime(content)
		if infos[i].CapturedAt != nil {
			capturedAt = *infos[i].CapturedAt
		}

		descriptors = append(descriptors, &models.ProcessedFile{
			Hash:        fingerprint.Hash(content),
			Extension:   extensionOf(f.Name),
			ContentType: f.Type,
			Length:      int64(len(content)),
			CapturedAt:  capturedAt,
			Content:     content,
		})
	}
	return descriptors, nil
}

// descriptorsFromConfirm builds descriptors for the object-store confirm
// shape. No bytes pass through here; each entry must echo an inquiry
// receipt.
func descriptorsFromConfirm(infos []fileInformation) ([]*models.ProcessedFile, error) {
	descriptors := make([]*models.ProcessedFile, 0, len(infos))
	for i, info := range infos {
		if len(info.Hash) != fingerprint.HashLength {
			return nil, fmt.Errorf("file at index %d: invalid hash", i)
		}
		if info.FileKey == "" || info.ID == "" || info.Filename == "" {
			return nil, fmt.Errorf("file at index %d: missing inquiry receipt", i)
		}

		capturedAt := time.Now()
		if info.CapturedAt != nil {
			capturedAt = *info.CapturedAt
		}

		descriptors = append(descriptors, &models.ProcessedFile{
			Hash:             info.Hash,
			Extension:        info.Extension,
			ContentType:      info.ContentType,
			Length:           info.Length,
			CapturedAt:       capturedAt,
			ID:               info.ID,
			Filename:         info.Filename,
			FileKey:          info.FileKey,
			ThumbnailFileKey: info.ThumbnailFileKey,
		})
	}
	return descriptors, nil
}

func extensionOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i+1:]
	}
	return ""
}
