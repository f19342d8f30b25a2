// Package uploads persists the client's record of uploaded media in a
// local SQLite database, keyed by the server-assigned media id.
package uploads

import (
	"context"

	"guestsnap/internal/client/models"
)

// Repository describes storage operations for uploaded-media records.
type Repository interface {
	// CreateOrUpdate inserts a new record or updates an existing one by ID.
	CreateOrUpdate(ctx context.Context, p *models.UploadedPicture) error

	// ListByEvent returns all records for one event, newest first.
	ListByEvent(ctx context.Context, eventID string) ([]models.UploadedPicture, error)

	// DeleteByDeleteIDs removes records whose magic-delete token is in ids
	// and returns the number of rows removed.
	DeleteByDeleteIDs(ctx context.Context, eventID string, ids []string) (int64, error)
}
