package media

import (
	"context"

	"guestsnap/internal/server/models"
)

// Repository is the media index. Writes are single statements relying on
// the store's own atomicity; the generated (event, hash) constraint makes
// inserts duplicate-tolerant.
type Repository interface {
	// BatchInsert inserts all records in one duplicate-tolerant statement
	// and returns the content hashes that actually survived the insert.
	// A missing hash means the row collided with an existing one.
	BatchInsert(ctx context.Context, records []*models.Media) (map[string]struct{}, error)

	// ExistingHashes returns the subset of hashes already recorded for the
	// event.
	ExistingHashes(ctx context.Context, eventID string, hashes []string) (map[string]struct{}, error)

	// DeleteByMagicIDs removes rows whose magic token is in magicIDs,
	// scoped to the event, and returns the removed rows. Unknown tokens
	// are silently unmatched.
	DeleteByMagicIDs(ctx context.Context, eventID string, magicIDs []string) ([]*models.Media, error)

	// ListByEvent returns media records for an event, newest first.
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*models.Media, error)

	// CountByEvent returns the total number of media rows for an event.
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}
