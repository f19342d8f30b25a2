package events

import (
	"context"

	"guestsnap/internal/server/models"
)

// Repository reads event records. The upload pipeline never mutates
// events.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}
