package guests

import "context"

// Repository registers guests and verifies they belong to an event.
type Repository interface {
	Create(ctx context.Context, eventID, name string) (string, error)
	Exists(ctx context.Context, eventID, guestID string) (bool, error)
}
