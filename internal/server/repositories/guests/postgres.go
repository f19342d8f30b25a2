// Package guests implements guest registration over Postgres.
package guests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"guestsnap/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create registers a guest for the event and returns the new guest id.
func (r *PostgresRepository) Create(ctx context.Context, eventID, name string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO guests (id, event_id, name) VALUES ($1, $2, $3)`, id, eventID, name)
	if err != nil {
		return "", fmt.Errorf("failed to create guest: %w", err)
	}
	return id, nil
}

// Exists reports whether the guest is registered for the event.
func (r *PostgresRepository) Exists(ctx context.Context, eventID, guestID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM guests WHERE id=$1 AND event_id=$2`, guestID, eventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to select guest: %w", err)
	}
	return true, nil
}
