// Package events implements read-only event lookup over Postgres.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestsnap/internal/common"
	"guestsnap/internal/dbx"
	"guestsnap/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the event or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT id, name, short_name, state, image_url, start_date, end_date,
		bucket_type, bucket_uri, created_at, updated_at
		FROM events WHERE id=$1`

	var e models.Event
	var bucketType string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.ShortName, &e.State,
		&e.ImageURL, &e.StartDate, &e.EndDate, &bucketType, &e.BucketURI, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select event: %w", err)
	}
	e.BucketType = models.BucketType(bucketType)
	return &e, nil
}
