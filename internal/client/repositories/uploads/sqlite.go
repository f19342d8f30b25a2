package uploads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guestsnap/internal/client/models"
	"guestsnap/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts a record by id. On conflict, selected columns are updated.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, p *models.UploadedPicture) error {
	query := `INSERT INTO uploads (id, event_id, name, url, thumbnail_url, delete_id, is_video, uploaded_at)
			values (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				url = excluded.url,
				thumbnail_url = excluded.thumbnail_url,
				delete_id = excluded.delete_id,
				is_video = excluded.is_video
	`
	uploadedAt := p.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.EventID, p.Name, p.URL, p.ThumbnailURL, p.DeleteID, p.IsVideo,
		uploadedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert upload record: %w", err)
	}
	return nil
}

// ListByEvent returns all records for one event, newest first.
func (r *SQLiteRepository) ListByEvent(ctx context.Context, eventID string) ([]models.UploadedPicture, error) {
	query := `select id, event_id, name, url, thumbnail_url, delete_id, is_video, uploaded_at
			from uploads where event_id = ? order by uploaded_at desc, id`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to select upload records: %w", err)
	}
	defer rows.Close()

	var result []models.UploadedPicture
	for rows.Next() {
		var item models.UploadedPicture
		var uploadedAt string
		if err := rows.Scan(&item.ID, &item.EventID, &item.Name, &item.URL,
			&item.ThumbnailURL, &item.DeleteID, &item.IsVideo, &uploadedAt); err != nil {
			return nil, err
		}
		item.UploadedAt, err = time.Parse(time.RFC3339, uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByDeleteIDs removes records whose magic-delete token is in ids.
// Unknown tokens are ignored. Returns the number of rows removed.
func (r *SQLiteRepository) DeleteByDeleteIDs(ctx context.Context, eventID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf(`delete from uploads where event_id = ? and delete_id in (%s)`, placeholders)

	args := make([]any, 0, len(ids)+1)
	args = append(args, eventID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete upload records: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}
