// Package media implements the media index repository over Postgres.
package media

import (
	"context"
	"fmt"
	"strings"

	"guestsnap/internal/dbx"
	mediatype "guestsnap/internal/media"
	"guestsnap/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const mediaColumns = `id, event_id, guest_id, url, thumbnail_url, filename, size,
	content_hash, captured_at, media_type, magic_delete_id, created_at, updated_at`

// BatchInsert writes all records in a single statement. Conflicting rows
// (duplicate hash for the event, or filename collision) are skipped, not
// errored; callers reconcile via the returned hash set.
func (r *PostgresRepository) BatchInsert(ctx context.Context, records []*models.Media) (map[string]struct{}, error) {
	if len(records) == 0 {
		return map[string]struct{}{}, nil
	}

	const cols = 11
	placeholders := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*cols)
	for i, m := range records {
		base := i * cols
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
		args = append(args, m.ID, m.EventID, m.GuestID, m.URL, m.ThumbnailURL,
			m.Filename, m.Size, m.ContentHash, m.CapturedAt, string(m.MediaType), m.MagicDeleteID)
	}

	query := `
		INSERT INTO medias (id, event_id, guest_id, url, thumbnail_url, filename, size,
			content_hash, captured_at, media_type, magic_delete_id)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT DO NOTHING
		RETURNING content_hash`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media batch: %w", err)
	}
	defer rows.Close()

	inserted := make(map[string]struct{}, len(records))
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		inserted[hash] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inserted, nil
}

// ExistingHashes returns which of the given hashes are already indexed for
// the event.
func (r *PostgresRepository) ExistingHashes(ctx context.Context, eventID string, hashes []string) (map[string]struct{}, error) {
	if len(hashes) == 0 {
		return map[string]struct{}{}, nil
	}

	placeholders := make([]string, len(hashes))
	args := make([]any, 0, len(hashes)+1)
	args = append(args, eventID)
	for i, h := range hashes {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, h)
	}

	query := `SELECT content_hash FROM medias WHERE event_id=$1 AND content_hash IN (` +
		strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select existing hashes: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		existing[hash] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteByMagicIDs removes matching rows and returns them so the caller
// can delete the underlying bytes afterwards. Index removal deliberately
// precedes byte removal.
func (r *PostgresRepository) DeleteByMagicIDs(ctx context.Context, eventID string, magicIDs []string) ([]*models.Media, error) {
	if len(magicIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(magicIDs))
	args := make([]any, 0, len(magicIDs)+1)
	args = append(args, eventID)
	for i, id := range magicIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := `
		DELETE FROM medias
		WHERE event_id=$1 AND magic_delete_id IN (` + strings.Join(placeholders, ", ") + `)
		RETURNING ` + mediaColumns

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete media: %w", err)
	}
	defer rows.Close()

	var result []*models.Media
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByEvent returns media rows for the event ordered by capture time,
// newest first.
func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM medias
		WHERE event_id=$1
		ORDER BY captured_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var result []*models.Media
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByEvent returns the number of media rows for the event.
func (r *PostgresRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM medias WHERE event_id=$1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(rs rowScanner) (*models.Media, error) {
	var item models.Media
	var mediaType string
	if err := rs.Scan(&item.ID, &item.EventID, &item.GuestID, &item.URL, &item.ThumbnailURL,
		&item.Filename, &item.Size, &item.ContentHash, &item.CapturedAt, &mediaType,
		&item.MagicDeleteID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.MediaType = mediatype.Type(mediaType)
	return &item, nil
}
