package media

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	mediatype "guestsnap/internal/media"
	"guestsnap/internal/server/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func sampleMedia(id, hash string) *models.Media {
	return &models.Media{
		ID:            id,
		EventID:       "e1",
		GuestID:       "g1",
		URL:           "public/events/e1/medias/" + id + ".jpg",
		Filename:      id + ".jpg",
		Size:          1024,
		ContentHash:   hash,
		CapturedAt:    time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		MediaType:     mediatype.TypePicture,
		MagicDeleteID: "magic-" + id,
	}
}

func TestBatchInsert_ReturnsSurvivingHashes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	records := []*models.Media{sampleMedia("m1", "h1"), sampleMedia("m2", "h2")}

	// Second record collides: only h1 comes back.
	mock.ExpectQuery(`INSERT INTO medias .*ON CONFLICT DO NOTHING.*RETURNING content_hash`).
		WillReturnRows(sqlmock.NewRows([]string{"content_hash"}).AddRow("h1"))

	inserted, err := repo.BatchInsert(context.Background(), records)
	if err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}
	if _, ok := inserted["h1"]; !ok {
		t.Errorf("expected h1 inserted")
	}
	if _, ok := inserted["h2"]; ok {
		t.Errorf("h2 should have collided")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBatchInsert_Empty(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPostgresRepository(db)

	inserted, err := repo.BatchInsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}
	if len(inserted) != 0 {
		t.Errorf("expected empty set, got %v", inserted)
	}
}

func TestExistingHashes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`SELECT content_hash FROM medias WHERE event_id=\$1 AND content_hash IN`).
		WithArgs("e1", "h1", "h2").
		WillReturnRows(sqlmock.NewRows([]string{"content_hash"}).AddRow("h2"))

	existing, err := repo.ExistingHashes(context.Background(), "e1", []string{"h1", "h2"})
	if err != nil {
		t.Fatalf("ExistingHashes error: %v", err)
	}
	if _, ok := existing["h2"]; !ok {
		t.Errorf("expected h2 to exist")
	}
	if _, ok := existing["h1"]; ok {
		t.Errorf("h1 should not exist")
	}
}

func TestDeleteByMagicIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "event_id", "guest_id", "url", "thumbnail_url", "filename", "size",
		"content_hash", "captured_at", "media_type", "magic_delete_id", "created_at", "updated_at",
	}).AddRow("m1", "e1", "g1", "u1", "", "m1.jpg", 10, "h1", now, "picture", "t1", now, now)

	mock.ExpectQuery(`DELETE FROM medias\s+WHERE event_id=\$1 AND magic_delete_id IN .*RETURNING`).
		WithArgs("e1", "t1", "t-unknown").
		WillReturnRows(rows)

	deleted, err := repo.DeleteByMagicIDs(context.Background(), "e1", []string{"t1", "t-unknown"})
	if err != nil {
		t.Fatalf("DeleteByMagicIDs error: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("expected 1 deleted row, got %d", len(deleted))
	}
	if deleted[0].Filename != "m1.jpg" || deleted[0].MagicDeleteID != "t1" {
		t.Errorf("unexpected row: %+v", deleted[0])
	}
	if deleted[0].MediaType != mediatype.TypePicture {
		t.Errorf("media type not mapped: %v", deleted[0].MediaType)
	}
}

func TestCountByEvent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM medias WHERE event_id=\$1`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.CountByEvent(context.Background(), "e1")
	if err != nil {
		t.Fatalf("CountByEvent error: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}
