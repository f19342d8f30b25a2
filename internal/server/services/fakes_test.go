package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"guestsnap/internal/common"
	"guestsnap/internal/dbx"
	"guestsnap/internal/logging"
	"guestsnap/internal/server/models"
	"guestsnap/internal/server/repositories/events"
	"guestsnap/internal/server/repositories/guests"
	"guestsnap/internal/server/repositories/media"
)

type fakeEventsRepo struct {
	event *models.Event
	calls int
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	f.calls++
	if f.event == nil || f.event.ID != id {
		return nil, common.ErrNotFound
	}
	return f.event, nil
}

type fakeGuestsRepo struct {
	created []string
}

func (f *fakeGuestsRepo) Create(ctx context.Context, eventID, name string) (string, error) {
	f.created = append(f.created, name)
	return fmt.Sprintf("guest-%d", len(f.created)), nil
}

func (f *fakeGuestsRepo) Exists(ctx context.Context, eventID, guestID string) (bool, error) {
	return true, nil
}

type fakeMediaRepo struct {
	insertErr error
	inserted  []*models.Media

	count      int64
	countCalls int

	deleteRows []*models.Media
	deletedIDs []string

	listed []*models.Media
}

func (f *fakeMediaRepo) BatchInsert(ctx context.Context, records []*models.Media) (map[string]struct{}, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	result := make(map[string]struct{})
	for _, r := range records {
		result[r.ContentHash] = struct{}{}
	}
	return result, nil
}

func (f *fakeMediaRepo) ExistingHashes(ctx context.Context, eventID string, hashes []string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (f *fakeMediaRepo) DeleteByMagicIDs(ctx context.Context, eventID string, magicIDs []string) ([]*models.Media, error) {
	f.deletedIDs = append(f.deletedIDs, magicIDs...)
	return f.deleteRows, nil
}

func (f *fakeMediaRepo) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*models.Media, error) {
	return f.listed, nil
}

func (f *fakeMediaRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	f.countCalls++
	return f.count, nil
}

type fakeRepoManager struct {
	events *fakeEventsRepo
	guests *fakeGuestsRepo
	media  *fakeMediaRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		events: &fakeEventsRepo{},
		guests: &fakeGuestsRepo{},
		media:  &fakeMediaRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context) error { return nil }
func (m *fakeRepoManager) Conn() *sql.DB                           { return nil }

func (m *fakeRepoManager) Media(db dbx.DBTX) media.Repository   { return m.media }
func (m *fakeRepoManager) Events(db dbx.DBTX) events.Repository { return m.events }
func (m *fakeRepoManager) Guests(db dbx.DBTX) guests.Repository { return m.guests }

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
