// Package services contains server-side business logic: event reads with
// short-lived caches, the upload orchestration, guest registration, and
// magic-token deletion.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"guestsnap/internal/server/config"
	"guestsnap/internal/server/models"
	"guestsnap/internal/server/repositories/repomanager"
)

const (
	eventCacheSize = 1024
	countCacheSize = 1024
)

// EventService serves event lookups and gallery reads. Events change
// rarely and picture counts tolerate slight staleness, so both sit behind
// TTL caches; uploads and deletions invalidate the count eagerly.
type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	eventCache *expirable.LRU[string, *models.Event]
	countCache *expirable.LRU[string, int64]
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *EventService {
	return &EventService{
		db:          db,
		repomanager: m,
		eventCache:  expirable.NewLRU[string, *models.Event](eventCacheSize, nil, cfg.EventCacheTTL),
		countCache:  expirable.NewLRU[string, int64](countCacheSize, nil, cfg.PictureCountCacheTTL),
	}
}

// GetEvent returns the event by id, from cache when fresh. Missing events
// surface the repository's not-found error.
func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if event, ok := s.eventCache.Get(id); ok {
		return event, nil
	}

	event, err := s.repomanager.Events(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.eventCache.Add(id, event)
	return event, nil
}

// PictureCount returns the number of media items recorded for the event.
func (s *EventService) PictureCount(ctx context.Context, eventID string) (int64, error) {
	if count, ok := s.countCache.Get(eventID); ok {
		return count, nil
	}

	count, err := s.repomanager.Media(s.db).CountByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("counting media: %w", err)
	}

	s.countCache.Add(eventID, count)
	return count, nil
}

// InvalidatePictureCount drops the cached count after a write.
func (s *EventService) InvalidatePictureCount(eventID string) {
	s.countCache.Remove(eventID)
}

// ListPictures returns media records for the event, newest first.
func (s *EventService) ListPictures(ctx context.Context, eventID string, limit, offset int) ([]*models.Media, error) {
	items, err := s.repomanager.Media(s.db).ListByEvent(ctx, eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	return items, nil
}
