package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"guestsnap/internal/logging"
	"guestsnap/internal/server/repositories/repomanager"
	"guestsnap/internal/server/storage"
)

// DeletionResult reports how many items the tokens matched and any bytes
// that could not be removed afterwards.
type DeletionResult struct {
	DeletedCount  int      `json:"deletedCount"`
	DeletedIDs    []string `json:"deletedIds"`
	StorageErrors []string `json:"storageErrors,omitempty"`
}

// DeletionService removes media by magic token. The index rows go first
// in one statement; the stored bytes follow concurrently. A failed byte
// removal never resurrects the index row, it is only reported.
type DeletionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      *EventService
	factory     *storage.Factory
	log         logging.Logger
}

func NewDeletionService(db *sql.DB, m repomanager.RepositoryManager, events *EventService, factory *storage.Factory, log logging.Logger) *DeletionService {
	return &DeletionService{db: db, repomanager: m, events: events, factory: factory, log: log}
}

// DeleteByMagicTokens removes every media row whose token matches, scoped
// to the event. Unknown tokens are silently ignored. Deletion is
// idempotent: a second call with the same tokens matches nothing.
func (s *DeletionService) DeleteByMagicTokens(ctx context.Context, eventID string, tokens []string) (*DeletionResult, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}

	strategy, err := s.factory.ForBucketType(event.BucketType)
	if err != nil {
		return nil, err
	}

	removed, err := s.repomanager.Media(s.db).DeleteByMagicIDs(ctx, eventID, tokens)
	if err != nil {
		return nil, fmt.Errorf("deleting media rows: %w", err)
	}

	if len(removed) == 0 {
		return &DeletionResult{DeletedIDs: []string{}}, nil
	}

	s.events.InvalidatePictureCount(eventID)

	deletedIDs := make([]string, 0, len(removed))
	for _, m := range removed {
		deletedIDs = append(deletedIDs, m.MagicDeleteID)
	}

	// Byte removal is settled per item, never escalated: the rows are
	// already gone and the caller's tokens are spent.
	var mu sync.Mutex
	var storageErrors []string
	var wg sync.WaitGroup
	for _, m := range removed {
		wg.Add(1)
		go func(filename string) {
			defer wg.Done()
			if err := strategy.DeleteFile(ctx, filename, eventID); err != nil {
				s.log.Warn(ctx, "stored bytes removal failed", "event_id", eventID, "filename", filename, "error", err)
				mu.Lock()
				storageErrors = append(storageErrors, fmt.Sprintf("%s: %v", filename, err))
				mu.Unlock()
			}
		}(m.Filename)
	}
	wg.Wait()

	s.log.Info(ctx, "media deleted", "event_id", eventID, "count", len(removed), "storage_errors", len(storageErrors))

	return &DeletionResult{DeletedCount: len(removed), DeletedIDs: deletedIDs, StorageErrors: storageErrors}, nil
}
