package services

import (
	"context"
	"fmt"

	"guestsnap/internal/common"
	"guestsnap/internal/logging"
	"guestsnap/internal/server/models"
	"guestsnap/internal/server/storage"
)

// UploadService orchestrates batch uploads: it resolves the event, picks
// the storage strategy for its bucket type, and delegates. Partial
// failure handling lives in the strategies; this layer only wires them
// and keeps the picture-count cache honest.
type UploadService struct {
	events  *EventService
	factory *storage.Factory
	log     logging.Logger
}

func NewUploadService(events *EventService, factory *storage.Factory, log logging.Logger) *UploadService {
	return &UploadService{events: events, factory: factory, log: log}
}

// Upload stores one batch for the guest and returns the three-way
// partition of outcomes.
func (s *UploadService) Upload(ctx context.Context, eventID, guestID string, files []*models.ProcessedFile) (*models.BatchUploadResult, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}

	strategy, err := s.factory.ForBucketType(event.BucketType)
	if err != nil {
		return nil, err
	}

	result, err := strategy.UploadFiles(ctx, files, eventID, guestID, event)
	if err != nil {
		return nil, err
	}

	if len(result.UploadedMedia) > 0 {
		s.events.InvalidatePictureCount(eventID)
	}

	s.log.Info(ctx, "batch processed",
		"event_id", eventID,
		"guest_id", guestID,
		"uploaded", len(result.UploadedMedia),
		"duplicates", len(result.DuplicateMedia),
		"invalid", len(result.InvalidFiles),
	)
	return result, nil
}

// Inquire issues presigned upload URLs. Only object-store events support
// the presigned flow.
func (s *UploadService) Inquire(ctx context.Context, eventID, guestID string, infos []storage.InquireFileInfo) ([]storage.InquirePayload, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}

	if event.BucketType != models.BucketObjectStore {
		return nil, fmt.Errorf("event %s: %w", eventID, common.ErrStorageModeInvalid)
	}

	return s.factory.ObjectStore().Inquire(ctx, infos, eventID, guestID)
}
