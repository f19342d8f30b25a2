package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"guestsnap/internal/server/auth"
	"guestsnap/internal/server/config"
	"guestsnap/internal/server/repositories/repomanager"
)

// GuestSession is the result of registering a guest at an event.
type GuestSession struct {
	GuestID string `json:"guestId"`
	Token   string `json:"token"`
}

// GuestService registers guests and issues their session tokens.
type GuestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      *EventService

	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewGuestService(db *sql.DB, m repomanager.RepositoryManager, events *EventService, cfg *config.Config) *GuestService {
	return &GuestService{
		db:            db,
		repomanager:   m,
		events:        events,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.GuestTokenValidityDuration,
	}
}

// Register creates a guest for the event and returns a signed session
// token tied to both.
func (s *GuestService) Register(ctx context.Context, eventID, name string) (*GuestSession, error) {
	// The event must exist before a guest can join it.
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}

	guestID, err := s.repomanager.Guests(s.db).Create(ctx, eventID, name)
	if err != nil {
		return nil, fmt.Errorf("creating guest: %w", err)
	}

	token, err := auth.GenerateToken(guestID, eventID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &GuestSession{GuestID: guestID, Token: token}, nil
}
