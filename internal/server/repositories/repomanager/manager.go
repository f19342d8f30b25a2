package repomanager

import (
	"context"
	"database/sql"

	"guestsnap/internal/dbx"
	"guestsnap/internal/server/repositories/events"
	"guestsnap/internal/server/repositories/guests"
	"guestsnap/internal/server/repositories/media"
)

// RepositoryManager hands out repositories bound to a DBTX so services can
// use the same repository code inside and outside transactions.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Media(db dbx.DBTX) media.Repository
	Events(db dbx.DBTX) events.Repository
	Guests(db dbx.DBTX) guests.Repository
}
