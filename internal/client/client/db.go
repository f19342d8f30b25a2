package client

import (
	"context"
	"database/sql"
	"fmt"

	"guestsnap/internal/client/migrations"
	"guestsnap/internal/client/repositories/uploads"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local repositories backed by one SQLite database.
type Repositories struct {
	Uploads uploads.Repository

	db *sql.DB
}

// Close closes the underlying database.
func (r *Repositories) Close() error {
	return r.db.Close()
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if absent) the local SQLite database at dsn,
// applies migrations, and returns the repositories bound to it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Uploads: uploads.NewSQLiteRepository(db),
		db:      db,
	}, nil
}
