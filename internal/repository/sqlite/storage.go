package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers "sqlite" driver

	"github.com/nkiryanov/portfolio/internal/repository"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage keeps users and projects in a single SQLite file.
// Mostly for local runs and tests: no docker or postgres needed.
type Storage struct {
	db   *sql.DB
	conn DBTX
	inTx bool
}

// Open database at path, apply pragmas and migrations.
// Use ":memory:" for throwaway database
func Open(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time anyway. For in-memory database the single connection is the database itself
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db, conn: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("error while preparing migrator. Err: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("error while applying migrations. Err: %w", err)
	}

	return nil
}

// Timestamps are written in the format the driver parses back into time.Time
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite"
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.conn}
}

func (s *Storage) Project() repository.ProjectRepo {
	return &ProjectRepo{DB: s.conn}
}

// InTx runs fn in transaction. SQLite has no cheap nested transactions, so storage
// that is already in transaction just passes itself to fn
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit()
		default:
			_ = tx.Rollback()
		}
	}()

	err = fn(&Storage{db: s.db, conn: tx, inTx: true})

	return err
}

// atomic runs fn in transaction of its own, or in the one db already is
func atomic(ctx context.Context, db DBTX, fn func(DBTX) error) (err error) {
	conn, ok := db.(*sql.DB)
	if !ok {
		return fn(db)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit()
		default:
			_ = tx.Rollback()
		}
	}()

	return fn(tx)
}
