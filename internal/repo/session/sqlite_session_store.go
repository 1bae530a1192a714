package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkrupp/mesto/internal/infra/logging"
)

// SQLiteStoreConfig holds configuration for the SQLite session store.
type SQLiteStoreConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/mesto.db"`

	// Key is the storage key the token is kept under
	Key string `env:"KEY" default:"token"`
}

// SQLiteStore implements Store as a single row of a key/value table, so the
// session survives process restarts.
type SQLiteStore struct {
	db        *sql.DB
	key       string
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStoreFactory creates a factory function that returns a new SQLiteStore.
func SQLiteStoreFactory(cfg SQLiteStoreConfig) StoreFactory {
	return func() (Store, error) {
		return NewSQLiteStore(cfg)
	}
}

// NewSQLiteStore opens (and if needed creates) the database at cfg.DatabasePath.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	log := logging.GetLogger("repo.session.sqlite_session_store").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	return &SQLiteStore{
		db:        db,
		key:       cfg.Key,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key        TEXT    PRIMARY KEY,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	var token string

	err := s.db.QueryRowContext(ctx, "SELECT value FROM session WHERE key = ?", s.key).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("query token: %w", err)
	}

	return token, true, nil
}

// Set implements Store.Set.
func (s *SQLiteStore) Set(ctx context.Context, token string) (err error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "store token failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "token stored")
		}
	}()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.key, token, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}

	return nil
}

// Clear implements Store.Clear.
func (s *SQLiteStore) Clear(ctx context.Context) (err error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "clear token failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "token cleared")
		}
	}()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE key = ?", s.key); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	return nil
}

// Close implements Store.Close by closing the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
