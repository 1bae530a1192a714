package card

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

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
)

// SQLiteCardRepositoryConfig holds configuration for the SQLite card repository.
type SQLiteCardRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/gallerysvc.db"`
}

// dsnPragmas are applied by the driver to every pooled connection.
const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// SQLiteCardRepository implements Repository using SQLite as the storage backend.
type SQLiteCardRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteCardRepository)(nil)

// SQLiteCardRepositoryFactory creates a factory function that returns a new SQLiteCardRepository.
func SQLiteCardRepositoryFactory(cfg SQLiteCardRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteCardRepository(cfg)
	}
}

// NewSQLiteCardRepository creates a new SQLiteCardRepository with the given configuration.
// It initializes the database connection and creates the schema if needed.
func NewSQLiteCardRepository(cfg SQLiteCardRepositoryConfig) (*SQLiteCardRepository, error) {
	log := logging.GetLogger("repo.card.sqlite_card_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteCardRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS cards (
			id         TEXT    PRIMARY KEY,
			name       TEXT    NOT NULL,
			link       TEXT    NOT NULL,
			owner      TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS card_likes (
			card_id    TEXT    NOT NULL REFERENCES cards (id) ON DELETE CASCADE,
			user_id    TEXT    NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (card_id, user_id)
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// CreateCard implements Repository.CreateCard using SQLite.
func (r *SQLiteCardRepository) CreateCard(ctx context.Context, card domain.Card) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}

	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO cards (id, name, link, owner, created_at) VALUES (?, ?, ?, ?, ?)",
		card.ID,
		card.Name,
		card.Link,
		card.Owner,
		card.CreatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}

	return nil
}

// ListCards implements Repository.ListCards using SQLite.
func (r *SQLiteCardRepository) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, link, owner, created_at FROM cards ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	index := map[domain.CardID]int{}

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}

		index[card.ID] = len(cards)
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	likes, err := r.db.QueryContext(ctx, "SELECT card_id, user_id FROM card_likes ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer likes.Close()

	for likes.Next() {
		var (
			cardID domain.CardID
			userID domain.UserID
		)

		if err := likes.Scan(&cardID, &userID); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}

		if i, ok := index[cardID]; ok {
			cards[i].Likes = append(cards[i].Likes, userID)
		}
	}

	if err := likes.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}

	return cards, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		card      domain.Card
		createdAt int64
	)

	if err := row.Scan(&card.ID, &card.Name, &card.Link, &card.Owner, &createdAt); err != nil {
		return domain.Card{}, err //nolint:wrapcheck
	}

	card.CreatedAt = time.UnixMilli(createdAt).UTC()
	card.Likes = []domain.UserID{}

	return card, nil
}

// GetCard implements Repository.GetCard using SQLite.
func (r *SQLiteCardRepository) GetCard(ctx context.Context, id domain.CardID) (domain.Card, bool, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx,
		"SELECT id, name, link, owner, created_at FROM cards WHERE id = ?", id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrCardNotFound, err)
		}

		return domain.Card{}, false, fmt.Errorf("query card: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM card_likes WHERE card_id = ? ORDER BY created_at, rowid", id,
	)
	if err != nil {
		return domain.Card{}, false, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID domain.UserID
		if err := rows.Scan(&userID); err != nil {
			return domain.Card{}, false, fmt.Errorf("scan like: %w", err)
		}

		card.Likes = append(card.Likes, userID)
	}

	if err := rows.Err(); err != nil {
		return domain.Card{}, false, fmt.Errorf("iterate likes: %w", err)
	}

	return card, true, nil
}

// DeleteCard implements Repository.DeleteCard using SQLite.
func (r *SQLiteCardRepository) DeleteCard(ctx context.Context, id domain.CardID) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM card_likes WHERE card_id = ?", id); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return domain.ErrCardNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// SetLike implements Repository.SetLike using SQLite.
func (r *SQLiteCardRepository) SetLike(
	ctx context.Context,
	id domain.CardID,
	userID domain.UserID,
	like bool,
) (domain.Card, error) {
	if _, _, err := r.GetCard(ctx, id); err != nil {
		return domain.Card{}, err
	}

	r.writeLock.Lock()

	var err error
	if like {
		_, err = r.db.ExecContext(ctx,
			"INSERT INTO card_likes (card_id, user_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
			id, userID, time.Now().UnixMilli(),
		)
	} else {
		_, err = r.db.ExecContext(ctx, "DELETE FROM card_likes WHERE card_id = ? AND user_id = ?", id, userID)
	}
	r.writeLock.Unlock()

	if err != nil {
		return domain.Card{}, fmt.Errorf("set like: %w", err)
	}

	card, _, err := r.GetCard(ctx, id)

	return card, err
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteCardRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
