package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
)

// SQLiteUserRepositoryConfig holds configuration for the SQLite user repository.
type SQLiteUserRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/gallerysvc.db"`
}

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new SQLiteUserRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteUserRepositoryFactory(cfg SQLiteUserRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteUserRepository(cfg)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository with the given configuration.
// It initializes the database connection and creates the schema if needed.
// Returns an error if database connection or initialization fails.
func NewSQLiteUserRepository(cfg SQLiteUserRepositoryConfig) (*SQLiteUserRepository, error) {
	log := logging.GetLogger("repo.user.sqlite_user_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

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
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteUserRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) (err error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT    PRIMARY KEY,
			email         TEXT    UNIQUE NOT NULL COLLATE NOCASE,
			name          TEXT    NOT NULL,
			about         TEXT    NOT NULL,
			avatar        TEXT    NOT NULL,
			password_hash BLOB    NOT NULL,
			created_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

const selectUser = "SELECT id, email, name, about, avatar, password_hash, created_at FROM users"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.UserAccount, error) {
	var account domain.UserAccount

	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.About,
		&account.Avatar,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &account, nil
}

// CreateUser implements Repository.CreateUser using SQLite.
func (r *SQLiteUserRepository) CreateUser(ctx context.Context, account domain.UserAccount) (err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, about, avatar, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		account.ID,
		account.Email,
		account.Name,
		account.About,
		account.Avatar,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				fallthrough
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			default:
				break
			}
		}

		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetUserByEmail implements Repository.GetUserByEmail using SQLite.
func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, bool, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, selectUser+" WHERE email = ?", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	return account, true, nil
}

// GetUserByID implements Repository.GetUserByID using SQLite.
func (r *SQLiteUserRepository) GetUserByID(ctx context.Context, id domain.UserID) (*domain.UserAccount, bool, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, selectUser+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	return account, true, nil
}

// GetUsersByIDs implements Repository.GetUsersByIDs using SQLite.
func (r *SQLiteUserRepository) GetUsersByIDs(
	ctx context.Context,
	ids []domain.UserID,
) (map[domain.UserID]domain.User, error) {
	users := make(map[domain.UserID]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.db.QueryContext(ctx, selectUser+" WHERE id IN ("+placeholders+")", args...) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		users[account.ID] = account.User
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// UpdateUserInfo implements Repository.UpdateUserInfo using SQLite.
func (r *SQLiteUserRepository) UpdateUserInfo(
	ctx context.Context,
	id domain.UserID,
	info domain.UserInfo,
) (domain.User, error) {
	return r.update(ctx, id, "UPDATE users SET name = ?, about = ? WHERE id = ?", info.Name, info.About, id)
}

// UpdateUserAvatar implements Repository.UpdateUserAvatar using SQLite.
func (r *SQLiteUserRepository) UpdateUserAvatar(
	ctx context.Context,
	id domain.UserID,
	avatar domain.UserAvatar,
) (domain.User, error) {
	return r.update(ctx, id, "UPDATE users SET avatar = ? WHERE id = ?", avatar.Avatar, id)
}

func (r *SQLiteUserRepository) update(ctx context.Context, id domain.UserID, query string, args ...any) (domain.User, error) {
	r.writeLock.Lock()

	result, err := r.db.ExecContext(ctx, query, args...)
	r.writeLock.Unlock()

	if err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return domain.User{}, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}

	account, _, err := r.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	return account.User, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteUserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
