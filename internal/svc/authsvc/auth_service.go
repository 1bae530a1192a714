package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
	"github.com/mkrupp/mesto/internal/repo/user"
)

var (
	// ErrNoEmail is returned when the email is missing from the request.
	ErrNoEmail = errors.New("no email")
	// ErrNoPassword is returned when the password is missing from the request.
	ErrNoPassword = errors.New("no password")
	// ErrInvalidEmail is returned when the email is not a valid address.
	ErrInvalidEmail = errors.New("invalid email")
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKeyFile is the path to the hex-encoded HMAC secret
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/gallerysvc.key"`

	// TokenDuration is the validity duration of auth tokens
	TokenDuration time.Duration `env:"TOKEN_DURATION" default:"168h"` // 7d

	// BcryptCost is the work factor of password hashes
	BcryptCost int `env:"BCRYPT_COST" default:"10"`

	// Profile defaults of newly registered users
	DefaultName   string `env:"DEFAULT_NAME" default:"Jacques-Yves Cousteau"`
	DefaultAbout  string `env:"DEFAULT_ABOUT" default:"Explorer"`
	DefaultAvatar string `env:"DEFAULT_AVATAR" default:"https://pictures.s3.yandex.net/resources/jacques-cousteau_1604399756.png"`
}

// AuthService provides account registration, login and token validation.
type AuthService struct {
	Config     AuthConfig
	UserRepo   user.Repository
	Log        logging.Logger
	SigningKey []byte
	Now        func() time.Time
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if the signing key cannot be loaded or the user repository cannot be created.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	signingKey, err := GetSigningKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get signing key: %w", err)
	}

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:     cfg,
		UserRepo:   userRepo,
		Log:        logging.GetLogger("svc.authsvc.auth_service"),
		SigningKey: signingKey,
		Now:        time.Now,
	}, nil
}

func validateCredentials(email, password string) (string, error) {
	email = strings.TrimSpace(email)

	switch {
	case email == "":
		return "", errors.Join(domain.ErrInvalidInput, ErrNoEmail)
	case password == "":
		return "", errors.Join(domain.ErrInvalidInput, ErrNoPassword)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.Join(domain.ErrInvalidInput, ErrInvalidEmail)
	}

	return email, nil
}

// RegisterUser creates a new account with the configured default profile.
// The password is hashed with bcrypt before storage.
// Returns an error if the email is already taken or if creation fails.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (_ domain.User, err error) {
	log := s.Log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	email, err = validateCredentials(email, password)
	if err != nil {
		return domain.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.BcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.UserAccount{
		User: domain.User{
			ID:     domain.UserID(uuid.NewString()),
			Name:   s.Config.DefaultName,
			About:  s.Config.DefaultAbout,
			Avatar: s.Config.DefaultAvatar,
			Email:  email,
		},
		PasswordHash: passwordHash,
		CreatedAt:    s.Now().Unix(),
	}

	if err := s.UserRepo.CreateUser(ctx, account); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return account.User, nil
}

// Login authenticates a user and generates a signed JWT token.
// Returns the encoded token string or an error if authentication fails.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ string, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	email, err = validateCredentials(email, password)
	if err != nil {
		return "", err
	}

	account, ok, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", errors.Join(domain.ErrInvalidCredentials, err)
		}

		return "", fmt.Errorf("get user: %w", err)
	} else if !ok {
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return "", errors.Join(domain.ErrInvalidCredentials, err)
	}

	signed, token, err := IssueToken(account.ID, s.Now(), s.Config.TokenDuration, s.SigningKey)
	if err != nil {
		return "", err
	}

	log = log.With(logging.Group("token",
		"user_id", token.UserID,
		"exp", time.Unix(token.ExpiresAt, 0).UTC().Format(time.RFC3339),
		"iat", time.Unix(token.IssuedAt, 0).UTC().Format(time.RFC3339),
	))

	return signed, nil
}

// ValidateToken verifies a JWT token's signature and expiration.
// Returns the decoded token if valid, or an error if validation fails.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (token domain.AuthToken, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "validate token failed", "error", err)
		} else {
			log.DebugContext(ctx, "token validated")
		}
	}()

	token, err = ValidateToken(tokenString, s.SigningKey)
	if err != nil {
		return domain.AuthToken{}, fmt.Errorf("validate token: %w", err)
	}

	log = log.With(logging.Group("token",
		"user_id", token.UserID,
		"exp", time.Unix(token.ExpiresAt, 0).UTC().Format(time.RFC3339),
	))

	return token, nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}
