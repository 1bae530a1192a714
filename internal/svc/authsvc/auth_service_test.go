package authsvc_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
	"github.com/mkrupp/mesto/internal/svc/authsvc"
)

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users map[string]*domain.UserAccount
	err   error
	m     sync.Mutex
}

func (m *mockUserRepository) CreateUser(_ context.Context, account domain.UserAccount) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}
	if _, exists := m.users[strings.ToLower(account.Email)]; exists {
		return domain.ErrUserAlreadyExists
	}
	m.users[strings.ToLower(account.Email)] = &account
	return nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	account, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, false, domain.ErrUserNotFound
	}
	return account, true, nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id domain.UserID) (*domain.UserAccount, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	for _, account := range m.users {
		if account.ID == id {
			return account, true, nil
		}
	}
	return nil, false, domain.ErrUserNotFound
}

func (m *mockUserRepository) GetUsersByIDs(context.Context, []domain.UserID) (map[domain.UserID]domain.User, error) {
	return map[domain.UserID]domain.User{}, nil
}

func (m *mockUserRepository) UpdateUserInfo(context.Context, domain.UserID, domain.UserInfo) (domain.User, error) {
	return domain.User{}, domain.ErrUserNotFound
}

func (m *mockUserRepository) UpdateUserAvatar(context.Context, domain.UserID, domain.UserAvatar) (domain.User, error) {
	return domain.User{}, domain.ErrUserNotFound
}

func (m *mockUserRepository) Close() error {
	return m.err
}

func newMockUserRepo() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.UserAccount),
	}
}

var ErrRepoError = errors.New("repository error")

func setupTestService(t *testing.T) (*authsvc.AuthService, *mockUserRepository) {
	t.Helper()

	// Generate temporary signing key
	signingKey, err := authsvc.GenerateSigningKey(authsvc.DefaultKeySize)
	if err != nil {
		t.Fatalf("failed to generate signing key: %v", err)
	}

	mockRepo := newMockUserRepo()
	cfg := authsvc.AuthConfig{
		TokenDuration: time.Hour,
		BcryptCost:    bcrypt.MinCost,
		DefaultName:   "Jacques-Yves Cousteau",
		DefaultAbout:  "Explorer",
	}

	svc := &authsvc.AuthService{
		Config:     cfg,
		UserRepo:   mockRepo,
		Log:        logging.GetLogger("test.authsvc"),
		SigningKey: signingKey,
		Now:        time.Now,
	}

	return svc, mockRepo
}

//nolint:paralleltest
func TestAuthService_RegisterUser(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful registration",
			email:    "new@example.com",
			password: "password123",
			wantErr:  nil,
		},
		{
			name:     "duplicate email",
			email:    "existing@example.com",
			password: "password123",
			wantErr:  domain.ErrUserAlreadyExists,
		},
		{
			name:     "missing password",
			email:    "nopass@example.com",
			password: "",
			wantErr:  authsvc.ErrNoPassword,
		},
		{
			name:     "invalid email",
			email:    "not an email",
			password: "password123",
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "repository error",
			email:    "error@example.com",
			password: "password123",
			repoErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup test case
			if tt.name == "duplicate email" {
				_, _ = svc.RegisterUser(context.Background(), tt.email, "oldpass")
			}
			mockRepo.err = tt.repoErr

			// Execute test
			user, err := svc.RegisterUser(context.Background(), tt.email, tt.password)

			// Verify results
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("RegisterUser() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("RegisterUser() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if user.ID == "" || user.Email != tt.email || user.Name != "Jacques-Yves Cousteau" {
					t.Errorf("RegisterUser() user = %+v", user)
				}
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)

	// Create test user
	testPassword := "testpass123"

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	mockRepo.users["test@example.com"] = &domain.UserAccount{
		User:         domain.User{ID: "u1", Email: "test@example.com"},
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}

	tests := []struct {
		name     string
		email    string
		password string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "testpass123",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpass",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			email:    "nonexistent@example.com",
			password: "anypass",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "missing email",
			email:    "",
			password: "anypass",
			wantErr:  authsvc.ErrNoEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Execute test
			token, err := svc.Login(context.Background(), tt.email, tt.password)

			// Verify results
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				// Verify token can be validated
				authToken, err := svc.ValidateToken(context.Background(), token)
				if err != nil {
					t.Errorf("Login() generated invalid token: %v", err)
				}
				if authToken.UserID != "u1" {
					t.Errorf("Login() token subject = %v, want u1", authToken.UserID)
				}
			}
		})
	}
}

func TestAuthService_LoginRepositoryError(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)
	mockRepo.err = ErrRepoError

	if _, err := svc.Login(context.Background(), "test@example.com", "testpass"); !errors.Is(err, ErrRepoError) {
		t.Errorf("Login() error = %v, wantErr %v", err, ErrRepoError)
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	// Generate a valid token
	ctx := context.Background()
	registered, err := svc.RegisterUser(ctx, "test@example.com", "testpass")
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	validToken, err := svc.Login(ctx, "test@example.com", "testpass")
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	expiredToken, _, err := authsvc.IssueToken(registered.ID, time.Now().Add(-2*time.Hour), time.Hour, svc.SigningKey)
	if err != nil {
		t.Fatalf("failed to generate expired token: %v", err)
	}

	otherKey, _ := authsvc.GenerateSigningKey(authsvc.DefaultKeySize)
	foreignToken, _, err := authsvc.IssueToken(registered.ID, time.Now(), time.Hour, otherKey)
	if err != nil {
		t.Fatalf("failed to generate foreign token: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "valid token",
			token:   validToken,
			wantErr: nil,
		},
		{
			name:    "invalid token format",
			token:   "invalid-token",
			wantErr: domain.ErrInvalidAuthToken,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: domain.ErrInvalidAuthToken,
		},
		{
			name:    "expired token",
			token:   expiredToken,
			wantErr: domain.ErrInvalidAuthToken,
		},
		{
			name:    "foreign signature",
			token:   foreignToken,
			wantErr: domain.ErrInvalidAuthToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := svc.ValidateToken(ctx, tt.token)

			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("ValidateToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if token.UserID != registered.ID {
					t.Errorf("ValidateToken() user = %v, want %v", token.UserID, registered.ID)
				}
				if token.ExpiresAt <= time.Now().Unix() {
					t.Error("ValidateToken() token already expired")
				}
			}
		})
	}
}

func TestGetSigningKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "gallerysvc.key")

	created, err := authsvc.GetSigningKey(path)
	if err != nil {
		t.Fatalf("GetSigningKey() create error = %v", err)
	}

	loaded, err := authsvc.GetSigningKey(path)
	if err != nil {
		t.Fatalf("GetSigningKey() load error = %v", err)
	}

	if string(created) != string(loaded) || len(loaded) != authsvc.DefaultKeySize {
		t.Errorf("GetSigningKey() reloaded key differs")
	}

	if _, err := authsvc.DecodeSigningKey([]byte("abcd")); !errors.Is(err, authsvc.ErrSigningKeyTooShort) {
		t.Errorf("DecodeSigningKey() error = %v, want %v", err, authsvc.ErrSigningKeyTooShort)
	}
}
