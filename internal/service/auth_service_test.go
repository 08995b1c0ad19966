package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"evolt/internal/models"
	"evolt/internal/password"
	"evolt/internal/repository"
	"evolt/internal/sessions"
)

type fakeUserRepo struct {
	nextID  int64
	byEmail map[string]*models.User
	byID    map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID:  1,
		byEmail: make(map[string]*models.User),
		byID:    make(map[int64]*models.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.byEmail[user.Email] = &stored
	f.byID[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

type fakeSessionStore struct {
	active map[string]sessions.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{active: make(map[string]sessions.Session)}
}

func (f *fakeSessionStore) Save(_ context.Context, s sessions.Session) error {
	f.active[s.TokenID] = s
	return nil
}

func (f *fakeSessionStore) Exists(_ context.Context, tokenID string) (bool, error) {
	_, ok := f.active[tokenID]
	return ok, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, tokenID string) error {
	delete(f.active, tokenID)
	return nil
}

func newAuthService() (*AuthService, *TokenService) {
	tokens := NewTokenService("test-secret", time.Hour)
	svc := NewAuthService(
		newFakeUserRepo(),
		password.NewBcryptHasher(bcrypt.MinCost),
		tokens,
		newFakeSessionStore(),
		zap.NewNop(),
	)
	return svc, tokens
}

func TestRegisterLoginCurrentUserRoundTrip(t *testing.T) {
	svc, tokens := newAuthService()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice", "Alice@Example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email must be lowercased, got %s", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Errorf("role = %s, want user", user.Role)
	}
	if token == "" {
		t.Fatal("expected token from register")
	}

	loggedIn, loginToken, err := svc.Login(ctx, "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("login resolved wrong user %d", loggedIn.ID)
	}

	claims, err := tokens.Validate(loginToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	current, err := svc.CurrentUser(ctx, claims)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if current.ID != user.ID {
		t.Errorf("current user = %d, want %d", current.ID, user.ID)
	}
}

func TestRegisterCollectsValidationErrors(t *testing.T) {
	svc, _ := newAuthService()

	_, _, err := svc.Register(context.Background(), "", "not-an-email", "abc")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("expected name+email+password errors, got %v", verr.Fields)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret!"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, err := svc.Register(ctx, "Imposter", "alice@example.com", "another1")
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret!"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "whatever1")
	_, _, wrongErr := svc.Login(ctx, "alice@example.com", "wrongpass")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("both failures must be ErrInvalidCredentials, got %v / %v", unknownErr, wrongErr)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, tokens := newAuthService()
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	claims, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// Token still passes JWT validation but its session is gone.
	if _, err := svc.CurrentUser(ctx, claims); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}
}
