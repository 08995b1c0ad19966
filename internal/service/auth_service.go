package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"evolt/internal/models"
	"evolt/internal/password"
	"evolt/internal/repository"
	"evolt/internal/sessions"
)

const minPasswordLength = 6

var (
	// ErrEmailInUse is returned when attempting to register a duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure. It is deliberately the
	// same for unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrSessionExpired is returned when a token's server-side session is gone.
	ErrSessionExpired = errors.New("auth: session expired")
)

// UserRepository defines storage contract used by the service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionStore tracks issued tokens so logout can revoke them.
type SessionStore interface {
	Save(ctx context.Context, session sessions.Session) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenID string) error
}

// AuthService contains registration/login/session logic.
type AuthService struct {
	repo     UserRepository
	hasher   password.Hasher
	tokens   *TokenService
	sessions SessionStore
	logger   *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, hasher password.Hasher, tokens *TokenService, store SessionStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		sessions: store,
		logger:   logger,
	}
}

// Register creates a new user account and issues a session token.
func (s *AuthService) Register(ctx context.Context, name, email, pass string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var fields []models.FieldError
	if name == "" {
		fields = append(fields, models.FieldError{Field: "name", Message: "Name is required"})
	}
	if email == "" || !strings.Contains(email, "@") {
		fields = append(fields, models.FieldError{Field: "email", Message: "Please enter a valid email address"})
	}
	if len(pass) < minPasswordLength {
		fields = append(fields, models.FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	if err := models.NewValidationError(fields); err != nil {
		return nil, "", err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailInUse
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, token, nil
}

// Login authenticates a user and produces a bearer token.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.hasher.Compare(user.PasswordHash, pass); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

// CurrentUser resolves validated claims to the account, requiring the
// server-side session to still be live.
func (s *AuthService) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	alive, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, ErrSessionExpired
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the session behind the token.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) (string, error) {
	token, claims, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return "", err
	}
	err = s.sessions.Save(ctx, sessions.Session{
		TokenID: claims.ID,
		UserID:  user.ID,
		Role:    string(user.Role),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
