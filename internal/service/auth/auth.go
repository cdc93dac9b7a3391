package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/models"
	"github.com/nkiryanov/portfolio/internal/repository"
)

const (
	defaultAccessHeaderName  = "Authorization"
	defaultAccessAuthScheme  = "Bearer"
	defaultMinPasswordLength = 6

	// bcrypt ignores everything after 72 bytes
	maxPasswordBytes = 72
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type TokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)
	Verify(token string) (models.Identity, error)
}

type Config struct {
	// Hasher to use during user registration or login process
	Hasher PasswordHasher

	// Header and scheme the access token is expected in: 'Authorization: Bearer <token>'
	AccessHeaderName string
	AccessAuthScheme string

	MinPasswordLength int
}

// Auth service
type AuthService struct {
	tokenManager TokenManager
	hasher       PasswordHasher
	userRepo     repository.UserRepo

	accessHeaderName  string
	accessAuthScheme  string
	minPasswordLength int

	// Compared against on login of unknown user, so it takes as long as login of existing one
	dummyHash func() (string, error)
}

func NewService(cfg Config, tokenManager TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}
	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = defaultMinPasswordLength
	}

	hasher := cfg.Hasher

	return &AuthService{
		tokenManager:      tokenManager,
		hasher:            hasher,
		userRepo:          userRepo,
		accessHeaderName:  cfg.AccessHeaderName,
		accessAuthScheme:  cfg.AccessAuthScheme,
		minPasswordLength: cfg.MinPasswordLength,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(uuid.NewString())
		}),
	}, nil
}

// Register creates user and issues access token for it.
// Duplicate username is reported by storage as apperrors.ErrUserAlreadyExists
func (s *AuthService) Register(ctx context.Context, username string, password string) (models.Session, error) {
	if len(password) < s.minPasswordLength {
		return models.Session{}, apperrors.ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return models.Session{}, apperrors.ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Session{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, username, hash)
	if err != nil {
		return models.Session{}, err
	}

	return s.session(user)
}

// Login checks credentials. Unknown user and wrong password are the same apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.Session, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)

	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		if dummy, hashErr := s.dummyHash(); hashErr == nil {
			_ = s.hasher.Compare(dummy, password)
		}
		return models.Session{}, apperrors.ErrInvalidCredentials
	default:
		return models.Session{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.Session{}, apperrors.ErrInvalidCredentials
	}

	return s.session(user)
}

// Profile of the user. Missing user is apperrors.ErrUserNotFound
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// Auth extracts access token from request and verifies it
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.Identity, error) {
	header := r.Header.Get(s.accessHeaderName)
	if header == "" {
		return models.Identity{}, fmt.Errorf("%w: %s header is missing", apperrors.ErrTokenMalformed, s.accessHeaderName)
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) || token == "" {
		return models.Identity{}, fmt.Errorf("%w: %s header is not '%s <token>'", apperrors.ErrTokenMalformed, s.accessHeaderName, s.accessAuthScheme)
	}

	return s.tokenManager.Verify(token)
}

func (s *AuthService) session(user models.User) (models.Session, error) {
	token, err := s.tokenManager.Issue(user)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return models.Session{User: user, Token: token}, nil
}
