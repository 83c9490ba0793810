package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flowdeck/internal/auth"
	"flowdeck/internal/cache"
	apperrors "flowdeck/internal/errors"
	"flowdeck/internal/model"
	"flowdeck/internal/repository"
)

const bcryptCost = 10

const profileCacheTTL = 5 * time.Minute

// UserService exposes account operations: registration, login and profile
// read/update. Tokens are issued here; nothing about a session is stored.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]string) (*model.User, error)
}

type userService struct {
	repo       repository.UserRepository
	jwtService *auth.JWTService
	cache      *cache.Client
}

// NewUserService builds a UserService with repository, token issuer and cache.
func NewUserService(repo repository.UserRepository, jwtService *auth.JWTService, cache *cache.Client) UserService {
	return &userService{
		repo:       repo,
		jwtService: jwtService,
		cache:      cache,
	}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// Register creates a new user with a hashed password and issues a session token.
func (s *userService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Two concurrent registrations can race past the existence check;
		// the unique index settles it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and issues a session token. The check order is
// lookup, active flag, password: a deactivated account is reported distinctly,
// an unknown email and a wrong password are not.
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperrors.ErrMissingCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		return nil, "", apperrors.ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("update last login: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))

	token, err := s.jwtService.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// GetProfile returns the user record, read through the cache.
func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, profileCacheTTL)
	return user, nil
}

// profileAllowList names the fields a profile update may touch.
var profileAllowList = map[string]bool{
	"name":  true,
	"email": true,
}

// UpdateProfile applies an allow-listed update to the user record.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]string) (*model.User, error) {
	allowed := make(map[string]string, len(updates))
	for field, value := range updates {
		if profileAllowList[field] {
			allowed[field] = value
		}
	}
	if len(allowed) == 0 {
		return nil, apperrors.ErrNoValidFields
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if name, ok := allowed["name"]; ok {
		user.Name = name
	}
	if email, ok := allowed["email"]; ok {
		user.Email = email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}
