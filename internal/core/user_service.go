package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/cache"
	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/models"
)

// userService implements the UserService interface.
type userService struct {
	userRepo       db.UserRepository
	directoryCache cache.Cache // nil when directory lookups are not cached
	logger         *zap.Logger
	now            func() time.Time
}

// UserServiceOption configures optional UserService collaborators.
type UserServiceOption func(*userService)

// WithDirectoryCache makes profile changes evict the cached email lookups that
// NewCachedDirectory stores in c.
func WithDirectoryCache(c cache.Cache, logger *zap.Logger) UserServiceOption {
	return func(s *userService) {
		s.directoryCache = c
		s.logger = logger
	}
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, opts ...UserServiceOption) UserService {
	s := &userService{
		userRepo: userRepo,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one.
// Returns the user, a boolean indicating if the user was created, and an error if any.
// An existing profile whose email or display name drifted from the token is refreshed.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	if s.userRepo == nil {
		return nil, false, errors.New("UserRepository not initialized in UserService")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			now := s.now()
			newUser := &models.User{
				ID:          userID, // User ID from Firebase Auth is the document ID
				Email:       email,
				DisplayName: displayName,
				PhotoURL:    photoURL,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
				return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
			}
			s.evictDirectory(ctx, email)
			return newUser, true, nil
		}
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	previousEmail := user.Email
	changed := false
	if email != "" && user.Email != email {
		user.Email = email
		changed = true
	}
	if displayName != "" && user.DisplayName != displayName {
		user.DisplayName = displayName
		changed = true
	}
	if photoURL != "" && user.PhotoURL != photoURL {
		user.PhotoURL = photoURL
		changed = true
	}
	if changed {
		user.UpdatedAt = s.now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to refresh user '%s': %w", userID, err)
		}
		if previousEmail != user.Email {
			s.evictDirectory(ctx, previousEmail, user.Email)
		}
	}
	return user, false, nil
}

// evictDirectory drops cached lookups for emails whose owning account changed.
func (s *userService) evictDirectory(ctx context.Context, emails ...string) {
	if s.directoryCache == nil {
		return
	}
	for _, email := range emails {
		if email == "" {
			continue
		}
		if err := s.directoryCache.Delete(ctx, directoryCacheKey(email)); err != nil {
			s.logger.Warn("Directory cache eviction failed", zap.String("email", email), zap.Error(err))
		}
	}
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if s.userRepo == nil {
		return nil, errors.New("UserRepository not initialized in UserService")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

// Resolve looks up a registered account by email.
func (s *userService) Resolve(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account for '%s'", ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return user, nil
}
