package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/db/repository"
)

var (
	// ErrNotOwner rejects edits to someone else's profile.
	ErrNotOwner = errors.New("only the profile owner can edit it")
	// ErrUserNotFound is returned for unknown usernames.
	ErrUserNotFound = errors.New("user not found")
)

const challengesPerProfile = 50

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (repository.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
	UpdateAbout(ctx context.Context, userID uuid.UUID, about string) error
}

// ChallengeStore lists a user's challenges.
type ChallengeStore interface {
	ListByUsername(ctx context.Context, username string, limit int) ([]repository.Challenge, error)
}

// Service serves profile pages and bio edits.
type Service struct {
	users      UserStore
	challenges ChallengeStore
	cache      Cache
	logger     zerolog.Logger
}

func NewService(users UserStore, challenges ChallengeStore, cache Cache, logger zerolog.Logger) *Service {
	return &Service{
		users:      users,
		challenges: challenges,
		cache:      cache,
		logger:     logger.With().Str("component", "profile").Logger(),
	}
}

// GetByUsername reads through the cache. Cache failures fall back to the store.
func (s *Service) GetByUsername(ctx context.Context, username string) (Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	return newProfile(user), nil
}

func (s *Service) lookup(ctx context.Context, username string) (repository.User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, username)
		if err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("profile cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, ErrUserNotFound
		}
		return repository.User{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("profile cache write failed")
		}
	}
	return user, nil
}

// ListUsernames returns every username, for pre-rendering profile paths.
func (s *Service) ListUsernames(ctx context.Context) ([]string, error) {
	names, err := s.users.ListUsernames(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ChallengesByUsername lists the challenges the user authored, newest first.
func (s *Service) ChallengesByUsername(ctx context.Context, username string) ([]repository.Challenge, error) {
	if _, err := s.lookup(ctx, username); err != nil {
		return nil, err
	}
	items, err := s.challenges.ListByUsername(ctx, username, challengesPerProfile)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.Challenge{}
	}
	return items, nil
}

// EditAbout replaces the bio of username on behalf of actor and returns the
// refreshed profile. Blank input leaves the bio untouched.
func (s *Service) EditAbout(ctx context.Context, actor uuid.UUID, username, about string) (Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	if user.ID != actor {
		return Profile{}, ErrNotOwner
	}

	about = strings.TrimSpace(about)
	if about == "" {
		return newProfile(user), nil
	}

	if err := s.users.UpdateAbout(ctx, actor, about); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("profile cache invalidation failed")
		}
	}
	s.logger.Info().Str("username", username).Msg("bio updated")

	refreshed, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, refreshed); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("profile cache write failed")
		}
	}
	return newProfile(refreshed), nil
}
