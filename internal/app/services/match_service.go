package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// MatchService finds users sharing at least one subject with the caller
type MatchService interface {
	FindMatches(ctx context.Context, userID int64) ([]dto.MatchResponse, error)
}

type matchServiceImpl struct {
	users  UserStore
	logger zerolog.Logger
}

// NewMatchService creates a new MatchService
func NewMatchService(users UserStore, logger zerolog.Logger) MatchService {
	return &matchServiceImpl{users: users, logger: logger}
}

// FindMatches returns matching users sorted by username. A caller with no
// profile or no subjects gets an empty list.
func (s *matchServiceImpl) FindMatches(ctx context.Context, userID int64) ([]dto.MatchResponse, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return []dto.MatchResponse{}, nil
		}
		return nil, err
	}
	if len(profile.Subjects) == 0 {
		return []dto.MatchResponse{}, nil
	}

	matches, err := s.users.FindMatchingProfiles(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to find matches")
		return nil, err
	}
	return dto.NewMatchResponses(matches), nil
}
