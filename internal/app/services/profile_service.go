package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
)

// ProfileService manages subject interests and the profile page
type ProfileService interface {
	SetInterests(ctx context.Context, userID int64, subjectIDs []int64) ([]dto.SubjectResponse, error)
	GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
}

type profileServiceImpl struct {
	users  UserStore
	groups GroupStore
	logger zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(users UserStore, groups GroupStore, logger zerolog.Logger) ProfileService {
	return &profileServiceImpl{users: users, groups: groups, logger: logger}
}

// SetInterests replaces the caller's subject set and returns the stored set
func (s *profileServiceImpl) SetInterests(ctx context.Context, userID int64, subjectIDs []int64) ([]dto.SubjectResponse, error) {
	ids := uniqueIDs(subjectIDs)
	if err := s.users.ReplaceProfileSubjects(ctx, userID, ids); err != nil {
		if dberrors.IsForeignKeyViolation(err, repositories.ConstraintProfileSubjectFK) {
			return nil, apperrors.NewFieldValidationError("subjects", "Unknown subject")
		}
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to set interests")
		return nil, err
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("userID", userID).Int("subjects", len(profile.Subjects)).Msg("Interests updated")
	return dto.NewSubjectResponses(profile.Subjects), nil
}

// GetProfile returns the caller's profile with owned and joined groups
func (s *profileServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned, err := s.groups.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := s.groups.ListJoinedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		Username:     user.Username,
		Email:        user.Email,
		Subjects:     dto.NewSubjectResponses(profile.Subjects),
		OwnedGroups:  dto.NewGroupSummaries(owned),
		JoinedGroups: dto.NewGroupSummaries(joined),
	}, nil
}
