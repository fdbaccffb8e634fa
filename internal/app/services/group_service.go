package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
	"github.com/yigit/studyhub/internal/pkg/metrics"
)

// GroupService defines the group registry operations
type GroupService interface {
	ListGroups(ctx context.Context, filter *dto.GroupFilterRequest) ([]dto.GroupResponse, error)
	GetGroup(ctx context.Context, id int64) (*dto.GroupDetailResponse, error)
	CreateGroup(ctx context.Context, ownerID int64, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	UpdateGroup(ctx context.Context, id, editorID int64, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, id, editorID int64) error
	JoinGroup(ctx context.Context, id, userID int64) error
	LeaveGroup(ctx context.Context, id, userID int64) error
}

type groupServiceImpl struct {
	groups    GroupStore
	resources ResourceStore
	logger    zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groups GroupStore, resources ResourceStore, logger zerolog.Logger) GroupService {
	return &groupServiceImpl{groups: groups, resources: resources, logger: logger}
}

// ListGroups returns groups ordered by name, optionally filtered by subject
func (s *groupServiceImpl) ListGroups(ctx context.Context, filter *dto.GroupFilterRequest) ([]dto.GroupResponse, error) {
	var f models.GroupFilter
	if filter != nil {
		f.SubjectID = filter.SubjectID
	}

	groups, err := s.groups.List(ctx, f)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list groups")
		return nil, err
	}

	out := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.NewGroupResponse(g))
	}
	return out, nil
}

// GetGroup loads a group with its members and resources
func (s *groupServiceImpl) GetGroup(ctx context.Context, id int64) (*dto.GroupDetailResponse, error) {
	group, err := s.loadWithMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.Resources, err = s.resources.List(ctx, &id); err != nil {
		s.logger.Error().Err(err).Int64("groupID", id).Msg("Failed to load group resources")
		return nil, err
	}

	resp := dto.NewGroupDetailResponse(group)
	return &resp, nil
}

// CreateGroup stores the group and makes the owner its first member
func (s *groupServiceImpl) CreateGroup(ctx context.Context, ownerID int64, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewFieldValidationError("name", "This field may not be blank.")
	}

	group := &models.StudyGroup{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   ownerID,
	}
	if err := s.groups.CreateWithOwner(ctx, group, uniqueIDs(req.SubjectIDs)); err != nil {
		if dberrors.IsForeignKeyViolation(err, repositories.ConstraintGroupSubjectFK) {
			return nil, apperrors.NewFieldValidationError("subjects", "Unknown subject")
		}
		s.logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Failed to create group")
		return nil, err
	}

	s.logger.Info().Int64("groupID", group.ID).Int64("ownerID", ownerID).Msg("Group created")

	created, err := s.groups.GetByID(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewGroupResponse(created)
	return &resp, nil
}

// UpdateGroup applies a partial update. Only the owner may edit.
func (s *groupServiceImpl) UpdateGroup(ctx context.Context, id, editorID int64, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanWrite(group, editorID) {
		return nil, apperrors.NewForbiddenError("Only the group owner can edit this group")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewFieldValidationError("name", "This field may not be blank.")
		}
		group.Name = name
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}
	var subjectIDs []int64
	if req.SubjectIDs != nil {
		subjectIDs = uniqueIDs(*req.SubjectIDs)
	}

	if err := s.groups.Update(ctx, group, subjectIDs); err != nil {
		if dberrors.IsForeignKeyViolation(err, repositories.ConstraintGroupSubjectFK) {
			return nil, apperrors.NewFieldValidationError("subjects", "Unknown subject")
		}
		s.logger.Error().Err(err).Int64("groupID", id).Msg("Failed to update group")
		return nil, err
	}

	updated, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewGroupResponse(updated)
	return &resp, nil
}

// DeleteGroup removes the group. Only the owner may delete.
func (s *groupServiceImpl) DeleteGroup(ctx context.Context, id, editorID int64) error {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanWrite(group, editorID) {
		return apperrors.NewForbiddenError("Only the group owner can delete this group")
	}

	if err := s.groups.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("groupID", id).Msg("Failed to delete group")
		return err
	}
	s.logger.Info().Int64("groupID", id).Int64("userID", editorID).Msg("Group deleted")
	return nil
}

// JoinGroup adds the caller as a member. Joining twice is an error.
func (s *groupServiceImpl) JoinGroup(ctx context.Context, id, userID int64) error {
	if _, err := s.groups.GetByID(ctx, id); err != nil {
		metrics.RecordMembership("join", outcomeOf(err))
		return err
	}

	added, err := s.groups.AddMember(ctx, id, userID)
	if err != nil {
		metrics.RecordMembership("join", outcomeOf(err))
		s.logger.Error().Err(err).Int64("groupID", id).Int64("userID", userID).Msg("Failed to join group")
		return err
	}
	if !added {
		metrics.RecordMembership("join", "already_member")
		return apperrors.NewAlreadyMemberError()
	}

	metrics.RecordMembership("join", "ok")
	s.logger.Info().Int64("groupID", id).Int64("userID", userID).Msg("User joined group")
	return nil
}

// LeaveGroup removes the caller's membership. The owner can never leave;
// leaving a group one is not part of does nothing.
func (s *groupServiceImpl) LeaveGroup(ctx context.Context, id, userID int64) error {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		metrics.RecordMembership("leave", outcomeOf(err))
		return err
	}
	if group.IsOwner(userID) {
		metrics.RecordMembership("leave", "owner_rejected")
		return apperrors.NewOwnerCannotLeaveError()
	}

	removed, err := s.groups.RemoveMember(ctx, id, userID)
	if err != nil {
		metrics.RecordMembership("leave", outcomeOf(err))
		s.logger.Error().Err(err).Int64("groupID", id).Int64("userID", userID).Msg("Failed to leave group")
		return err
	}
	if !removed {
		metrics.RecordMembership("leave", "not_member")
		return nil
	}

	metrics.RecordMembership("leave", "ok")
	s.logger.Info().Int64("groupID", id).Int64("userID", userID).Msg("User left group")
	return nil
}

// loadWithMembers fetches a group and fills in its member list
func (s *groupServiceImpl) loadWithMembers(ctx context.Context, id int64) (*models.StudyGroup, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.Members, err = s.groups.ListMembers(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("groupID", id).Msg("Failed to load group members")
		return nil, err
	}
	return group, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return "not_found"
	}
	return "error"
}
