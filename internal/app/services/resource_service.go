package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
)

// ResourceService manages the links shared inside groups
type ResourceService interface {
	PostResource(ctx context.Context, uploaderID int64, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	ListResources(ctx context.Context, filter *dto.ResourceFilterRequest) ([]dto.ResourceResponse, error)
}

type resourceServiceImpl struct {
	groups    GroupStore
	resources ResourceStore
	logger    zerolog.Logger
}

// NewResourceService creates a new ResourceService
func NewResourceService(groups GroupStore, resources ResourceStore, logger zerolog.Logger) ResourceService {
	return &resourceServiceImpl{groups: groups, resources: resources, logger: logger}
}

// PostResource stores a link in a group the uploader belongs to
func (s *resourceServiceImpl) PostResource(ctx context.Context, uploaderID int64, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	title := strings.TrimSpace(req.Title)
	link := strings.TrimSpace(req.Link)
	if title == "" {
		return nil, apperrors.NewFieldValidationError("title", "This field may not be blank.")
	}
	if !validLink(link) {
		return nil, apperrors.NewFieldValidationError("link", "Enter a valid URL.")
	}

	group, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Members, err = s.groups.ListMembers(ctx, group.ID); err != nil {
		return nil, err
	}
	if !auth.CanPostResource(group, uploaderID) {
		return nil, apperrors.NewForbiddenError("Only group members can post resources")
	}

	resource := &models.Resource{
		GroupID:    group.ID,
		UploadedBy: &uploaderID,
		Title:      title,
		Link:       link,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		if dberrors.IsForeignKeyViolation(err, repositories.ConstraintResourceGroupFK) {
			return nil, apperrors.NewResourceNotFoundError("Group not found")
		}
		s.logger.Error().Err(err).Int64("groupID", group.ID).Msg("Failed to create resource")
		return nil, err
	}

	for _, m := range group.Members {
		if m.ID == uploaderID {
			username := m.Username
			resource.UploaderUsername = &username
		}
	}

	s.logger.Info().Int64("resourceID", resource.ID).Int64("groupID", group.ID).Int64("userID", uploaderID).Msg("Resource posted")
	resp := dto.NewResourceResponse(resource)
	return &resp, nil
}

// ListResources returns resources newest first, optionally for one group
func (s *resourceServiceImpl) ListResources(ctx context.Context, filter *dto.ResourceFilterRequest) ([]dto.ResourceResponse, error) {
	var groupID *int64
	if filter != nil {
		groupID = filter.GroupID
	}

	resources, err := s.resources.List(ctx, groupID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list resources")
		return nil, err
	}
	return dto.NewResourceResponses(resources), nil
}
