package dto

import (
	"time"

	"github.com/yigit/studyhub/internal/app/models"
)

// --- Request DTOs ---

// CreateGroupRequest represents group creation data
type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description"`
	SubjectIDs  []int64 `json:"subjects" binding:"omitempty,dive,gt=0"`
}

// UpdateGroupRequest is a partial update; nil fields are left unchanged
type UpdateGroupRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=255"`
	Description *string  `json:"description"`
	SubjectIDs  *[]int64 `json:"subjects" binding:"omitempty,dive,gt=0"`
}

// GroupFilterRequest holds list query parameters
type GroupFilterRequest struct {
	SubjectID *int64 `form:"subject" binding:"omitempty,gt=0"`
}

// --- Response DTOs ---

// SubjectResponse is a catalog entry
type SubjectResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupResponse is the list view of a group
type GroupResponse struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	CreatedBy         int64             `json:"createdBy"`
	CreatedByUsername string            `json:"createdByUsername"`
	Subjects          []SubjectResponse `json:"subjects"`
	MemberCount       int64             `json:"memberCount"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// GroupDetailResponse adds members and resources to GroupResponse
type GroupDetailResponse struct {
	GroupResponse
	Members   []string           `json:"members"`
	Resources []ResourceResponse `json:"resources"`
}

// GroupSummary is the short form used on profile pages
type GroupSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewSubjectResponses maps catalog models
func NewSubjectResponses(subjects []*models.Subject) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, SubjectResponse{ID: s.ID, Name: s.Name})
	}
	return out
}

// NewGroupResponse maps a group model
func NewGroupResponse(g *models.StudyGroup) GroupResponse {
	return GroupResponse{
		ID:                g.ID,
		Name:              g.Name,
		Description:       g.Description,
		CreatedBy:         g.CreatedBy,
		CreatedByUsername: g.CreatedByUsername,
		Subjects:          NewSubjectResponses(g.Subjects),
		MemberCount:       g.MemberCount,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}

// NewGroupDetailResponse maps a group with members and resources loaded
func NewGroupDetailResponse(g *models.StudyGroup) GroupDetailResponse {
	members := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, m.Username)
	}
	resp := GroupDetailResponse{
		GroupResponse: NewGroupResponse(g),
		Members:       members,
		Resources:     NewResourceResponses(g.Resources),
	}
	resp.MemberCount = int64(len(members))
	return resp
}

// NewGroupSummaries maps groups to their short form
func NewGroupSummaries(groups []*models.StudyGroup) []GroupSummary {
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSummary{ID: g.ID, Name: g.Name})
	}
	return out
}
