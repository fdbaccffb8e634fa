package dto

import (
	"time"

	"github.com/yigit/studyhub/internal/app/models"
)

// CreateResourceRequest represents a link posted into a group
type CreateResourceRequest struct {
	GroupID int64  `json:"group" binding:"required,gt=0"`
	Title   string `json:"title" binding:"required,max=255"`
	Link    string `json:"link" binding:"required,max=500"`
}

// ResourceFilterRequest holds list query parameters
type ResourceFilterRequest struct {
	GroupID *int64 `form:"group" binding:"omitempty,gt=0"`
}

// ResourceResponse represents a posted link
type ResourceResponse struct {
	ID               int64     `json:"id"`
	GroupID          int64     `json:"group"`
	UploadedBy       *int64    `json:"uploadedBy"`
	UploaderUsername *string   `json:"uploadedByUsername"`
	Title            string    `json:"title"`
	Link             string    `json:"link"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewResourceResponse maps a resource model
func NewResourceResponse(r *models.Resource) ResourceResponse {
	return ResourceResponse{
		ID:               r.ID,
		GroupID:          r.GroupID,
		UploadedBy:       r.UploadedBy,
		UploaderUsername: r.UploaderUsername,
		Title:            r.Title,
		Link:             r.Link,
		CreatedAt:        r.CreatedAt,
	}
}

// NewResourceResponses maps a slice, never returning nil
func NewResourceResponses(resources []*models.Resource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, NewResourceResponse(r))
	}
	return out
}
