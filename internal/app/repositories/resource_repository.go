package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
)

// ResourceRepository handles links posted to groups
type ResourceRepository struct {
	db db.DBTX
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(conn db.DBTX) *ResourceRepository {
	return &ResourceRepository{db: conn}
}

// Create inserts the resource; id and created_at come from the database
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	query, args, err := psql.Insert("resources").
		Columns("group_id", "uploaded_by", "title", "link").
		Values(resource.GroupID, resource.UploadedBy, resource.Title, resource.Link).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&resource.ID, &resource.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, ConstraintResourceGroupFK) {
			return apperrors.NewResourceNotFoundError(fmt.Sprintf("group %d not found", resource.GroupID))
		}
		return fmt.Errorf("error inserting resource: %w", err)
	}
	return nil
}

// List returns resources newest first, optionally for one group
func (r *ResourceRepository) List(ctx context.Context, groupID *int64) ([]*models.Resource, error) {
	builder := psql.Select("r.id", "r.group_id", "r.uploaded_by", "u.username", "r.title", "r.link", "r.created_at").
		From("resources r").
		LeftJoin("users u ON u.id = r.uploaded_by").
		OrderBy("r.created_at DESC", "r.id DESC")
	if groupID != nil {
		builder = builder.Where(squirrel.Eq{"r.group_id": *groupID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	resources := []*models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.GroupID, &res.UploadedBy, &res.UploaderUsername,
			&res.Title, &res.Link, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		resources = append(resources, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}
	return resources, nil
}
