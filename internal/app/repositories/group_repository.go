package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
)

// GroupRepository handles study groups, their subject tags and memberships
type GroupRepository struct {
	db db.Beginner
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(conn db.Beginner) *GroupRepository {
	return &GroupRepository{db: conn}
}

func groupSelect() squirrel.SelectBuilder {
	return psql.Select(
		"g.id", "g.name", "g.description", "g.created_by", "u.username",
		"g.created_at", "g.updated_at",
		"(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count",
	).
		From("study_groups g").
		Join("users u ON u.id = g.created_by")
}

func scanGroup(row pgx.Row) (*models.StudyGroup, error) {
	var g models.StudyGroup
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedByUsername,
		&g.CreatedAt, &g.UpdatedAt, &g.MemberCount)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns groups ordered by name, optionally restricted to one subject.
// Subjects are loaded for every returned group.
func (r *GroupRepository) List(ctx context.Context, filter models.GroupFilter) ([]*models.StudyGroup, error) {
	builder := groupSelect().OrderBy("g.name", "g.id")
	if filter.SubjectID != nil {
		builder = builder.Where("EXISTS (SELECT 1 FROM group_subjects gs WHERE gs.group_id = g.id AND gs.subject_id = ?)", *filter.SubjectID)
	}

	groups, err := r.queryGroups(ctx, builder)
	if err != nil {
		return nil, err
	}
	if err := r.attachSubjects(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListOwnedBy returns the groups created by userID
func (r *GroupRepository) ListOwnedBy(ctx context.Context, userID int64) ([]*models.StudyGroup, error) {
	return r.queryGroups(ctx, groupSelect().Where(squirrel.Eq{"g.created_by": userID}).OrderBy("g.name", "g.id"))
}

// ListJoinedBy returns the groups userID is a member of, including owned ones
func (r *GroupRepository) ListJoinedBy(ctx context.Context, userID int64) ([]*models.StudyGroup, error) {
	builder := groupSelect().
		Where("EXISTS (SELECT 1 FROM group_members jm WHERE jm.group_id = g.id AND jm.user_id = ?)", userID).
		OrderBy("g.name", "g.id")
	return r.queryGroups(ctx, builder)
}

func (r *GroupRepository) queryGroups(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.StudyGroup, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	groups := []*models.StudyGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) attachSubjects(ctx context.Context, groups []*models.StudyGroup) error {
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}

	subjects, err := subjectsByOwner(ctx, r.db, "group_subjects", "group_id", ids)
	if err != nil {
		return err
	}
	for _, g := range groups {
		g.Subjects = subjects[g.ID]
		if g.Subjects == nil {
			g.Subjects = []*models.Subject{}
		}
	}
	return nil
}

// GetByID loads a group row with its subjects
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.StudyGroup, error) {
	query, args, err := groupSelect().Where(squirrel.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	group, err := scanGroup(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "group %d not found", id)
	}

	if err := r.attachSubjects(ctx, []*models.StudyGroup{group}); err != nil {
		return nil, err
	}
	return group, nil
}

// ListMembers returns the members of a group ordered by username
func (r *GroupRepository) ListMembers(ctx context.Context, groupID int64) ([]*models.User, error) {
	query, args, err := psql.Select("u.id", "u.username").
		From("group_members m").
		Join("users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.group_id": groupID}).
		OrderBy("u.username", "u.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	members := []*models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		members = append(members, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// CreateWithOwner inserts the group, its subject tags and the owner's
// membership in one transaction. group.ID and timestamps are filled in.
func (r *GroupRepository) CreateWithOwner(ctx context.Context, group *models.StudyGroup, subjectIDs []int64) error {
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := psql.Insert("study_groups").
			Columns("name", "description", "created_by").
			Values(group.Name, group.Description, group.CreatedBy).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return fmt.Errorf("error inserting group: %w", err)
		}

		if err := insertSubjectLinks(ctx, tx, "group_subjects", "group_id", group.ID, subjectIDs); err != nil {
			return err
		}

		query, args, err = psql.Insert("group_members").
			Columns("group_id", "user_id").
			Values(group.ID, group.CreatedBy).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("error inserting owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		group.ID = 0
		return err
	}
	group.MemberCount = 1
	return nil
}

// Update writes name and description and, when subjectIDs is non-nil,
// replaces the subject tags, all in one transaction.
func (r *GroupRepository) Update(ctx context.Context, group *models.StudyGroup, subjectIDs []int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := psql.Update("study_groups").
			Set("name", group.Name).
			Set("description", group.Description).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": group.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&group.UpdatedAt); err != nil {
			return notFound(err, "group %d not found", group.ID)
		}

		if subjectIDs == nil {
			return nil
		}
		return replaceSubjectLinks(ctx, tx, "group_subjects", "group_id", group.ID, subjectIDs)
	})
}

// Delete removes a group; tags, memberships and resources cascade
func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("study_groups").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("group %d not found", id))
	}
	return nil
}

// AddMember inserts the membership and reports whether a row was added.
// An existing membership is left untouched and reported as false.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int64) (bool, error) {
	query, args, err := psql.Insert("group_members").
		Columns("group_id", "user_id").
		Values(groupID, userID).
		Suffix("ON CONFLICT (group_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, ConstraintGroupMemberGroupFK) {
			return false, apperrors.NewResourceNotFoundError(fmt.Sprintf("group %d not found", groupID))
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveMember deletes the membership and reports whether a row was removed
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID int64) (bool, error) {
	query, args, err := psql.Delete("group_members").
		Where(squirrel.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
