package repositories

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// Constraint names from migrations/001_init.sql
const (
	ConstraintUsernameUnique     = "users_username_key"
	ConstraintGroupSubjectFK     = "group_subjects_subject_id_fkey"
	ConstraintProfileSubjectFK   = "profile_subjects_subject_id_fkey"
	ConstraintResourceGroupFK    = "resources_group_id_fkey"
	ConstraintGroupMemberGroupFK = "group_members_group_id_fkey"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	SubjectRepository  *SubjectRepository
	UserRepository     *UserRepository
	GroupRepository    *GroupRepository
	ResourceRepository *ResourceRepository
}

// NewRepositories initializes all repositories
func NewRepositories(conn db.Beginner) *Repositories {
	return &Repositories{
		SubjectRepository:  NewSubjectRepository(conn),
		UserRepository:     NewUserRepository(conn),
		GroupRepository:    NewGroupRepository(conn),
		ResourceRepository: NewResourceRepository(conn),
	}
}

// notFound converts pgx.ErrNoRows into a not found application error
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("error executing query: %w", err)
}
