package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	assert.True(t, IsDuplicateConstraintError(err, "users_username_key"))
	assert.False(t, IsDuplicateConstraintError(err, "subjects_name_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), "users_username_key"))
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "group_subjects_subject_id_fkey"}

	assert.True(t, IsForeignKeyViolation(err, ""))
	assert.True(t, IsForeignKeyViolation(err, "group_subjects_subject_id_fkey"))
	assert.False(t, IsForeignKeyViolation(err, "resources_group_id_fkey"))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}, ""))
}
