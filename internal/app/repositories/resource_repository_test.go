package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

func TestResourceRepository_Create(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("INSERT INTO resources").
		WithArgs(int64(7), pgxmock.AnyArg(), "Notes", "https://example.com/notes").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), testTime))

	repo := repositories.NewResourceRepository(mock)
	uploader := int64(2)
	res := &models.Resource{GroupID: 7, UploadedBy: &uploader, Title: "Notes", Link: "https://example.com/notes"}

	err := repo.Create(context.Background(), res)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, testTime, res.CreatedAt, "created_at comes from the database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepository_Create_GroupGone(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("INSERT INTO resources").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: repositories.ConstraintResourceGroupFK})

	repo := repositories.NewResourceRepository(mock)
	err := repo.Create(context.Background(), &models.Resource{GroupID: 7, Title: "x", Link: "https://x.io"})

	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepository_List_NewestFirst(t *testing.T) {
	mock := newMock(t)
	uploader := int64(2)
	name := "bob"

	mock.ExpectQuery("FROM resources r LEFT JOIN users u(.+)WHERE r.group_id(.+)ORDER BY r.created_at DESC, r.id DESC").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "group_id", "uploaded_by", "username", "title", "link", "created_at"}).
			AddRow(int64(2), int64(7), &uploader, &name, "Second", "https://b.io", testTime.Add(time.Minute)).
			AddRow(int64(1), int64(7), nil, nil, "First", "https://a.io", testTime))

	repo := repositories.NewResourceRepository(mock)
	group := int64(7)
	resources, err := repo.List(context.Background(), &group)

	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "Second", resources[0].Title)
	require.NotNil(t, resources[0].UploaderUsername)
	assert.Equal(t, "bob", *resources[0].UploaderUsername)
	assert.Nil(t, resources[1].UploadedBy, "uploader of a deleted account is null")
	assert.NoError(t, mock.ExpectationsWereMet())
}
