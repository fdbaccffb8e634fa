package repositories_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/app/repositories"
)

func TestSubjectRepository_List(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT id, name FROM subjects ORDER BY name, id").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "Biology").
			AddRow(int64(1), "Mathematics"))

	repo := repositories.NewSubjectRepository(mock)
	subjects, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Biology", subjects[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepository_EnsureExist(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("INSERT INTO subjects (.+) ON CONFLICT \\(name\\) DO NOTHING").
		WithArgs("Physics", "Chemistry").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := repositories.NewSubjectRepository(mock)
	added, err := repo.EnsureExist(context.Background(), []string{"Physics", "Chemistry"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepository_EnsureExist_Empty(t *testing.T) {
	mock := newMock(t)

	repo := repositories.NewSubjectRepository(mock)
	added, err := repo.EnsureExist(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}
