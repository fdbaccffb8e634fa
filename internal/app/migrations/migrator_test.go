package migrations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestMigrateFromDirectory_AppliesPendingInOrder(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"002_members.sql": "CREATE TABLE group_members (id INT);",
		"001_init.sql":    "CREATE TABLE subjects (id INT);",
		"README.md":       "ignored",
	})

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	// 001 is already applied
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("002").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE group_members").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	m := NewMigrator(mock, zerolog.Nop())
	err = m.MigrateFromDirectory(context.Background(), dir)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFromFile_RollsBackOnFailure(t *testing.T) {
	dir := writeMigrations(t, map[string]string{"003_bad.sql": "CREATE TABLE nope"})

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").WithArgs("003").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE nope").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	m := NewMigrator(mock, zerolog.Nop())
	err = m.MigrateFromFile(context.Background(), filepath.Join(dir, "003_bad.sql"))

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFromDirectory_MissingDir(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	m := NewMigrator(mock, zerolog.Nop())
	assert.Error(t, m.MigrateFromDirectory(context.Background(), filepath.Join(t.TempDir(), "absent")))
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("migrations/001_init.sql"))
	assert.Equal(t, "010", versionOf("010_add_index_on_x.sql"))
}
