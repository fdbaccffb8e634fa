package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSeeder struct {
	names []string
	err   error
}

func (s *recordingSeeder) EnsureExist(_ context.Context, names []string) (int64, error) {
	s.names = names
	return int64(len(names)), s.err
}

func TestCreateDefaultData(t *testing.T) {
	seeder := &recordingSeeder{}

	require.NoError(t, CreateDefaultData(context.Background(), seeder, zerolog.Nop()))
	assert.Equal(t, DefaultSubjects, seeder.names)
	assert.Contains(t, seeder.names, "Computer Science")
}

func TestCreateDefaultData_PropagatesError(t *testing.T) {
	seeder := &recordingSeeder{err: errors.New("db down")}

	err := CreateDefaultData(context.Background(), seeder, zerolog.Nop())
	assert.EqualError(t, err, "db down")
}
