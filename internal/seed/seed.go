package seed

import (
	"context"

	"github.com/rs/zerolog"
)

// DefaultSubjects is the catalog created on first start
var DefaultSubjects = []string{
	"Mathematics",
	"Computer Science",
	"Physics",
	"Chemistry",
	"Biology",
	"History",
	"Literature",
	"Economics",
}

// SubjectSeeder inserts subjects that do not exist yet
type SubjectSeeder interface {
	EnsureExist(ctx context.Context, names []string) (int64, error)
}

// CreateDefaultData makes sure the default subjects exist. Existing rows are
// left alone, so running it on every start is safe.
func CreateDefaultData(ctx context.Context, subjects SubjectSeeder, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default subjects...")

	inserted, err := subjects.EnsureExist(ctx, DefaultSubjects)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default subjects")
		return err
	}

	lgr.Info().Int64("inserted", inserted).Int("total", len(DefaultSubjects)).Msg("Default subjects ready")
	return nil
}
