package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
)

// SubjectRepository handles database operations for the subject catalog
type SubjectRepository struct {
	db db.DBTX
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(conn db.DBTX) *SubjectRepository {
	return &SubjectRepository{db: conn}
}

// List returns every subject ordered by name
func (r *SubjectRepository) List(ctx context.Context) ([]*models.Subject, error) {
	query, args, err := psql.Select("id", "name").
		From("subjects").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		subjects = append(subjects, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}

	return subjects, nil
}

// EnsureExist inserts the named subjects that are not yet in the catalog and
// returns how many were added.
func (r *SubjectRepository) EnsureExist(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}

	builder := psql.Insert("subjects").Columns("name")
	for _, name := range names {
		builder = builder.Values(name)
	}
	query, args, err := builder.Suffix("ON CONFLICT (name) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return tag.RowsAffected(), nil
}
