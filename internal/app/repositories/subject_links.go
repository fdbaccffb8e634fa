package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
)

// replaceSubjectLinks rewrites the subject rows of one owner in a join table
// (profile_subjects or group_subjects). It must run inside a transaction.
func replaceSubjectLinks(ctx context.Context, tx db.DBTX, table, ownerColumn string, ownerID int64, subjectIDs []int64) error {
	query, args, err := psql.Delete(table).Where(squirrel.Eq{ownerColumn: ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error clearing %s: %w", table, err)
	}

	return insertSubjectLinks(ctx, tx, table, ownerColumn, ownerID, subjectIDs)
}

func insertSubjectLinks(ctx context.Context, tx db.DBTX, table, ownerColumn string, ownerID int64, subjectIDs []int64) error {
	if len(subjectIDs) == 0 {
		return nil
	}

	builder := psql.Insert(table).Columns(ownerColumn, "subject_id")
	for _, id := range subjectIDs {
		builder = builder.Values(ownerID, id)
	}
	query, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting into %s: %w", table, err)
	}
	return nil
}

// subjectsByOwner loads the subjects linked to each owner id, ordered by name
func subjectsByOwner(ctx context.Context, conn db.DBTX, table, ownerColumn string, ownerIDs []int64) (map[int64][]*models.Subject, error) {
	result := make(map[int64][]*models.Subject, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("l."+ownerColumn, "s.id", "s.name").
		From(table + " l").
		Join("subjects s ON s.id = l.subject_id").
		Where(squirrel.Eq{"l." + ownerColumn: ownerIDs}).
		OrderBy("s.name", "s.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID int64
		var s models.Subject
		if err := rows.Scan(&ownerID, &s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		result[ownerID] = append(result[ownerID], &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}

	return result, nil
}
