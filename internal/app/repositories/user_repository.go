package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/db"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// UserRepository handles users, their profiles and profile interests
type UserRepository struct {
	db db.Beginner
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.Beginner) *UserRepository {
	return &UserRepository{db: conn}
}

var userColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithProfile inserts the user and its empty profile in one transaction.
// user.ID and timestamps are filled in on success.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := psql.Insert("users").
			Columns("username", "email", "password_hash").
			Values(user.Username, user.Email, user.Password).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return fmt.Errorf("error inserting user: %w", err)
		}

		query, args, err = psql.Insert("profiles").Columns("user_id").Values(user.ID).ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("error inserting profile: %w", err)
		}
		return nil
	})
}

// GetByUsername finds a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(squirrel.Eq{"username": username}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "user %q not found", username)
	}
	return user, nil
}

// GetByID finds a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "user %d not found", id)
	}
	return user, nil
}

// Exists reports whether a user row with the given id is present
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

// Delete removes the user. Profile, owned groups and memberships cascade;
// resources keep existing with a null uploader.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d not found", id))
	}
	return nil
}

// GetProfile loads the profile of userID with its subjects
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	query, args, err := psql.Select("p.user_id", "u.username").
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(squirrel.Eq{"p.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var profile models.Profile
	if err := r.db.QueryRow(ctx, query, args...).Scan(&profile.UserID, &profile.Username); err != nil {
		return nil, notFound(err, "profile for user %d not found", userID)
	}

	subjects, err := subjectsByOwner(ctx, r.db, "profile_subjects", "user_id", []int64{userID})
	if err != nil {
		return nil, err
	}
	profile.Subjects = subjects[userID]
	if profile.Subjects == nil {
		profile.Subjects = []*models.Subject{}
	}

	return &profile, nil
}

// ReplaceProfileSubjects sets the interest set of userID. A missing profile
// row is created first so every user keeps exactly one profile.
func (r *UserRepository) ReplaceProfileSubjects(ctx context.Context, userID int64, subjectIDs []int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := psql.Insert("profiles").Columns("user_id").Values(userID).
			Suffix("ON CONFLICT (user_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("error ensuring profile: %w", err)
		}

		return replaceSubjectLinks(ctx, tx, "profile_subjects", "user_id", userID, subjectIDs)
	})
}

// FindMatchingProfiles returns the profiles, other than userID's, that share
// at least one subject with it. Each profile lists all of its subjects.
func (r *UserRepository) FindMatchingProfiles(ctx context.Context, userID int64) ([]*models.Profile, error) {
	query := `
		SELECT u.id, u.username
		FROM users u
		WHERE u.id IN (
			SELECT other.user_id
			FROM profile_subjects mine
			JOIN profile_subjects other ON other.subject_id = mine.subject_id
			WHERE mine.user_id = $1 AND other.user_id <> $1
		)
		ORDER BY u.username, u.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	var ids []int64
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.Username); err != nil {
			return nil, fmt.Errorf("error scanning profile: %w", err)
		}
		profiles = append(profiles, &p)
		ids = append(ids, p.UserID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	rows.Close()

	subjects, err := subjectsByOwner(ctx, r.db, "profile_subjects", "user_id", ids)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		p.Subjects = subjects[p.UserID]
	}

	return profiles, nil
}
