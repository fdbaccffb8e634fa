// Package services implements the study group use cases on top of the
// repositories. Each service is exposed as an interface; the stores it needs
// are declared here so tests can substitute in-memory implementations.
package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studyhub/internal/app/models"
)

// SubjectStore is the catalog persistence used by the services
type SubjectStore interface {
	List(ctx context.Context) ([]*models.Subject, error)
	EnsureExist(ctx context.Context, names []string) (int64, error)
}

// UserStore is the identity and profile persistence used by the services
type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	ReplaceProfileSubjects(ctx context.Context, userID int64, subjectIDs []int64) error
	FindMatchingProfiles(ctx context.Context, userID int64) ([]*models.Profile, error)
}

// GroupStore is the group and membership persistence used by the services
type GroupStore interface {
	List(ctx context.Context, filter models.GroupFilter) ([]*models.StudyGroup, error)
	ListOwnedBy(ctx context.Context, userID int64) ([]*models.StudyGroup, error)
	ListJoinedBy(ctx context.Context, userID int64) ([]*models.StudyGroup, error)
	GetByID(ctx context.Context, id int64) (*models.StudyGroup, error)
	ListMembers(ctx context.Context, groupID int64) ([]*models.User, error)
	CreateWithOwner(ctx context.Context, group *models.StudyGroup, subjectIDs []int64) error
	Update(ctx context.Context, group *models.StudyGroup, subjectIDs []int64) error
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// ResourceStore is the resource persistence used by the services
type ResourceStore interface {
	Create(ctx context.Context, resource *models.Resource) error
	List(ctx context.Context, groupID *int64) ([]*models.Resource, error)
}

var validate = validator.New()

// uniqueIDs drops duplicates and keeps first-seen order. The result is
// never nil so an empty request still means "clear".
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// validLink accepts absolute http and https URLs up to 500 characters
func validLink(link string) bool {
	if validate.Var(link, "required,url,max=500") != nil {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
