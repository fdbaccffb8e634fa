package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories. It
// reproduces the constraint errors and cascades the schema defines.
type memStore struct {
	mu sync.Mutex

	nextID    int64
	subjects  map[int64]*models.Subject
	users     map[int64]*models.User
	profiles  map[int64][]int64 // user id -> subject ids
	groups    map[int64]*models.StudyGroup
	groupSubs map[int64][]int64
	members   map[int64]map[int64]bool
	resources []*models.Resource

	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		subjects:  map[int64]*models.Subject{},
		users:     map[int64]*models.User{},
		profiles:  map[int64][]int64{},
		groups:    map[int64]*models.StudyGroup{},
		groupSubs: map[int64][]int64{},
		members:   map[int64]map[int64]bool{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func fkViolation(constraint string) error {
	return fmt.Errorf("error executing query: %w", &pgconn.PgError{Code: "23503", ConstraintName: constraint})
}

func (m *memStore) checkSubjects(ids []int64, constraint string) error {
	for _, id := range ids {
		if _, ok := m.subjects[id]; !ok {
			return fkViolation(constraint)
		}
	}
	return nil
}

func (m *memStore) subjectList(ids []int64) []*models.Subject {
	out := []*models.Subject{}
	for _, id := range ids {
		if s, ok := m.subjects[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- SubjectStore ---

func (m *memStore) List(_ context.Context) ([]*models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.subjects))
	for id := range m.subjects {
		ids = append(ids, id)
	}
	return m.subjectList(ids), nil
}

func (m *memStore) EnsureExist(_ context.Context, names []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, name := range names {
		found := false
		for _, s := range m.subjects {
			if s.Name == name {
				found = true
			}
		}
		if !found {
			id := m.id()
			m.subjects[id] = &models.Subject{ID: id, Name: name}
			inserted++
		}
	}
	return inserted, nil
}

func (m *memStore) subjectID(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subjects {
		if s.Name == name {
			return s.ID
		}
	}
	return 0
}

// users adapts memStore to UserStore
type memUsers struct{ *memStore }

func (u memUsers) CreateWithProfile(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Username == user.Username {
			return fmt.Errorf("error inserting user: %w",
				&pgconn.PgError{Code: "23505", ConstraintName: repositories.ConstraintUsernameUnique})
		}
	}
	user.ID = u.id()
	user.CreatedAt = u.tick()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	u.users[user.ID] = &stored
	u.profiles[user.ID] = []int64{}
	return nil
}

func (u memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Username == username {
			cp := *existing
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func (u memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	existing, ok := u.users[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("user not found")
	}
	cp := *existing
	return &cp, nil
}

func (u memUsers) Exists(_ context.Context, id int64) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.users[id]
	return ok, nil
}

func (u memUsers) Delete(_ context.Context, id int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[id]; !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	delete(u.users, id)
	delete(u.profiles, id)
	for gid, g := range u.groups {
		if g.CreatedBy == id {
			u.deleteGroupLocked(gid)
		}
	}
	for _, set := range u.members {
		delete(set, id)
	}
	for _, r := range u.resources {
		if r.UploadedBy != nil && *r.UploadedBy == id {
			r.UploadedBy = nil
		}
	}
	return nil
}

func (u memUsers) GetProfile(_ context.Context, userID int64) (*models.Profile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	ids, ok := u.profiles[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("profile not found")
	}
	return &models.Profile{UserID: userID, Username: u.users[userID].Username, Subjects: u.subjectList(ids)}, nil
}

func (u memUsers) ReplaceProfileSubjects(_ context.Context, userID int64, subjectIDs []int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.checkSubjects(subjectIDs, repositories.ConstraintProfileSubjectFK); err != nil {
		return err
	}
	u.profiles[userID] = append([]int64{}, subjectIDs...)
	return nil
}

func (u memUsers) FindMatchingProfiles(_ context.Context, userID int64) ([]*models.Profile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	mine := map[int64]bool{}
	for _, id := range u.profiles[userID] {
		mine[id] = true
	}
	out := []*models.Profile{}
	for other, ids := range u.profiles {
		if other == userID {
			continue
		}
		for _, id := range ids {
			if mine[id] {
				out = append(out, &models.Profile{UserID: other, Username: u.users[other].Username, Subjects: u.subjectList(ids)})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// groups adapts memStore to GroupStore
type memGroups struct{ *memStore }

func (g memGroups) snapshot(group *models.StudyGroup) *models.StudyGroup {
	cp := *group
	cp.Subjects = g.subjectList(g.groupSubs[group.ID])
	cp.MemberCount = int64(len(g.members[group.ID]))
	cp.CreatedByUsername = g.users[group.CreatedBy].Username
	return &cp
}

func (g memGroups) sorted(keep func(*models.StudyGroup) bool) []*models.StudyGroup {
	out := []*models.StudyGroup{}
	for _, group := range g.groups {
		if keep(group) {
			out = append(out, g.snapshot(group))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (g memGroups) List(_ context.Context, filter models.GroupFilter) ([]*models.StudyGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sorted(func(group *models.StudyGroup) bool {
		if filter.SubjectID == nil {
			return true
		}
		for _, id := range g.groupSubs[group.ID] {
			if id == *filter.SubjectID {
				return true
			}
		}
		return false
	}), nil
}

func (g memGroups) ListOwnedBy(_ context.Context, userID int64) ([]*models.StudyGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sorted(func(group *models.StudyGroup) bool { return group.CreatedBy == userID }), nil
}

func (g memGroups) ListJoinedBy(_ context.Context, userID int64) ([]*models.StudyGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sorted(func(group *models.StudyGroup) bool { return g.members[group.ID][userID] }), nil
}

func (g memGroups) GetByID(_ context.Context, id int64) (*models.StudyGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	group, ok := g.groups[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("group not found")
	}
	return g.snapshot(group), nil
}

func (g memGroups) ListMembers(_ context.Context, groupID int64) ([]*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []*models.User{}
	for id := range g.members[groupID] {
		out = append(out, &models.User{ID: id, Username: g.users[id].Username})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (g memGroups) CreateWithOwner(_ context.Context, group *models.StudyGroup, subjectIDs []int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkSubjects(subjectIDs, repositories.ConstraintGroupSubjectFK); err != nil {
		return err
	}
	group.ID = g.id()
	group.CreatedAt = g.tick()
	group.UpdatedAt = group.CreatedAt
	stored := *group
	g.groups[group.ID] = &stored
	g.groupSubs[group.ID] = append([]int64{}, subjectIDs...)
	g.members[group.ID] = map[int64]bool{group.CreatedBy: true}
	group.MemberCount = 1
	return nil
}

func (g memGroups) Update(_ context.Context, group *models.StudyGroup, subjectIDs []int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	stored, ok := g.groups[group.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("group not found")
	}
	if subjectIDs != nil {
		if err := g.checkSubjects(subjectIDs, repositories.ConstraintGroupSubjectFK); err != nil {
			return err
		}
		g.groupSubs[group.ID] = append([]int64{}, subjectIDs...)
	}
	stored.Name = group.Name
	stored.Description = group.Description
	stored.UpdatedAt = g.tick()
	group.UpdatedAt = stored.UpdatedAt
	return nil
}

func (g memGroups) Delete(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.groups[id]; !ok {
		return apperrors.NewResourceNotFoundError("group not found")
	}
	g.deleteGroupLocked(id)
	return nil
}

func (m *memStore) deleteGroupLocked(id int64) {
	delete(m.groups, id)
	delete(m.groupSubs, id)
	delete(m.members, id)
	kept := m.resources[:0]
	for _, r := range m.resources {
		if r.GroupID != id {
			kept = append(kept, r)
		}
	}
	m.resources = kept
}

func (g memGroups) AddMember(_ context.Context, groupID, userID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.members[groupID]
	if !ok {
		return false, apperrors.NewResourceNotFoundError("group not found")
	}
	if set[userID] {
		return false, nil
	}
	set[userID] = true
	return true, nil
}

func (g memGroups) RemoveMember(_ context.Context, groupID, userID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := g.members[groupID]
	if !set[userID] {
		return false, nil
	}
	delete(set, userID)
	return true, nil
}

// resources adapts memStore to ResourceStore
type memResources struct{ *memStore }

func (r memResources) Create(_ context.Context, resource *models.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[resource.GroupID]; !ok {
		return fkViolation(repositories.ConstraintResourceGroupFK)
	}
	resource.ID = r.id()
	resource.CreatedAt = r.tick()
	stored := *resource
	r.resources = append(r.resources, &stored)
	return nil
}

func (r memResources) List(_ context.Context, groupID *int64) ([]*models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Resource{}
	for i := len(r.resources) - 1; i >= 0; i-- {
		res := r.resources[i]
		if groupID != nil && res.GroupID != *groupID {
			continue
		}
		cp := *res
		if cp.UploadedBy != nil {
			if u, ok := r.users[*cp.UploadedBy]; ok {
				name := u.Username
				cp.UploaderUsername = &name
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}
