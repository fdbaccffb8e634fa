package models

import "time"

// StudyGroup is a named collection of members around one or more subjects
type StudyGroup struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   int64     `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	CreatedByUsername string      `json:"createdByUsername,omitempty"`
	MemberCount       int64       `json:"memberCount"`
	Subjects          []*Subject  `json:"subjects,omitempty"`
	Members           []*User     `json:"members,omitempty"`
	Resources         []*Resource `json:"resources,omitempty"`
}

// IsOwner reports whether userID created the group
func (g *StudyGroup) IsOwner(userID int64) bool {
	return g.CreatedBy == userID
}

// GroupFilter narrows group listings
type GroupFilter struct {
	SubjectID *int64
}
