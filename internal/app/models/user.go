package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password_hash"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the one-to-one extension of a user carrying subject interests
type Profile struct {
	UserID   int64      `json:"userId" db:"user_id"`
	Username string     `json:"username"`
	Subjects []*Subject `json:"subjects"`
}

// HasSubject reports whether the profile declares the subject
func (p *Profile) HasSubject(subjectID int64) bool {
	for _, s := range p.Subjects {
		if s.ID == subjectID {
			return true
		}
	}
	return false
}
