// Package models holds the persisted entities of the study group domain.
package models

import "time"

// Subject is a catalog entry used to tag profiles and groups
type Subject struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Resource is a link shared inside a group
type Resource struct {
	ID         int64     `json:"id" db:"id"`
	GroupID    int64     `json:"groupId" db:"group_id"`
	UploadedBy *int64    `json:"uploadedBy" db:"uploaded_by"` // nil once the uploader account is deleted
	Title      string    `json:"title" db:"title"`
	Link       string    `json:"link" db:"link"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	UploaderUsername *string `json:"uploaderUsername,omitempty"`
}
