package dto

import "github.com/yigit/studyhub/internal/app/models"

// SetInterestsRequest replaces the caller's subject interests
type SetInterestsRequest struct {
	SubjectIDs []int64 `json:"subjects" binding:"omitempty,dive,gt=0"`
}

// ProfileResponse is the caller's own profile page
type ProfileResponse struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Subjects     []SubjectResponse `json:"subjects"`
	OwnedGroups  []GroupSummary    `json:"ownedGroups"`
	JoinedGroups []GroupSummary    `json:"joinedGroups"`
}

// MatchResponse is another user sharing at least one subject
type MatchResponse struct {
	Username string            `json:"username"`
	Subjects []SubjectResponse `json:"subjects"`
}

// NewMatchResponses maps matching profiles
func NewMatchResponses(profiles []*models.Profile) []MatchResponse {
	out := make([]MatchResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, MatchResponse{Username: p.Username, Subjects: NewSubjectResponses(p.Subjects)})
	}
	return out
}
