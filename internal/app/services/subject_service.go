package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models/dto"
)

// SubjectService exposes the subject catalog
type SubjectService interface {
	ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error)
}

type subjectServiceImpl struct {
	subjects SubjectStore
	logger   zerolog.Logger
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(subjects SubjectStore, logger zerolog.Logger) SubjectService {
	return &subjectServiceImpl{subjects: subjects, logger: logger}
}

// ListSubjects returns every subject ordered by name
func (s *subjectServiceImpl) ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list subjects")
		return nil, err
	}
	return dto.NewSubjectResponses(subjects), nil
}
