package app

import (
	"context"
	"errors"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

const maxErrorsListed = 100

func (s *Service) RegisterStudent(ctx context.Context, req models.StudentCreate) (*models.StudentView, error) {
	if err := req.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalid, Detail: err.Error(), Err: err}
	}

	code, err := models.GenerateUploadCode(s.Config.Policy.UploadCodeLength)
	if err != nil {
		return nil, storageFailure("Failed to create student", err)
	}

	student := &models.Student{
		Nickname:   req.Nickname,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		UploadCode: code,
	}

	if err := s.Store.CreateStudent(ctx, student); err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			return nil, &Error{Kind: KindConflict, Detail: conflict.Err.Error(), Err: err}
		}
		logger.Error.Printf("Failed to create student %s: %v", req.Nickname, err)
		return nil, storageFailure("Failed to create student", err)
	}

	logger.Info.Printf("Student %s registered", student.Nickname)

	return &models.StudentView{Student: *student}, nil
}

func (s *Service) StudentByNickname(ctx context.Context, nickname string) (*models.StudentView, error) {
	student, err := s.Store.StudentByNickname(ctx, nickname)
	if err != nil {
		return nil, storageFailure("Failed to fetch student", err)
	}
	if student == nil {
		return nil, newError(KindNotFound, "Student not found")
	}

	last, err := s.Store.NthLatestSubmission(ctx, student.ID, 0)
	if err != nil {
		return nil, storageFailure("Failed to fetch student", err)
	}

	return &models.StudentView{
		Student:        *student,
		HasSubmission:  last != nil,
		LastSubmission: last,
	}, nil
}

// Summary lists every student in creation order with its current
// submission. TotalSubmissions counts students that submitted at least once.
func (s *Service) Summary(ctx context.Context) (*models.StudentsSummary, error) {
	students, err := s.Store.ListStudents(ctx)
	if err != nil {
		return nil, storageFailure("Failed to fetch students", err)
	}

	withSubmissions, err := s.Store.CountStudentsWithSubmissions(ctx)
	if err != nil {
		return nil, storageFailure("Failed to fetch students", err)
	}

	latest, err := s.Store.LatestSubmissions(ctx)
	if err != nil {
		return nil, storageFailure("Failed to fetch students", err)
	}

	byStudent := make(map[int64]*models.Submission, len(latest))
	for i := range latest {
		byStudent[latest[i].StudentID] = &latest[i]
	}

	summary := &models.StudentsSummary{
		Totals: models.SummaryTotals{
			TotalStudents:    len(students),
			TotalSubmissions: withSubmissions,
		},
		Students: make([]models.StudentSummary, 0, len(students)),
	}

	for _, st := range students {
		last := byStudent[st.ID]
		summary.Students = append(summary.Students, models.StudentSummary{
			Nickname:       st.Nickname,
			FirstName:      st.FirstName,
			LastName:       st.LastName,
			HasSubmission:  last != nil,
			LastSubmission: last.Summary(),
		})
	}

	return summary, nil
}

// LastErrors returns recorded failures newest first; count is clamped to
// [1, 100].
func (s *Service) LastErrors(ctx context.Context, count int) ([]models.ErrorRecord, error) {
	if count < 1 {
		count = 1
	}
	if count > maxErrorsListed {
		count = maxErrorsListed
	}

	records, err := s.Store.LastErrors(ctx, count)
	if err != nil {
		return nil, storageFailure("Failed to fetch errors", err)
	}
	return records, nil
}
