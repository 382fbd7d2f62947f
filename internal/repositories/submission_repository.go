package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// SubmissionRepository interface for student submissions
type SubmissionRepository interface {
	// Create fails with ErrDuplicate when the student already holds a submission for the exam.
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error

	GetByExamAndStudent(ctx context.Context, examID uint, studentID string) (*models.Submission, error)
	ListByExam(ctx context.Context, examID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)

	// ListExpired returns in-progress submissions whose deadline is before cutoff.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]*models.Submission, error)
}
