package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// ExamRepository interface for exam documents
type ExamRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)

	// ListOccupyingBetween returns scheduled or active exams whose slot intersects [from, to).
	ListOccupyingBetween(ctx context.Context, from, to time.Time) ([]*models.Exam, error)
}
