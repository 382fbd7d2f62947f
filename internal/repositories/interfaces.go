package repositories

import (
	"errors"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	Status    *models.ExamStatus `json:"status" validate:"omitempty,exam_status"`
	TeacherID *string            `json:"teacher_id"`
	SubjectID *uint              `json:"subject_id"`
	ClassID   *uint              `json:"class_id"`
	// ExcludeDrafts hides exams that were never scheduled.
	ExcludeDrafts bool       `json:"exclude_drafts"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
	SortBy        string     `json:"sort_by"`    // "created_at", "title", "start_time"
	SortOrder     string     `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	Status    *models.SubmissionStatus `json:"status"`
	StudentID *string                  `json:"student_id"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "started_at", "submitted_at", "score"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY MANAGER =====

// Repository groups the stores used by the lifecycle services.
type Repository interface {
	Exam() ExamRepository
	Submission() SubmissionRepository
}

// ===== ERRORS =====

var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
