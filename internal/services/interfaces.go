package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/scheduling"
)

// ===== SERVICE INTERFACES =====

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, actor models.Actor) (*models.Exam, error)
	Get(ctx context.Context, id uint, actor models.Actor) (*models.Exam, error)
	List(ctx context.Context, filters repositories.ExamFilters, actor models.Actor) ([]*models.Exam, int64, error)
	Update(ctx context.Context, id uint, req *UpdateExamRequest, actor models.Actor) (*models.Exam, error)
	Delete(ctx context.Context, id uint, actor models.Actor) error

	// Lifecycle
	Schedule(ctx context.Context, id uint, req *ScheduleExamRequest, actor models.Actor) (*models.Exam, error)
	Activate(ctx context.Context, id uint, actor models.Actor) (*models.Exam, error)
	Complete(ctx context.Context, id uint, actor models.Actor) (*models.Exam, error)

	// CheckConflicts runs conflict detection for a proposed slot without changing anything.
	CheckConflicts(ctx context.Context, req *ConflictCheckRequest, actor models.Actor) ([]scheduling.Conflict, error)
}

type SubmissionService interface {
	Start(ctx context.Context, examID uint, actor models.Actor) (*StartExamResponse, error)
	Get(ctx context.Context, id uint, actor models.Actor) (*SubmissionResponse, error)
	ListByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters, actor models.Actor) ([]*models.Submission, int64, error)

	SaveAnswers(ctx context.Context, id uint, req *SaveAnswersRequest, actor models.Actor) (*SubmissionResponse, error)
	Submit(ctx context.Context, id uint, req *SubmitRequest, actor models.Actor) (*SubmissionResponse, error)
	AutoSubmit(ctx context.Context, id uint, req *AutoSubmitRequest, actor models.Actor) (*SubmissionResponse, error)
	LogViolation(ctx context.Context, id uint, req *LogViolationRequest, actor models.Actor) (*ViolationResponse, error)
	GradeOpenQuestions(ctx context.Context, id uint, req *GradeRequest, actor models.Actor) (*SubmissionResponse, error)

	// SweepExpired auto-submits in-progress submissions past their deadline and grace.
	SweepExpired(ctx context.Context) (int, error)
}

type ServiceManager interface {
	Exam() ExamService
	Submission() SubmissionService
	// Close waits for pending notifications and closes the publisher.
	Close() error
}

// Clock returns the current time. Services take it as an option so tests can move time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// ===== EXAM REQUESTS =====

type CreateExamRequest struct {
	Title           string            `json:"title" validate:"required,min=1,max=200"`
	Description     *string           `json:"description" validate:"omitempty,max=2000"`
	SubjectID       uint              `json:"subject_id" validate:"required"`
	ClassIDs        []uint            `json:"class_ids" validate:"required,min=1,dive,gt=0"`
	Type            models.ExamType   `json:"type" validate:"required,exam_type"`
	DurationMinutes *int              `json:"duration_minutes" validate:"omitempty,min=5"`
	Questions       []models.Question `json:"questions"`
}

// UpdateExamRequest is a patch; nil fields are left unchanged.
type UpdateExamRequest struct {
	Title           *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string            `json:"description" validate:"omitempty,max=2000"`
	SubjectID       *uint              `json:"subject_id" validate:"omitempty,gt=0"`
	ClassIDs        *[]uint            `json:"class_ids" validate:"omitempty,min=1,dive,gt=0"`
	Type            *models.ExamType   `json:"type" validate:"omitempty,exam_type"`
	StartTime       *time.Time         `json:"start_time"`
	DurationMinutes *int               `json:"duration_minutes"`
	Questions       *[]models.Question `json:"questions"`
}

type ScheduleExamRequest struct {
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes"`
}

type ConflictCheckRequest struct {
	ExamID          *uint     `json:"exam_id"`
	ClassIDs        []uint    `json:"class_ids" validate:"required,min=1,dive,gt=0"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=5"`
}

// ===== SUBMISSION REQUESTS =====

type SaveAnswersRequest struct {
	Answers []models.AnswerInput `json:"answers" validate:"dive"`
}

type SubmitRequest struct {
	Answers []models.AnswerInput `json:"answers" validate:"dive"`
}

type AutoSubmitReason struct {
	Type    models.ViolationType `json:"type" validate:"omitempty,violation_type"`
	Details string               `json:"details" validate:"max=1000"`
}

type AutoSubmitRequest struct {
	Answers []models.AnswerInput `json:"answers" validate:"dive"`
	Reason  *AutoSubmitReason    `json:"reason"`
}

type LogViolationRequest struct {
	Type    models.ViolationType `json:"type" validate:"required,violation_type"`
	Details string               `json:"details" validate:"max=1000"`
}

type GradeInput struct {
	QuestionID string  `json:"question_id" validate:"required"`
	Score      float64 `json:"score"`
	Feedback   *string `json:"feedback" validate:"omitempty,max=2000"`
}

type GradeRequest struct {
	Grades []GradeInput `json:"grades" validate:"required,min=1,dive"`
}

// ===== RESPONSES =====

type SubmissionResponse struct {
	*models.Submission
	TimeRemainingMs int64 `json:"time_remaining_ms"`
}

type StartExamResponse struct {
	Submission      *models.Submission `json:"submission"`
	Exam            *models.Exam       `json:"exam"`
	TimeRemainingMs int64              `json:"time_remaining_ms"`
	// Created is false when an in-progress submission was resumed.
	Created bool `json:"created"`
}

type ViolationResponse struct {
	Violations       int                `json:"violations"`
	ShouldAutoSubmit bool               `json:"should_auto_submit"`
	Submission       *models.Submission `json:"submission"`
}
