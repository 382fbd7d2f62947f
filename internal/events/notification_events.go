package events

import (
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Exam events
	EventExamCreated   EventType = "exam.created"
	EventExamUpdated   EventType = "exam.updated"
	EventExamScheduled EventType = "exam.scheduled"
	EventExamActivated EventType = "exam.activated"
	EventExamCompleted EventType = "exam.completed"
	EventExamDeleted   EventType = "exam.deleted"

	// Submission events
	EventSubmissionStarted       EventType = "submission.started"
	EventSubmissionReceived      EventType = "submission.received"
	EventSubmissionAutoSubmitted EventType = "submission.auto_submitted"
	EventSubmissionGraded        EventType = "submission.graded"

	// Integrity events
	EventViolationLogged EventType = "violation.logged"
)

const (
	eventSource  = "exam-service"
	eventVersion = "1.0"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Exam notification event payloads

type ExamEvent struct {
	ExamID          uint              `json:"exam_id"`
	Title           string            `json:"title"`
	TeacherID       string            `json:"teacher_id"`
	ClassIDs        []uint            `json:"class_ids"`
	Status          models.ExamStatus `json:"status"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	DurationMinutes int               `json:"duration_minutes,omitempty"`
	ActorID         string            `json:"actor_id"`
}

// Submission notification event payloads

type SubmissionEvent struct {
	SubmissionID uint                    `json:"submission_id"`
	ExamID       uint                    `json:"exam_id"`
	ExamTitle    string                  `json:"exam_title"`
	TeacherID    string                  `json:"teacher_id"`
	StudentID    string                  `json:"student_id"`
	Status       models.SubmissionStatus `json:"status"`
	Score        float64                 `json:"score"`
	TotalPoints  float64                 `json:"total_points"`
	Percentage   int                     `json:"percentage"`
	OccurredAt   time.Time               `json:"occurred_at"`
	GradedBy     *string                 `json:"graded_by,omitempty"`
}

type ViolationEvent struct {
	SubmissionID     uint                 `json:"submission_id"`
	ExamID           uint                 `json:"exam_id"`
	TeacherID        string               `json:"teacher_id"`
	StudentID        string               `json:"student_id"`
	Type             models.ViolationType `json:"type"`
	Details          string               `json:"details"`
	Violations       int                  `json:"violations"`
	ShouldAutoSubmit bool                 `json:"should_auto_submit"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewExamEvent(eventType EventType, exam *models.Exam, actorID string) *NotificationEvent {
	return newEvent(eventType, ExamEvent{
		ExamID:          exam.ID,
		Title:           exam.Title,
		TeacherID:       exam.TeacherID,
		ClassIDs:        exam.ClassIDs,
		Status:          exam.Status,
		StartTime:       exam.StartTime,
		DurationMinutes: exam.DurationMinutes,
		ActorID:         actorID,
	})
}

func NewSubmissionEvent(eventType EventType, exam *models.Exam, submission *models.Submission, at time.Time) *NotificationEvent {
	return newEvent(eventType, SubmissionEvent{
		SubmissionID: submission.ID,
		ExamID:       exam.ID,
		ExamTitle:    exam.Title,
		TeacherID:    exam.TeacherID,
		StudentID:    submission.StudentID,
		Status:       submission.Status,
		Score:        submission.Score,
		TotalPoints:  submission.TotalPoints,
		Percentage:   submission.Percentage,
		OccurredAt:   at,
		GradedBy:     submission.GradedBy,
	})
}

func NewViolationEvent(exam *models.Exam, submission *models.Submission, entry models.ViolationEntry, shouldAutoSubmit bool) *NotificationEvent {
	return newEvent(EventViolationLogged, ViolationEvent{
		SubmissionID:     submission.ID,
		ExamID:           exam.ID,
		TeacherID:        exam.TeacherID,
		StudentID:        submission.StudentID,
		Type:             entry.Type,
		Details:          entry.Details,
		Violations:       submission.Violations,
		ShouldAutoSubmit: shouldAutoSubmit,
	})
}
