package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusScheduled ExamStatus = "scheduled"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusCompleted ExamStatus = "completed"
)

// rank orders statuses along the only legal direction of travel.
func (s ExamStatus) rank() int {
	switch s {
	case ExamStatusDraft:
		return 0
	case ExamStatusScheduled:
		return 1
	case ExamStatusActive:
		return 2
	case ExamStatusCompleted:
		return 3
	default:
		return -1
	}
}

// Precedes reports whether next is strictly later than s in the lifecycle.
func (s ExamStatus) Precedes(next ExamStatus) bool {
	return s.rank() >= 0 && next.rank() > s.rank()
}

// Occupying reports whether an exam in this status blocks its time slot for conflict detection.
func (s ExamStatus) Occupying() bool {
	return s == ExamStatusScheduled || s == ExamStatusActive
}

type ExamType string

const (
	ExamTypeAssignment1 ExamType = "assignment1"
	ExamTypeAssignment2 ExamType = "assignment2"
	ExamTypeHomework    ExamType = "homework"
	ExamTypeExam        ExamType = "exam"
	ExamTypeMidterm     ExamType = "midterm"
	ExamTypeFinal       ExamType = "final"
	ExamTypeQuiz        ExamType = "quiz"
	ExamTypePractice    ExamType = "practice"
)

var ExamTypes = []ExamType{
	ExamTypeAssignment1, ExamTypeAssignment2, ExamTypeHomework, ExamTypeExam,
	ExamTypeMidterm, ExamTypeFinal, ExamTypeQuiz, ExamTypePractice,
}

func (t ExamType) Valid() bool {
	return slices.Contains(ExamTypes, t)
}

// MinDurationMinutes is the shortest schedulable exam.
const MinDurationMinutes = 5

type Exam struct {
	ID          uint                      `json:"id" gorm:"primaryKey"`
	Title       string                    `json:"title" gorm:"not null;size:200;index"`
	Description *string                   `json:"description" gorm:"type:text"`
	TeacherID   string                    `json:"teacher_id" gorm:"not null;size:255;index"`
	SubjectID   uint                      `json:"subject_id" gorm:"not null;index"`
	ClassIDs    datatypes.JSONSlice[uint] `json:"class_ids"`
	Type        ExamType                  `json:"type" gorm:"not null;size:32"`
	Status      ExamStatus                `json:"status" gorm:"not null;size:16;default:draft;index"`

	// Schedule. StartTime is nil while the exam is an unscheduled draft.
	StartTime       *time.Time `json:"start_time" gorm:"index"`
	DurationMinutes int        `json:"duration_minutes"`
	EndTime         *time.Time `json:"end_time" gorm:"index"`

	Questions   datatypes.JSONSlice[Question] `json:"questions"`
	TotalPoints float64                       `json:"total_points"`

	ActivatedAt *time.Time     `json:"activated_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Exam) TableName() string {
	return "exams"
}

// Scheduled reports whether start and duration are both set.
func (e *Exam) Scheduled() bool {
	return e.StartTime != nil && e.DurationMinutes > 0
}

// SetSchedule stores start and duration along with the derived end time.
func (e *Exam) SetSchedule(start time.Time, durationMinutes int) {
	start = start.UTC()
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	e.StartTime = &start
	e.DurationMinutes = durationMinutes
	e.EndTime = &end
}

// Duration returns the per-submission time box.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// HasClass reports whether classID is among the exam's target classes.
func (e *Exam) HasClass(classID uint) bool {
	return slices.Contains(e.ClassIDs, classID)
}

// OwnedBy reports whether userID created the exam.
func (e *Exam) OwnedBy(userID string) bool {
	return e.TeacherID == userID
}

// Question returns the question with the given id.
func (e *Exam) Question(id string) (Question, bool) {
	for _, q := range e.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
