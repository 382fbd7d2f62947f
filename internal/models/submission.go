package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionInProgress    SubmissionStatus = "in-progress"
	SubmissionSubmitted     SubmissionStatus = "submitted"
	SubmissionAutoSubmitted SubmissionStatus = "auto-submitted"
	SubmissionGraded        SubmissionStatus = "graded"
)

// Finalized reports whether the student can no longer change the submission.
func (s SubmissionStatus) Finalized() bool {
	return s != SubmissionInProgress
}

// Gradable reports whether a grader may (re)grade a submission in this status.
func (s SubmissionStatus) Gradable() bool {
	return s == SubmissionSubmitted || s == SubmissionAutoSubmitted || s == SubmissionGraded
}

type Answer struct {
	QuestionID string  `json:"question_id"`
	AnswerText string  `json:"answer_text"`
	Score      float64 `json:"score"`
	Graded     bool    `json:"graded"`
	Feedback   *string `json:"feedback,omitempty"`
}

// AnswerInput is what a student sends for one question.
type AnswerInput struct {
	QuestionID string `json:"question_id" validate:"required"`
	AnswerText string `json:"answer_text"`
}

type AutosaveEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

type Submission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    uint   `json:"exam_id" gorm:"not null;uniqueIndex:idx_submissions_exam_student,where:deleted_at IS NULL"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_submissions_exam_student,where:deleted_at IS NULL"`

	Answers      datatypes.JSONSlice[Answer]         `json:"answers"`
	Status       SubmissionStatus                    `json:"status" gorm:"not null;size:16;default:in-progress;index"`
	Violations   int                                 `json:"violations" gorm:"default:0"`
	ViolationLog datatypes.JSONSlice[ViolationEntry] `json:"violation_log"`
	AutosaveLog  datatypes.JSONSlice[AutosaveEntry]  `json:"autosave_log"`

	StartedAt   time.Time  `json:"started_at"`
	DeadlineAt  time.Time  `json:"deadline_at" gorm:"index"`
	SubmittedAt *time.Time `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
	GradedBy    *string    `json:"graded_by" gorm:"size:255"`

	Score       float64 `json:"score"`
	TotalPoints float64 `json:"total_points"`
	Percentage  int     `json:"percentage"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission creates an in-progress submission with one empty answer slot per question.
func NewSubmission(exam *Exam, studentID string, now time.Time) *Submission {
	answers := make(datatypes.JSONSlice[Answer], 0, len(exam.Questions))
	for _, q := range exam.Questions {
		answers = append(answers, Answer{QuestionID: q.ID})
	}

	return &Submission{
		ExamID:       exam.ID,
		StudentID:    studentID,
		Answers:      answers,
		Status:       SubmissionInProgress,
		ViolationLog: datatypes.JSONSlice[ViolationEntry]{},
		AutosaveLog:  datatypes.JSONSlice[AutosaveEntry]{},
		StartedAt:    now,
		DeadlineAt:   now.Add(exam.Duration()),
		TotalPoints:  exam.TotalPoints,
	}
}

// MergeAnswers overwrites answer text for known question ids. Unknown ids are ignored.
func (s *Submission) MergeAnswers(inputs []AnswerInput) {
	for _, in := range inputs {
		for i := range s.Answers {
			if s.Answers[i].QuestionID == in.QuestionID {
				s.Answers[i].AnswerText = in.AnswerText
				break
			}
		}
	}
}

// AnswerIndex returns the slot index for questionID, or -1.
func (s *Submission) AnswerIndex(questionID string) int {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return i
		}
	}
	return -1
}

// TimeRemaining returns the time left before the deadline, never negative.
func (s *Submission) TimeRemaining(now time.Time) time.Duration {
	if s.Status.Finalized() {
		return 0
	}
	left := s.DeadlineAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
