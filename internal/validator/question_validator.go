package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestions checks every question and the uniqueness of their ids.
// Field names are indexed, e.g. questions[1].correct_answer.
func (v *QuestionValidator) ValidateQuestions(questions []models.Question) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(questions))

	for i, q := range questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if q.ID != "" {
			if seen[q.ID] {
				errs = append(errs, ValidationError{Field: prefix + ".id", Message: "must be unique within the exam", Value: q.ID, Rule: "unique"})
			}
			seen[q.ID] = true
		}
		errs = append(errs, v.ValidateQuestion(prefix, q)...)
	}

	return errs
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(prefix string, q models.Question) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, ValidationError{Field: prefix + ".text", Message: "is required", Rule: "required"})
	}
	if q.MaxScore <= 0 {
		errs = append(errs, ValidationError{Field: prefix + ".max_score", Message: "must be greater than 0", Value: q.MaxScore, Rule: "gt"})
	}

	switch body := q.Body.(type) {
	case models.MultipleChoice:
		errs = append(errs, v.validateMultipleChoice(prefix, body)...)
	case models.OpenEnded:
	default:
		errs = append(errs, ValidationError{Field: prefix + ".type", Message: "must be mcq or open", Rule: "question_kind"})
	}

	return errs
}

func (v *QuestionValidator) validateMultipleChoice(prefix string, body models.MultipleChoice) ValidationErrors {
	var errs ValidationErrors

	if len(body.Options) < 2 {
		errs = append(errs, ValidationError{Field: prefix + ".options", Message: "must have at least 2 options", Value: len(body.Options), Rule: "min"})
	}

	seen := make(map[string]bool, len(body.Options))
	for _, opt := range body.Options {
		if strings.TrimSpace(opt) == "" {
			errs = append(errs, ValidationError{Field: prefix + ".options", Message: "must not contain empty options", Rule: "required"})
			break
		}
		if seen[opt] {
			errs = append(errs, ValidationError{Field: prefix + ".options", Message: "must be distinct", Value: opt, Rule: "unique"})
			break
		}
		seen[opt] = true
	}

	if !slices.Contains(body.Options, body.CorrectAnswer) {
		errs = append(errs, ValidationError{Field: prefix + ".correct_answer", Message: "must be one of the options", Value: body.CorrectAnswer, Rule: "oneof"})
	}

	return errs
}
