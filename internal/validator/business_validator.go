package validator

import (
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// BusinessValidator holds the rules that need more than struct tags.
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// ValidateSchedule requires a start strictly after now and a duration of at least MinDurationMinutes.
func (v *BusinessValidator) ValidateSchedule(start time.Time, durationMinutes int, now time.Time) ValidationErrors {
	var errs ValidationErrors

	if !start.After(now) {
		errs = append(errs, ValidationError{Field: "start_time", Message: "must be in the future", Value: start, Rule: "future_date"})
	}
	errs = append(errs, v.ValidateDuration(durationMinutes)...)

	return errs
}

func (v *BusinessValidator) ValidateDuration(durationMinutes int) ValidationErrors {
	if durationMinutes < models.MinDurationMinutes {
		return ValidationErrors{{Field: "duration_minutes", Message: "must be at least 5 minutes", Value: durationMinutes, Rule: "exam_duration"}}
	}
	return nil
}

// ValidateClassIDs rejects an empty target set and zero ids.
func (v *BusinessValidator) ValidateClassIDs(classIDs []uint) ValidationErrors {
	if len(classIDs) == 0 {
		return ValidationErrors{{Field: "class_ids", Message: "must contain at least 1 class", Rule: "min"}}
	}
	for _, id := range classIDs {
		if id == 0 {
			return ValidationErrors{{Field: "class_ids", Message: "must not contain 0", Value: id, Rule: "gt"}}
		}
	}
	return nil
}
