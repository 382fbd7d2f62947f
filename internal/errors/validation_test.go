package errors

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleForm struct {
	Title     string `validate:"required"`
	Type      string `validate:"exam_type"`
	Status    string `validate:"omitempty,exam_status"`
	Violation string `validate:"omitempty,violation_type"`
	Kind      string `validate:"omitempty,question_kind"`
	Duration  int    `validate:"min=5"`
}

func newFormValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	oneOf := func(allowed ...string) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return slices.Contains(allowed, fl.Field().String())
		}
	}
	require.NoError(t, v.RegisterValidation("exam_type", oneOf("midterm", "final", "quiz")))
	require.NoError(t, v.RegisterValidation("exam_status", oneOf("draft", "scheduled", "active", "completed")))
	require.NoError(t, v.RegisterValidation("violation_type", oneOf("tab_switch", "copy_paste")))
	require.NoError(t, v.RegisterValidation("question_kind", oneOf("mcq", "open")))
	return v
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("duration_minutes", "must be at least 5 minutes", 3)

	assert.Equal(t, "duration_minutes", err.Field)
	assert.Equal(t, 3, err.Value)
	assert.Empty(t, err.Rule)
	assert.EqualError(t, err, "validation error on field 'duration_minutes': must be at least 5 minutes")

	ruled := NewValidationErrorWithRule("type", "must be mcq or open", "question_kind", "essay")
	assert.Equal(t, "question_kind", ruled.Rule)
	assert.Equal(t, "essay", ruled.Value)
}

func TestValidationErrorsMessage(t *testing.T) {
	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{"empty", ValidationErrors{}, "validation failed"},
		{"single", Single("start_time", "must be in the future", "2020-01-01"), "validation failed: start_time must be in the future"},
		{
			"several",
			ValidationErrors{
				*NewValidationError("title", "is required", ""),
				*NewValidationError("class_ids", "must be at least 1", nil),
			},
			"validation failed: 2 field errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.errs, tt.want)
			assert.Equal(t, KindValidation, KindOf(tt.errs))
		})
	}
}

func TestSingle(t *testing.T) {
	errs := Single("answers", "unknown question id", "q9")

	require.Len(t, errs, 1)
	assert.Equal(t, ValidationError{Field: "answers", Message: "unknown question id", Value: "q9"}, errs[0])
}

func TestToValidationErrors(t *testing.T) {
	v := newFormValidator(t)
	valid := scheduleForm{Title: "Midterm", Type: "midterm", Duration: 60}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name    string
		mutate  func(*scheduleForm)
		field   string
		rule    string
		message string
	}{
		{"missing title", func(f *scheduleForm) { f.Title = "" }, "Title", "required", "is required"},
		{
			"unknown exam type", func(f *scheduleForm) { f.Type = "olympiad" }, "Type", "exam_type",
			"must be a valid exam type (assignment1, assignment2, homework, exam, midterm, final, quiz, practice)",
		},
		{
			"unknown exam status", func(f *scheduleForm) { f.Status = "archived" }, "Status", "exam_status",
			"must be a valid exam status (draft, scheduled, active, completed)",
		},
		{"unknown violation", func(f *scheduleForm) { f.Violation = "sneeze" }, "Violation", "violation_type", "must be a known violation type"},
		{"unknown question kind", func(f *scheduleForm) { f.Kind = "essay" }, "Kind", "question_kind", "must be mcq or open"},
		{"short duration", func(f *scheduleForm) { f.Duration = 2 }, "Duration", "min", "must be at least 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			errs := ToValidationErrors(v.Struct(form))

			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.rule, errs[0].Rule)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestToValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, ToValidationErrors(stderrors.New("connection reset")))
	assert.Empty(t, ToValidationErrors(nil))
}

func TestToValidationErrorsDefaultMessage(t *testing.T) {
	errs := ToValidationErrors(validator.New().Var("not-an-address", "email"))

	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Rule)
	assert.Equal(t, "validation failed for rule 'email'", errs[0].Message)
}
