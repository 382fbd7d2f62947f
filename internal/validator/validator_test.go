package validator

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Title     string               `json:"title" validate:"required,max=200"`
	Type      models.ExamType      `json:"type" validate:"required,exam_type"`
	Violation models.ViolationType `json:"violation" validate:"omitempty,violation_type"`
	Status    *models.ExamStatus   `json:"status" validate:"omitempty,exam_status"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	unknown := models.ExamStatus("archived")
	err := v.Validate(&taggedRequest{Type: "olympiad", Violation: "sneeze", Status: &unknown})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Rule
	}
	assert.Equal(t, "required", fields["title"])
	assert.Equal(t, "exam_type", fields["type"])
	assert.Equal(t, "violation_type", fields["violation"])
	assert.Equal(t, "exam_status", fields["status"])

	active := models.ExamStatusActive
	assert.NoError(t, v.Validate(&taggedRequest{Title: "Midterm", Type: models.ExamTypeMidterm, Violation: models.ViolationTabSwitch}))
	assert.NoError(t, v.Validate(&taggedRequest{Title: "Midterm", Type: models.ExamTypeMidterm, Status: &active}))
}

func TestValidateQuestions(t *testing.T) {
	v := NewQuestionValidator()

	valid := []models.Question{
		{ID: "a", Text: "pick", MaxScore: 2, Body: models.MultipleChoice{Options: []string{"x", "y"}, CorrectAnswer: "y"}},
		{ID: "b", Text: "explain", MaxScore: 5, Body: models.OpenEnded{}},
	}
	assert.Empty(t, v.ValidateQuestions(valid))

	tests := []struct {
		name     string
		question models.Question
		field    string
	}{
		{"missing text", models.Question{ID: "c", MaxScore: 1, Body: models.OpenEnded{}}, "questions[2].text"},
		{"zero max score", models.Question{ID: "c", Text: "t", Body: models.OpenEnded{}}, "questions[2].max_score"},
		{"no body", models.Question{ID: "c", Text: "t", MaxScore: 1}, "questions[2].type"},
		{"single option", models.Question{ID: "c", Text: "t", MaxScore: 1, Body: models.MultipleChoice{Options: []string{"x"}, CorrectAnswer: "x"}}, "questions[2].options"},
		{"duplicate options", models.Question{ID: "c", Text: "t", MaxScore: 1, Body: models.MultipleChoice{Options: []string{"x", "x"}, CorrectAnswer: "x"}}, "questions[2].options"},
		{"answer not an option", models.Question{ID: "c", Text: "t", MaxScore: 1, Body: models.MultipleChoice{Options: []string{"x", "y"}, CorrectAnswer: "X"}}, "questions[2].correct_answer"},
		{"duplicate id", models.Question{ID: "a", Text: "t", MaxScore: 1, Body: models.OpenEnded{}}, "questions[2].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateQuestions(append(append([]models.Question{}, valid...), tt.question))
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	v := NewBusinessValidator()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, v.ValidateSchedule(now.Add(time.Hour), 5, now))

	errs := v.ValidateSchedule(now.Add(-time.Hour), 60, now)
	require.Len(t, errs, 1)
	assert.Equal(t, "start_time", errs[0].Field)

	errs = v.ValidateSchedule(now, 60, now)
	require.Len(t, errs, 1, "start equal to now is not in the future")

	errs = v.ValidateSchedule(now.Add(time.Hour), 4, now)
	require.Len(t, errs, 1)
	assert.Equal(t, "duration_minutes", errs[0].Field)
}

func TestValidateClassIDs(t *testing.T) {
	v := NewBusinessValidator()
	assert.Empty(t, v.ValidateClassIDs([]uint{1, 2}))
	assert.NotEmpty(t, v.ValidateClassIDs(nil))
	assert.NotEmpty(t, v.ValidateClassIDs([]uint{3, 0}))
}
