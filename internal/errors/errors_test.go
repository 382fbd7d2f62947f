package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type kindedError struct{}

func (kindedError) Error() string { return "kinded" }
func (kindedError) Kind() Kind    { return KindValidation }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation errors", Single("title", "is required", ""), KindValidation},
		{"single validation error", NewValidationError("title", "is required", ""), KindValidation},
		{"wrapped state conflict", fmt.Errorf("schedule: %w", NewStateConflict("exam", "active", "scheduled", "invalid transition")), KindStateConflict},
		{"authorization", NewAuthorization("u1", "exam", 3, "update", "not the owner"), KindAuthorization},
		{"not found", NewNotFound("submission", 9), KindNotFound},
		{"persistence", NewPersistence("save exam", stderrors.New("connection reset")), KindPersistence},
		{"unknown", stderrors.New("boom"), KindPersistence},
		{"self describing", fmt.Errorf("wrapped: %w", kindedError{}), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStateConflictMessage(t *testing.T) {
	assert.EqualError(t, NewStateConflict("exam", "draft", "completed", "invalid status transition"),
		"invalid status transition: cannot move exam from draft to completed")
	assert.EqualError(t, NewStateConflict("submission", "submitted", "", "already submitted"),
		"already submitted: submission is submitted")
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewPersistence("save submission", cause)
	assert.ErrorIs(t, err, cause)
}
