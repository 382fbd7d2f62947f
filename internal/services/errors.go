package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exam-service/internal/errors"
	"github.com/SAP-F-2025/exam-service/internal/scheduling"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Exam specific errors
	ErrExamNotFound          = errors.New("exam not found")
	ErrExamInvalidTransition = errors.New("invalid exam status transition")
	ErrExamNotEditable       = errors.New("exam cannot be edited in current status")
	ErrExamNotDeletable      = errors.New("exam can only be deleted while in draft")
	ErrExamNotActive         = errors.New("exam is not active")
	ErrExamScheduleConflict  = errors.New("exam schedule conflicts with another exam")

	// Submission specific errors
	ErrSubmissionNotFound         = errors.New("submission not found")
	ErrSubmissionAlreadySubmitted = errors.New("already submitted")
	ErrSubmissionNotInProgress    = errors.New("submission is not in progress")
	ErrSubmissionTimeExpired      = errors.New("submission time has expired")
	ErrSubmissionNotGradable      = errors.New("submission cannot be graded in current status")
	ErrAnswerNotFound             = errors.New("question not found in submission")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared error types from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type StateConflictError = apperrors.StateConflictError
type AuthorizationError = apperrors.AuthorizationError
type NotFoundError = apperrors.NotFoundError

// ScheduleConflictError is a validation failure that carries the colliding exams.
type ScheduleConflictError struct {
	Conflicts []scheduling.Conflict `json:"conflicts"`
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s: %d conflicting exam(s)", ErrExamScheduleConflict, len(e.Conflicts))
}

func (e *ScheduleConflictError) Unwrap() error {
	return ErrExamScheduleConflict
}

func (e *ScheduleConflictError) Kind() apperrors.Kind {
	return apperrors.KindValidation
}

// ===== ERROR HELPERS =====

func newStateConflict(cause error, resource, current, attempted string) *StateConflictError {
	return &StateConflictError{
		Resource:  resource,
		Current:   current,
		Attempted: attempted,
		Message:   cause.Error(),
		Err:       cause,
	}
}

func newNotFound(cause error, resource string, id interface{}) *NotFoundError {
	nf := apperrors.NewNotFound(resource, id)
	nf.Err = cause
	return nf
}

func newPermissionError(userID string, resourceID uint, resource, action, reason string) *AuthorizationError {
	return apperrors.NewAuthorization(userID, resource, resourceID, action, reason)
}

func newPersistenceError(op string, err error) error {
	return apperrors.NewPersistence(op, err)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindNotFound
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindAuthorization
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindValidation
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindStateConflict
}
