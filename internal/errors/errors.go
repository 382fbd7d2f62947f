package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies every error the service returns to a caller.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindStateConflict Kind = "state_conflict"
	KindAuthorization Kind = "authorization_error"
	KindNotFound      Kind = "not_found"
	KindPersistence   Kind = "persistence_error"
)

// StateConflictError reports an operation that is not allowed from the
// resource's current status.
type StateConflictError struct {
	Resource  string `json:"resource"`
	Current   string `json:"current"`
	Attempted string `json:"attempted,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

func (e *StateConflictError) Error() string {
	if e.Attempted != "" {
		return fmt.Sprintf("%s: cannot move %s from %s to %s", e.Message, e.Resource, e.Current, e.Attempted)
	}
	return fmt.Sprintf("%s: %s is %s", e.Message, e.Resource, e.Current)
}

func (e *StateConflictError) Unwrap() error {
	return e.Err
}

func NewStateConflict(resource, current, attempted, message string) *StateConflictError {
	return &StateConflictError{Resource: resource, Current: current, Attempted: attempted, Message: message}
}

// AuthorizationError reports a caller acting outside their ownership or role.
type AuthorizationError struct {
	UserID     string `json:"user_id"`
	Resource   string `json:"resource"`
	ResourceID uint   `json:"resource_id,omitempty"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewAuthorization(userID, resource string, resourceID uint, action, reason string) *AuthorizationError {
	return &AuthorizationError{
		UserID:     userID,
		Resource:   resource,
		ResourceID: resourceID,
		Action:     action,
		Reason:     reason,
	}
}

type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Err      error  `json:"-"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func NewNotFound(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// PersistenceError wraps a storage failure. The wrapped error is never shown to callers.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// KindOf maps an error chain to its Kind. Unknown errors are treated as persistence failures.
func KindOf(err error) Kind {
	var (
		validation    ValidationErrors
		single        *ValidationError
		stateConflict *StateConflictError
		authorization *AuthorizationError
		notFound      *NotFoundError
		kinded        interface{ Kind() Kind }
	)

	switch {
	case stderrors.As(err, &kinded):
		return kinded.Kind()
	case stderrors.As(err, &validation), stderrors.As(err, &single):
		return KindValidation
	case stderrors.As(err, &stateConflict):
		return KindStateConflict
	case stderrors.As(err, &authorization):
		return KindAuthorization
	case stderrors.As(err, &notFound):
		return KindNotFound
	default:
		return KindPersistence
	}
}
