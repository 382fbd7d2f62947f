package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleDean    UserRole = "dean"
	RoleAdmin   UserRole = "admin"
)

var UserRoles = []UserRole{RoleStudent, RoleTeacher, RoleDean, RoleAdmin}

// Actor is the caller identity handed over by the identity provider.
// Users are owned by another service; only these three facts are consumed.
type Actor struct {
	UserID  string   `json:"user_id"`
	Role    UserRole `json:"role"`
	ClassID *uint    `json:"class_id,omitempty"`
}

// Elevated reports whether the actor may act on exams they do not own.
func (a Actor) Elevated() bool {
	return a.Role == RoleDean || a.Role == RoleAdmin
}

func (a Actor) IsStudent() bool { return a.Role == RoleStudent }
func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
