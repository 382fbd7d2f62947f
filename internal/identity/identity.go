// Package identity turns request credentials into the actor the services act for.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

var (
	ErrMissingCredentials = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Resolver identifies the caller of an HTTP request.
type Resolver interface {
	Resolve(r *http.Request) (models.Actor, error)
}

// Header names used by HeaderResolver. A trusted gateway sets them after
// authenticating the caller.
const (
	HeaderUserID  = "X-User-ID"
	HeaderRole    = "X-User-Role"
	HeaderClassID = "X-Class-ID"
)

type HeaderResolver struct{}

func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{}
}

func (HeaderResolver) Resolve(r *http.Request) (models.Actor, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return models.Actor{}, ErrMissingCredentials
	}
	return newActor(userID, r.Header.Get(HeaderRole), r.Header.Get(HeaderClassID))
}

// newActor validates the raw identity facts shared by every resolver.
func newActor(userID, role, classID string) (models.Actor, error) {
	actor := models.Actor{
		UserID: userID,
		Role:   models.UserRole(strings.ToLower(strings.TrimSpace(role))),
	}
	if !slices.Contains(models.UserRoles, actor.Role) {
		return models.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidCredentials, role)
	}

	classID = strings.TrimSpace(classID)
	if classID != "" {
		id, err := strconv.ParseUint(classID, 10, 64)
		if err != nil || id == 0 {
			return models.Actor{}, fmt.Errorf("%w: invalid class id %q", ErrInvalidCredentials, classID)
		}
		class := uint(id)
		actor.ClassID = &class
	}
	return actor, nil
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", ErrMissingCredentials
	}

	fields := strings.Fields(auth)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidCredentials)
	}
	return strings.Trim(fields[1], "\"'"), nil
}
