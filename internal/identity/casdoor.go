package identity

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// CasdoorConfig holds the application registration in Casdoor.
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// CasdoorResolver verifies access tokens issued by Casdoor. Admin users map to
// the admin role, everyone else to the role stored in their tag. The class
// comes from the class_id user property.
type CasdoorResolver struct {
	client *casdoorsdk.Client
}

func NewCasdoorResolver(cfg CasdoorConfig) *CasdoorResolver {
	return &CasdoorResolver{
		client: casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret,
			cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName),
	}
}

func (c *CasdoorResolver) Resolve(r *http.Request) (models.Actor, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return models.Actor{}, err
	}

	claims, err := c.client.ParseJwtToken(raw)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	userID := claims.Id
	if userID == "" {
		userID = claims.Name
	}
	if userID == "" {
		return models.Actor{}, fmt.Errorf("%w: token has no user", ErrInvalidCredentials)
	}

	role := claims.Tag
	if claims.IsAdmin {
		role = string(models.RoleAdmin)
	}
	return newActor(userID, role, claims.Properties["class_id"])
}
