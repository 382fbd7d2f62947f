package config

import (
	"fmt"

	"github.com/SAP-F-2025/exam-service/internal/identity"
)

// IdentityResolver builds the resolver selected by IdentityProvider.
func (c *Config) IdentityResolver() (identity.Resolver, error) {
	switch c.IdentityProvider {
	case "", "header":
		return identity.NewHeaderResolver(), nil
	case "jwt":
		if c.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required for the jwt identity provider")
		}
		return identity.NewJWTResolver(c.JWTSecret), nil
	case "casdoor":
		if c.Casdoor.Endpoint == "" || c.Casdoor.Certificate == "" {
			return nil, fmt.Errorf("CASDOOR_ENDPOINT and CASDOOR_CERTIFICATE are required for the casdoor identity provider")
		}
		return identity.NewCasdoorResolver(identity.CasdoorConfig{
			Endpoint:         c.Casdoor.Endpoint,
			ClientID:         c.Casdoor.ClientID,
			ClientSecret:     c.Casdoor.ClientSecret,
			Certificate:      c.Casdoor.Certificate,
			OrganizationName: c.Casdoor.OrganizationName,
			ApplicationName:  c.Casdoor.ApplicationName,
		}), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", c.IdentityProvider)
	}
}
