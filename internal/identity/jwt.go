package identity

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// JWTResolver verifies HS256 tokens issued with a shared secret. The user id
// comes from the user_id claim, falling back to sub.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (j *JWTResolver) Resolve(r *http.Request) (models.Actor, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return models.Actor{}, err
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	userID := claimString(claims, "user_id")
	if userID == "" {
		userID = claimString(claims, "sub")
	}
	if userID == "" {
		return models.Actor{}, fmt.Errorf("%w: token has no subject", ErrInvalidCredentials)
	}
	return newActor(userID, claimString(claims, "role"), claimString(claims, "class_id"))
}

// claimString reads a string or numeric claim as text.
func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
