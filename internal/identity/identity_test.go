package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWith(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestHeaderResolver(t *testing.T) {
	resolver := NewHeaderResolver()

	tests := []struct {
		name    string
		headers map[string]string
		want    models.Actor
		wantErr error
	}{
		{
			name:    "student with class",
			headers: map[string]string{HeaderUserID: "s1", HeaderRole: "Student", HeaderClassID: "7"},
			want:    models.Actor{UserID: "s1", Role: models.RoleStudent, ClassID: ptr(uint(7))},
		},
		{
			name:    "teacher without class",
			headers: map[string]string{HeaderUserID: "t1", HeaderRole: "teacher"},
			want:    models.Actor{UserID: "t1", Role: models.RoleTeacher},
		},
		{
			name:    "missing user",
			headers: map[string]string{HeaderRole: "teacher"},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "unknown role",
			headers: map[string]string{HeaderUserID: "x", HeaderRole: "janitor"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "bad class id",
			headers: map[string]string{HeaderUserID: "s1", HeaderRole: "student", HeaderClassID: "abc"},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := resolver.Resolve(requestWith(tt.headers))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, actor)
		})
	}
}

func TestJWTResolver(t *testing.T) {
	const secret = "test-secret"
	resolver := NewJWTResolver(secret)

	sign := func(claims jwt.MapClaims, key string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return "Bearer " + token
	}
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("valid token", func(t *testing.T) {
		auth := sign(jwt.MapClaims{"user_id": "s1", "role": "student", "class_id": 12, "exp": exp}, secret)
		actor, err := resolver.Resolve(requestWith(map[string]string{"Authorization": auth}))
		require.NoError(t, err)
		assert.Equal(t, "s1", actor.UserID)
		assert.Equal(t, models.RoleStudent, actor.Role)
		require.NotNil(t, actor.ClassID)
		assert.Equal(t, uint(12), *actor.ClassID)
	})

	t.Run("subject fallback", func(t *testing.T) {
		auth := sign(jwt.MapClaims{"sub": "d1", "role": "dean", "exp": exp}, secret)
		actor, err := resolver.Resolve(requestWith(map[string]string{"Authorization": auth}))
		require.NoError(t, err)
		assert.Equal(t, "d1", actor.UserID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		auth := sign(jwt.MapClaims{"user_id": "s1", "role": "student", "exp": exp}, "other")
		_, err := resolver.Resolve(requestWith(map[string]string{"Authorization": auth}))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("expired", func(t *testing.T) {
		auth := sign(jwt.MapClaims{"user_id": "s1", "role": "student", "exp": time.Now().Add(-time.Hour).Unix()}, secret)
		_, err := resolver.Resolve(requestWith(map[string]string{"Authorization": auth}))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("malformed header", func(t *testing.T) {
		_, err := resolver.Resolve(requestWith(map[string]string{"Authorization": "Token abc"}))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := resolver.Resolve(requestWith(nil))
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})
}

func TestCasdoorResolver(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	resolver := NewCasdoorResolver(CasdoorConfig{
		Endpoint:         "http://casdoor.local",
		ClientID:         "exam-service",
		Certificate:      string(publicPEM),
		OrganizationName: "school",
		ApplicationName:  "exams",
	})

	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return "Bearer " + token
	}
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("student from tag and properties", func(t *testing.T) {
		auth := sign(jwt.MapClaims{
			"id": "u-1", "name": "alice", "owner": "school", "tag": "student",
			"properties": map[string]string{"class_id": "4"}, "exp": exp,
		})
		actor, err := resolver.Resolve(requestWith(map[string]string{"Authorization": auth}))
		require.NoError(t, err)
		assert.Equal(t, "u-1", actor.UserID)
		assert.Equal(t, models.RoleStudent, actor.Role)
		require.NotNil(t, actor.ClassID)
		assert.Equal(t, uint(4), *actor.ClassID)
	})

	t.Run("admin flag wins over tag", func(t *testing.T) {
		auth := sign(jwt.MapClaims{"id": "u-2", "tag": "teacher", "isAdmin": true, "exp": exp})
		actor, err := resolver.Resolve(requestWith(map[string]string{"Authorization": auth}))
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, actor.Role)
	})

	t.Run("hmac token rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-3", "exp": exp}).SignedString([]byte("x"))
		require.NoError(t, err)
		_, err = resolver.Resolve(requestWith(map[string]string{"Authorization": "Bearer " + token}))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Middleware(NewHeaderResolver()))
	router.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		require.True(t, ok)
		userID, _ := c.Get(ContextUserID)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "ctx_user_id": userID})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthenticated")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderUserID, "t1")
	req.Header.Set(HeaderRole, "teacher")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"t1","ctx_user_id":"t1"}`, w.Body.String())
}

func ptr[T any](v T) *T { return &v }
