package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{JWTSecret: "test-secret", Issuer: "woelfleder-kunden", TokenTTL: 60}
}

func testUser() *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.MustParse("7b0f5c2e-3f4a-4a8e-9d4e-0c1b2a3d4e5f"),
		DisplayName: "Anna Wölfleder",
		Email:       "anna@example.com",
	}
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	token, err := v.IssueToken(testUser())
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUser().UserID, user.UserID)
	assert.Equal(t, "Anna Wölfleder", user.DisplayName)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, "7b0f5c2e-3f4a-4a8e-9d4e-0c1b2a3d4e5f", user.OwnerID())
}

func TestJWTValidator_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	v := auth.NewJWTValidator(cfg)
	now := time.Now()

	sign := func(claims jwt.Claims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   testUser().UserID.String(),
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"
	noExpiry := valid()
	noExpiry.ExpiresAt = nil
	badSubject := valid()
	badSubject.Subject = "not-a-uuid"

	_, err := v.ValidateToken(sign(expired, cfg.JWTSecret))
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, valid()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": sign(valid(), "other-secret"),
		"wrong issuer": sign(wrongIssuer, cfg.JWTSecret),
		"no expiry":    sign(noExpiry, cfg.JWTSecret),
		"bad subject":  sign(badSubject, cfg.JWTSecret),
		"garbage":      "not.a.token",
		"none alg":     noneSigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestJWTValidator_NoSecret(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{})

	_, err := v.IssueToken(testUser())
	assert.ErrorIs(t, err, auth.ErrNoSecret)
	_, err = v.ValidateToken("x")
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := auth.NewMiddleware(&config.Config{Auth: *testAuthConfig()}, zap.NewNop())
	token, err := m.Validator().IssueToken(testUser())
	require.NoError(t, err)

	var owner string
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner = auth.OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK},
		{"query parameter", func(r *http.Request) { r.URL.RawQuery = "access_token=" + token }, http.StatusOK},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, testUser().OwnerID(), owner)
			} else {
				assert.Empty(t, owner)
			}
		})
	}
}

func TestOwnerFromContext(t *testing.T) {
	assert.Empty(t, auth.OwnerFromContext(context.Background()))

	ctx := auth.WithUserContext(context.Background(), testUser())
	user, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, testUser().OwnerID(), auth.OwnerFromContext(ctx))
}
