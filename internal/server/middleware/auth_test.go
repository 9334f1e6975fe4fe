package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	username, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(username), nil
}

type testClaims string

func (c testClaims) GetUsername() string { return string(c) }

func newValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: map[string]string{"good-token": "admin"}}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "session cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good-token"}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer good-token") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "bearer is case insensitive",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "bearer good-token") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "no credentials",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"}) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Basic good-token") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer without token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				username, err := GetUsername(r)
				require.NoError(t, err)
				seen = username
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/visitors", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			AuthMiddleware(newValidator())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "admin", seen)
			} else {
				assert.Empty(t, seen)
				assert.Contains(t, w.Body.String(), "Unauthorized")
			}
		})
	}
}

func TestTokenFromRequest_CookieWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-cookie", TokenFromRequest(req))
}

func TestGetUsername_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUsername(req)
	assert.Error(t, err)

	req = req.WithContext(WithUsername(req.Context(), "admin"))
	username, err := GetUsername(req)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}
