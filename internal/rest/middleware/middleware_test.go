package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beautyops/beautyops/internal/auth"
	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func newAuthProvider(secret string) auth.Provider {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Supabase.JWTSecret = secret
	return auth.NewProvider(cfg)
}

// newEngine mounts handler behind the error handler and the given middlewares
func newEngine(handler gin.HandlerFunc, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNopLogger()))
	r.GET("/t", append(middlewares, handler)...)
	return r
}

func echoUser(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"user_id": types.GetUserID(ctx),
		"email":   types.GetUserEmail(ctx),
	})
}

func do(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	if authHeader != "" {
		req.Header.Set(types.HeaderAuthorization, authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticateMiddleware(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "ae@clinic.test",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"aud": "authenticated",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongAudience := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"aud": "anon",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		secret string
		header string
		status int
		detail string
	}{
		{"valid token", testJWTSecret, "Bearer " + valid, http.StatusOK, ""},
		{"missing header", testJWTSecret, "", http.StatusUnauthorized, "Missing authorization header"},
		{"wrong scheme", testJWTSecret, "Token " + valid, http.StatusUnauthorized, "Invalid authorization header format"},
		{"expired", testJWTSecret, "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
		{"wrong audience", testJWTSecret, "Bearer " + wrongAudience, http.StatusUnauthorized, "Invalid token"},
		{"garbage", testJWTSecret, "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid token"},
		{"secret not configured", "", "Bearer " + valid, http.StatusInternalServerError, "JWT secret not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(echoUser, AuthenticateMiddleware(newAuthProvider(tt.secret), logger.NewNopLogger()))
			w := do(r, tt.header)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":"user-1","email":"ae@clinic.test"}`, w.Body.String())
				return
			}
			assert.Equal(t, tt.detail, decodeError(t, w).Detail)
		})
	}
}

func TestOptionalAuthenticateMiddleware(t *testing.T) {
	r := newEngine(echoUser, OptionalAuthenticateMiddleware(newAuthProvider(testJWTSecret), logger.NewNopLogger()))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"","email":""}`, w.Body.String())

	w = do(r, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusOK, w.Code)

	token := signToken(t, jwt.MapClaims{"sub": "user-2", "aud": "authenticated", "exp": time.Now().Add(time.Hour).Unix()})
	w = do(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-2","email":""}`, w.Body.String())
}

func TestErrorHandler(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{"user_id": "u1"}).
			Mark(ierr.ErrNotFound))
	})

	w := do(r, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Subscription not found", body.Detail)
	assert.Equal(t, map[string]any{"user_id": "u1"}, body.Details)

	r = newEngine(func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})
	w = do(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decodeError(t, w)
	assert.Equal(t, defaultErrorMessage, body.Detail)
	assert.Nil(t, body.Details)
}
