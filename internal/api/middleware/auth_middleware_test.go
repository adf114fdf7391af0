package middleware_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test-secret-key-123456789012345")

func createTestToken(userID uuid.UUID, role string, duration time.Duration, key any, method jwt.SigningMethod) (string, error) {
	claims := &models.Claims{
		UserID: userID,
		Email:  "pharmacist@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(method, claims)

	return token.SignedString(key)
}

func withLogger(req *http.Request) *http.Request {
	// Simulates the Logging middleware
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return req.WithContext(context.WithValue(req.Context(), middleware.LoggerKey, baseLogger))
}

func TestAuthMiddleware(t *testing.T) {
	// Arrange
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)
	userID := uuid.New()

	mockNextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		require.True(t, ok, "User claims should be in context")
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, models.RolePharmacist, claims.Role)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"success": true}`))
		require.NoError(t, err)
	})

	token := func(duration time.Duration, key any, method jwt.SigningMethod) string {
		tok, err := createTestToken(userID, models.RolePharmacist, duration, key, method)
		require.NoError(t, err)

		return "Bearer " + tok
	}

	unauthorized := func(message string) string {
		return `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "` + message + `"}}`
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success - Valid Token",
			authHeader:     token(time.Hour, testJwtKey, jwt.SigningMethodHS256),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "Fail - Missing Authorization Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Authorization header is required"),
		},
		{
			name:           "Fail - Invalid Authorization Header Format (No Bearer)",
			authHeader:     "InvalidTokenFormat",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Invalid authorization format"),
		},
		{
			name:           "Fail - Invalid Authorization Header Format (Only Bearer)",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Invalid or expired token"),
		},
		{
			name:           "Fail - Invalid Token (Malformed)",
			authHeader:     "Bearer not.a.valid.token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Invalid or expired token"),
		},
		{
			name:           "Fail - Invalid Token (Wrong Signing Key)",
			authHeader:     token(time.Hour, []byte("different-secret-key-0987654321"), jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Invalid or expired token"),
		},
		{
			name:           "Fail - Unsigned Token",
			authHeader:     token(time.Hour, jwt.UnsafeAllowNoneSignatureType, jwt.SigningMethodNone),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Invalid or expired token"),
		},
		{
			name:           "Fail - Expired Token",
			authHeader:     token(-time.Hour, testJwtKey, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorized("Invalid or expired token"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := withLogger(httptest.NewRequest(http.MethodGet, "/", nil))
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			rr := httptest.NewRecorder()

			// Act
			authMiddleware.Authenticate(mockNextHandler).ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code, "Unexpected status code")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Unexpected response body")
		})
	}
}

func TestRequireRole(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(testJwtKey)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Success - Pharmacist", func(t *testing.T) {
		// Arrange
		tok, err := createTestToken(uuid.New(), models.RolePharmacist, time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)
		req := withLogger(httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()

		// Act
		authMiddleware.RequireRole(models.RolePharmacist, next).ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("Fail - Other Role", func(t *testing.T) {
		// Arrange
		tok, err := createTestToken(uuid.New(), "support", time.Hour, testJwtKey, jwt.SigningMethodHS256)
		require.NoError(t, err)
		req := withLogger(httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()

		// Act
		authMiddleware.RequireRole(models.RolePharmacist, next).ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.JSONEq(t, `{"success": false, "error": {"code": "FORBIDDEN", "message": "Insufficient permissions"}}`, rr.Body.String())
	})

	t.Run("Fail - Unauthenticated", func(t *testing.T) {
		// Arrange
		req := withLogger(httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))
		rr := httptest.NewRecorder()

		// Act
		authMiddleware.RequireRole(models.RolePharmacist, next).ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestNewAuthMiddleware(t *testing.T) {
	key := []byte("some-key")
	mw := middleware.NewAuthMiddleware(key)
	assert.NotNil(t, mw, "Middleware should not be nil")
}
