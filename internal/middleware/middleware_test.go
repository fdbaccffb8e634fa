package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/tokenstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// userSet is a UserLookup backed by a fixed set of ids
type userSet map[int64]bool

func (u userSet) Exists(_ context.Context, id int64) (bool, error) {
	return u[id], nil
}

type brokenLookup struct{}

func (brokenLookup) Exists(context.Context, int64) (bool, error) {
	return false, errors.New("connection refused")
}

func newAuthFixture() (*AuthMiddleware, *auth.JWTService, *tokenstore.MemoryStore) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "middleware-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "studyhub.test",
	})
	store := tokenstore.NewMemoryStore()
	return NewAuthMiddleware(jwtService, store, userSet{7: true}, zerolog.Nop()), jwtService, store
}

func whoami(c *gin.Context) {
	id, ok := CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "authenticated": ok})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func TestJWTAuth(t *testing.T) {
	m, jwtService, store := newAuthFixture()
	r := gin.New()
	r.GET("/me", m.JWTAuth(), whoami)

	token, err := jwtService.GenerateAccessToken(7, "alice")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7,"authenticated":true}`, w.Body.String())
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, store.Revoke(context.Background(), token.ID, token.ExpiresAt))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeRevokedToken, decodeError(t, w).Error.Code)
	})
}

func TestJWTAuth_DeletedAccount(t *testing.T) {
	m, jwtService, _ := newAuthFixture()
	r := gin.New()
	r.GET("/me", m.JWTAuth(), whoami)

	// user 8 was issued a token but has no account row anymore
	token, err := jwtService.GenerateAccessToken(8, "ghost")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
}

func TestJWTAuth_UserLookupFailure(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-secret", AccessTokenExp: time.Hour})
	m := NewAuthMiddleware(jwtService, tokenstore.NewMemoryStore(), brokenLookup{}, zerolog.Nop())
	r := gin.New()
	r.GET("/me", m.JWTAuth(), whoami)

	token, err := jwtService.GenerateAccessToken(7, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	m, _, _ := newAuthFixture()
	r := gin.New()
	r.GET("/maybe", m.RequireAuthIf(false), whoami)
	r.GET("/must", m.RequireAuthIf(true), whoami)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maybe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"authenticated":false}`, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer broken")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/must", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation", apperrors.NewFieldValidationError("name", "This field may not be blank."), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"already member", apperrors.NewAlreadyMemberError(), http.StatusBadRequest, dto.ErrorCodeAlreadyMember},
		{"owner leave", apperrors.NewOwnerCannotLeaveError(), http.StatusBadRequest, dto.ErrorCodeOwnerCannotLeave},
		{"credentials", apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials"), http.StatusBadRequest, dto.ErrorCodeInvalidCredentials},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"not found", apperrors.NewResourceNotFoundError("group 1 not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleAPIError_FieldDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/register", nil)

	HandleAPIError(c, apperrors.NewFieldValidationError("password2", "Passwords do not match."))

	body := decodeError(t, w)
	assert.Equal(t, "Passwords do not match.", body.Error.Message)
	assert.Equal(t, "password2", body.Error.Field)
}

func TestHandleAPIError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleAPIError(c, apperrors.NewCustomError(errors.New("db down"), "pq: connection refused"))

	assert.Equal(t, "Internal server error", decodeError(t, w).Error.Message)
}

func TestBindJSON_ReportsJSONFieldNames(t *testing.T) {
	RegisterValidation()
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		var req dto.LoginRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, body.Error.Code)
	assert.Equal(t, "password", body.Error.Field)
}
