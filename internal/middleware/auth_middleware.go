package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/tokenstore"
)

// Context keys set by the auth middleware
const (
	ContextUserID         = "userID"
	ContextUsername       = "username"
	ContextTokenID        = "tokenID"
	ContextTokenExpiresAt = "tokenExpiresAt"
)

// UserLookup checks that the subject of a token still has an account
type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// AuthMiddleware resolves bearer credentials into the request context
type AuthMiddleware struct {
	jwtService *auth.JWTService
	revoked    tokenstore.Store
	users      UserLookup
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, revoked tokenstore.Store, users UserLookup, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		revoked:    revoked,
		users:      users,
		logger:     logger,
	}
}

// JWTAuth rejects requests without a valid, unrevoked token
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authenticate(c); err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is present and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if err := m.authenticate(c); err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

// RequireAuthIf picks JWTAuth or OptionalAuth from a policy switch
func (m *AuthMiddleware) RequireAuthIf(required bool) gin.HandlerFunc {
	if required {
		return m.JWTAuth()
	}
	return m.OptionalAuth()
}

func (m *AuthMiddleware) authenticate(c *gin.Context) error {
	tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return err
	}

	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return err
	}

	revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		m.logger.Error().Err(err).Str("tokenID", claims.ID).Msg("Revocation lookup failed")
		return err
	}
	if revoked {
		return apperrors.ErrTokenRevoked
	}

	// Tokens of a deleted account stay signed and unexpired
	exists, err := m.users.Exists(c.Request.Context(), claims.UserID)
	if err != nil {
		m.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("User lookup failed")
		return err
	}
	if !exists {
		return apperrors.ErrTokenInvalid
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExpiresAt, claims.ExpiresAt.Time)
	}
	return nil
}

func abortUnauthorized(c *gin.Context, err error) {
	var detail *dto.ErrorDetail
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		detail = dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, apperrors.ErrTokenExpired):
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		detail = dto.NewErrorDetail(dto.ErrorCodeRevokedToken, "Token has been revoked")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

// CurrentUserID returns the authenticated caller, if any
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CurrentToken returns the id and expiry of the credential used for the request
func CurrentToken(c *gin.Context) (string, time.Time) {
	id := c.GetString(ContextTokenID)
	exp, _ := c.Get(ContextTokenExpiresAt)
	expiresAt, _ := exp.(time.Time)
	return id, expiresAt
}
