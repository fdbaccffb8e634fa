package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/logger"
)

// HandleAPIError maps an application error to its status code and error body
func HandleAPIError(c *gin.Context, err error) {
	status, code, message := classify(err)
	if msg := apperrors.MessageOf(err); msg != "" && status != http.StatusInternalServerError {
		message = msg
	}

	detail := dto.NewErrorDetail(code, message)
	if details := apperrors.DetailsOf(err); len(details) > 0 {
		detail.WithDetails(details)
		if len(details) == 1 {
			for field := range details {
				detail.WithField(field)
			}
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	case errors.Is(err, apperrors.ErrAlreadyMember):
		return http.StatusBadRequest, dto.ErrorCodeAlreadyMember, "User is already a member."
	case errors.Is(err, apperrors.ErrOwnerCannotLeave):
		return http.StatusBadRequest, dto.ErrorCodeOwnerCannotLeave, "Owner cannot leave the group."
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusBadRequest, dto.ErrorCodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return http.StatusUnauthorized, dto.ErrorCodeRevokedToken, "Token revoked"
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
