// Package controllers holds the gin handlers of the HTTP API.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/middleware"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// parseIDParam reads a positive int64 path parameter, writing a 400 on failure
func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID")
		errorDetail = errorDetail.WithDetails(label + " ID must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// requireUserID returns the authenticated caller or writes a 401
func requireUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return 0, false
	}
	return userID, true
}
