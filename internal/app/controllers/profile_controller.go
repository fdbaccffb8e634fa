package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
)

// ProfileController serves the caller's profile and matches
type ProfileController struct {
	profileService services.ProfileService
	matchService   services.MatchService
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService, matchService services.MatchService) *ProfileController {
	return &ProfileController{profileService: profileService, matchService: matchService}
}

// GetProfile returns the caller's profile page
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// SetInterests replaces the caller's subjects
// @Summary Set subject interests
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetInterestsRequest true "Subject IDs"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown subject"
// @Router /profile/subjects [put]
func (c *ProfileController) SetInterests(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.SetInterestsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	subjects, err := c.profileService.SetInterests(ctx.Request.Context(), userID, req.SubjectIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects))
}

// FindMatches lists users sharing a subject with the caller
// @Summary Find study partners
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MatchResponse}
// @Router /matches [get]
func (c *ProfileController) FindMatches(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	matches, err := c.matchService.FindMatches(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(matches))
}
