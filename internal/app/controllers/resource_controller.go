package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
)

// ResourceController handles resource links
type ResourceController struct {
	resourceService services.ResourceService
}

// NewResourceController creates a new ResourceController
func NewResourceController(resourceService services.ResourceService) *ResourceController {
	return &ResourceController{resourceService: resourceService}
}

// ListResources returns resources newest first
// @Summary List resources
// @Tags resources
// @Produce json
// @Param group query int false "Group ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ResourceResponse}
// @Router /resources [get]
func (c *ResourceController) ListResources(ctx *gin.Context) {
	var filter dto.ResourceFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	resources, err := c.resourceService.ListResources(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resources))
}

// PostResource shares a link in a group the caller belongs to
// @Summary Post resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateResourceRequest true "Resource"
// @Success 201 {object} dto.APIResponse{data=dto.ResourceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Router /resources [post]
func (c *ResourceController) PostResource(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateResourceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resource, err := c.resourceService.PostResource(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resource))
}
