package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
)

// GroupController handles study group operations
type GroupController struct {
	groupService services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// ListGroups returns all groups, optionally filtered by subject
// @Summary List groups
// @Tags groups
// @Produce json
// @Param subject query int false "Subject ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.GroupResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /groups [get]
func (c *GroupController) ListGroups(ctx *gin.Context) {
	var filter dto.GroupFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	groups, err := c.groupService.ListGroups(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups))
}

// GetGroup returns a group with members and resources
// @Summary Get group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=dto.GroupDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Router /groups/{id} [get]
func (c *GroupController) GetGroup(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "group")
	if !ok {
		return
	}

	group, err := c.groupService.GetGroup(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group))
}

// CreateGroup creates a group owned by the caller
// @Summary Create group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGroupRequest true "Group data"
// @Success 201 {object} dto.APIResponse{data=dto.GroupResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateGroupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.CreateGroup(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(group))
}

// UpdateGroup applies a partial update
// @Summary Update group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.UpdateGroupRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.GroupResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse
// @Router /groups/{id} [patch]
func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "group")
	if !ok {
		return
	}
	var req dto.UpdateGroupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.UpdateGroup(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group))
}

// DeleteGroup removes a group
// @Summary Delete group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse
// @Router /groups/{id} [delete]
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "group")
	if !ok {
		return
	}

	if err := c.groupService.DeleteGroup(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Group deleted"}))
}

// JoinGroup adds the caller to a group
// @Summary Join group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Already a member (GRP_001)"
// @Failure 404 {object} dto.ErrorResponse
// @Router /groups/{id}/join [post]
func (c *GroupController) JoinGroup(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "group")
	if !ok {
		return
	}

	if err := c.groupService.JoinGroup(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Joined the group."}))
}

// LeaveGroup removes the caller from a group
// @Summary Leave group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Owner cannot leave (GRP_002)"
// @Failure 404 {object} dto.ErrorResponse
// @Router /groups/{id}/leave [post]
func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "group")
	if !ok {
		return
	}

	if err := c.groupService.LeaveGroup(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Left the group."}))
}
