package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
)

// AuthController handles registration, login, logout and account removal
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a user and an empty profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "User registered"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or username taken"
// @Router /register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user))
}

// Login handles user login
// @Summary Log in
// @Description Exchanges username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Logged in"
// @Failure 400 {object} dto.ErrorResponse "Invalid credentials"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(token))
}

// Logout revokes the token used for this request
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	tokenID, expiresAt := middleware.CurrentToken(ctx)
	if err := c.authService.Logout(ctx.Request.Context(), tokenID, expiresAt); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Logged out"}))
}

// DeleteAccount removes the caller's account after a password check
// @Summary Delete account
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DeleteAccountRequest true "Current password"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Wrong password"
// @Failure 401 {object} dto.ErrorResponse
// @Router /account [delete]
func (c *AuthController) DeleteAccount(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req dto.DeleteAccountRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tokenID, expiresAt := middleware.CurrentToken(ctx)
	if err := c.authService.DeleteAccount(ctx.Request.Context(), userID, req.Password, tokenID, expiresAt); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Account deleted"}))
}
