package dto

import "time"

// RegisterRequest represents a registration form
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password2" binding:"required"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DeleteAccountRequest requires the current password
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType" example:"Bearer"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
