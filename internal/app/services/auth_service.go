package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/dberrors"
	"github.com/yigit/studyhub/internal/pkg/tokenstore"
)

// AuthService handles registration, login, logout and account removal
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	DeleteAccount(ctx context.Context, userID int64, password, tokenID string, expiresAt time.Time) error
}

type authServiceImpl struct {
	users      UserStore
	jwtService *auth.JWTService
	revoked    tokenstore.Store
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *auth.JWTService, revoked tokenstore.Store, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		users:      users,
		jwtService: jwtService,
		revoked:    revoked,
		logger:     logger,
	}
}

// Register creates the user together with its empty profile
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	switch {
	case username == "":
		return nil, apperrors.NewFieldValidationError("username", "This field is required.")
	case req.Password == "":
		return nil, apperrors.NewFieldValidationError("password", "This field is required.")
	case !validEmail(email):
		return nil, apperrors.NewFieldValidationError("email", "Enter a valid email address.")
	case req.Password != req.PasswordConfirm:
		return nil, apperrors.NewFieldValidationError("password2", "Passwords do not match.")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{Username: username, Email: email, Password: hash}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.ConstraintUsernameUnique) {
			return nil, apperrors.NewFieldValidationError("username", "A user with that username already exists.")
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User registered")
	return &dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// Login checks the credentials and issues a bearer token. Unknown users and
// wrong passwords produce the same error.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	invalid := apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, invalid
		}
		s.logger.Error().Err(err).Msg("Failed to load user for login")
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Password mismatch")
		return nil, invalid
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate token")
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token.Token,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt,
		Username:  user.Username,
	}, nil
}

// Logout revokes the token until it would have expired anyway
func (s *authServiceImpl) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return apperrors.ErrTokenInvalid
	}
	if err := s.revoked.Revoke(ctx, tokenID, expiresAt); err != nil {
		s.logger.Error().Err(err).Str("tokenID", tokenID).Msg("Failed to revoke token")
		return err
	}
	return nil
}

// DeleteAccount removes the caller after re-checking the password and then
// revokes the token used for the request.
func (s *authServiceImpl) DeleteAccount(ctx context.Context, userID int64, password, tokenID string, expiresAt time.Time) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, password) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to delete user")
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Account deleted")

	if tokenID != "" {
		if err := s.revoked.Revoke(ctx, tokenID, expiresAt); err != nil {
			// other tokens of the account are rejected by the user lookup in the auth middleware
			s.logger.Warn().Err(err).Str("tokenID", tokenID).Msg("Failed to revoke token after account deletion")
		}
	}
	return nil
}
