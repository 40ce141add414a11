package dto

import (
	"time"

	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                 uint64     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	ProfilePicture     string     `json:"profile_picture,omitempty"`
	IsActive           bool       `json:"is_active"`
	LastLogin          *time.Time `json:"last_login"`
	CurrentWorkspaceID *uint64    `json:"current_workspace_id"`
	CreatedAt          time.Time  `json:"created_at"`
}

// UserSummaryDTO is the compact user embedded in other resources
type UserSummaryDTO struct {
	ID             uint64 `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		ProfilePicture:     user.ProfilePicture,
		IsActive:           user.IsActive,
		LastLogin:          user.LastLogin,
		CurrentWorkspaceID: user.CurrentWorkspaceID,
		CreatedAt:          user.CreatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
	}
}

// NewTokenResponse builds the bearer token response
func NewTokenResponse(accessToken string, expiresAt time.Time, user models.User) TokenResponse {
	return TokenResponse{
		AccessToken: accessToken,
		TokenType:   constants.TokenTypeBearer,
		ExpiresAt:   expiresAt,
		User:        ToUserDTO(user),
	}
}
