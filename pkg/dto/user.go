package dto

import "github.com/google/uuid"

type UpdateUserRequest struct {
	Name string `json:"name"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Provider  string    `json:"provider"`
	IsStaff   bool      `json:"is_staff"`
}
