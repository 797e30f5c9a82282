package dto

import "github.com/google/uuid"

type CreateProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  string     `json:"visibility"`
	ServerID    *uuid.UUID `json:"server_id,omitempty"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}

type GrantAccessRequest struct {
	Email       string `json:"email"`
	AccessLevel string `json:"access_level"`
}

type AccessEntryResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AccessLevel string    `json:"access_level"`
}
