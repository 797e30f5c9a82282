package dto

import "time"

type CreateInvitationRequest struct {
	Role      string     `json:"role"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Email     string     `json:"email,omitempty"`
}
