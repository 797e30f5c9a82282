package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityPrivate = "private"
	VisibilityShared  = "shared"
	VisibilityPublic  = "public"
)

// Project is a container of items. A project either stands alone and is
// shared through project_access grants, or belongs to a server, in which
// case access follows server membership.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  string     `json:"visibility"`
	IsArchived  bool       `json:"is_archived"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	ServerID    *uuid.UUID `json:"server_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Project) IsServerProject() bool {
	return p.ServerID != nil
}

// ProjectAccess is a shared-access grant on a standalone project. At most
// one row exists per (project, user); re-inviting updates the level in
// place.
type ProjectAccess struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	UserID      uuid.UUID `json:"user_id"`
	AccessLevel string    `json:"access_level"`
	GrantedBy   uuid.UUID `json:"granted_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        *User     `json:"user,omitempty"`
}

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	}
	return false
}
