// Package authz holds the pure access-decision tables. Standing resolution
// (who has which grant) lives in the service layer; this package only maps
// a resolved standing and an operation class to allow/deny.
package authz

// Op classifies an operation against a container the way the HTTP layer
// maps verbs: GET/HEAD -> OpRead, POST/PUT/PATCH -> OpWrite,
// DELETE -> OpDelete.
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpDelete
)

func (op Op) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Kind tags the two container flavors plus the two degenerate cases.
type Kind int

const (
	// KindNone means no relation exists between principal and container.
	KindNone Kind = iota
	// KindOwner is the container's recorded owner. Owner standing comes
	// from the container row itself and is never overridden by a grant
	// or membership row.
	KindOwner
	// KindShared is a project_access grant on a standalone project.
	KindShared
	// KindRole is a server membership role.
	KindRole
)

const (
	LevelRead   = "read"
	LevelWrite  = "write"
	LevelManage = "manage"
)

const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
	RoleOwner     = "owner"
)

// Standing is a principal's resolved relation to one container. Level is
// meaningful only when Kind == KindShared, Role only when Kind == KindRole.
type Standing struct {
	Kind  Kind
	Level string
	Role  string
}

func None() Standing                { return Standing{Kind: KindNone} }
func Owner() Standing               { return Standing{Kind: KindOwner} }
func Shared(level string) Standing  { return Standing{Kind: KindShared, Level: level} }
func Member(role string) Standing   { return Standing{Kind: KindRole, Role: role} }

// Exists reports whether the principal has any relation to the container.
// A false result must surface as not-found, not forbidden, so that private
// containers are indistinguishable from absent ones.
func (s Standing) Exists() bool {
	return s.Kind != KindNone
}

// Allows implements the decision tables. Shared grants: manage has full
// access, write may not delete, read may only read. Roles: owner and admin
// have full access, moderators and members may read and write items but not
// delete the container or its items.
func (s Standing) Allows(op Op) bool {
	switch s.Kind {
	case KindOwner:
		return true
	case KindShared:
		switch s.Level {
		case LevelManage:
			return true
		case LevelWrite:
			return op != OpDelete
		case LevelRead:
			return op == OpRead
		}
		return false
	case KindRole:
		switch s.Role {
		case RoleOwner, RoleAdmin:
			return true
		case RoleModerator, RoleMember:
			return op != OpDelete
		}
		return false
	}
	return false
}

// CanManageMembers reports whether the standing permits adding or removing
// collaborators and changing member roles. Plain members cannot, regardless
// of what Allows says about items.
func (s Standing) CanManageMembers() bool {
	switch s.Kind {
	case KindOwner:
		return true
	case KindShared:
		return s.Level == LevelManage
	case KindRole:
		switch s.Role {
		case RoleOwner, RoleAdmin, RoleModerator:
			return true
		}
	}
	return false
}

func ValidAccessLevel(level string) bool {
	switch level {
	case LevelRead, LevelWrite, LevelManage:
		return true
	}
	return false
}
