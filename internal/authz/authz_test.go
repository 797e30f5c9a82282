package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStanding_Allows_SharedGrants(t *testing.T) {
	tests := []struct {
		name     string
		standing Standing
		op       Op
		want     bool
	}{
		{"owner read", Owner(), OpRead, true},
		{"owner write", Owner(), OpWrite, true},
		{"owner delete", Owner(), OpDelete, true},

		{"manage read", Shared(LevelManage), OpRead, true},
		{"manage write", Shared(LevelManage), OpWrite, true},
		{"manage delete", Shared(LevelManage), OpDelete, true},

		{"write read", Shared(LevelWrite), OpRead, true},
		{"write write", Shared(LevelWrite), OpWrite, true},
		{"write delete", Shared(LevelWrite), OpDelete, false},

		{"read read", Shared(LevelRead), OpRead, true},
		{"read write", Shared(LevelRead), OpWrite, false},
		{"read delete", Shared(LevelRead), OpDelete, false},

		{"none read", None(), OpRead, false},
		{"none write", None(), OpWrite, false},
		{"none delete", None(), OpDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.standing.Allows(tt.op))
		})
	}
}

func TestStanding_Allows_ServerRoles(t *testing.T) {
	tests := []struct {
		name     string
		standing Standing
		op       Op
		want     bool
	}{
		{"admin delete", Member(RoleAdmin), OpDelete, true},
		{"role owner delete", Member(RoleOwner), OpDelete, true},
		{"moderator write", Member(RoleModerator), OpWrite, true},
		{"moderator delete", Member(RoleModerator), OpDelete, false},
		{"member read", Member(RoleMember), OpRead, true},
		{"member write", Member(RoleMember), OpWrite, true},
		{"member delete", Member(RoleMember), OpDelete, false},
		{"unknown role", Member("visitor"), OpRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.standing.Allows(tt.op))
		})
	}
}

func TestStanding_CanManageMembers(t *testing.T) {
	assert.True(t, Owner().CanManageMembers())
	assert.True(t, Shared(LevelManage).CanManageMembers())
	assert.False(t, Shared(LevelWrite).CanManageMembers())
	assert.False(t, Shared(LevelRead).CanManageMembers())

	assert.True(t, Member(RoleOwner).CanManageMembers())
	assert.True(t, Member(RoleAdmin).CanManageMembers())
	assert.True(t, Member(RoleModerator).CanManageMembers())
	assert.False(t, Member(RoleMember).CanManageMembers())
	assert.False(t, None().CanManageMembers())
}

func TestStanding_Exists(t *testing.T) {
	assert.False(t, None().Exists())
	assert.True(t, Owner().Exists())
	assert.True(t, Shared(LevelRead).Exists())
	assert.True(t, Member(RoleMember).Exists())
}

func TestValidAccessLevel(t *testing.T) {
	assert.True(t, ValidAccessLevel("read"))
	assert.True(t, ValidAccessLevel("write"))
	assert.True(t, ValidAccessLevel("manage"))
	assert.False(t, ValidAccessLevel("owner"))
	assert.False(t, ValidAccessLevel(""))
}
