package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"admin", RoleAdmin},
		{"developer", RoleDeveloper},
		{"product", RoleProduct},
		{"", RoleNone},
		{"owner", RoleNone},
		{"ADMIN", RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.input))
		})
	}
}

func TestRole_Assignable(t *testing.T) {
	assert.True(t, RoleAdmin.Assignable())
	assert.True(t, RoleDeveloper.Assignable())
	assert.True(t, RoleProduct.Assignable())
	assert.False(t, RoleNone.Assignable())
	assert.False(t, Role("owner").Assignable())
}

func TestRole_CanManageGoals(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageGoals())
	assert.True(t, RoleProduct.CanManageGoals())
	assert.False(t, RoleDeveloper.CanManageGoals())
	assert.False(t, RoleNone.CanManageGoals())
}

func TestRole_IsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleProduct.IsAdmin())
	assert.False(t, RoleDeveloper.IsAdmin())
}
