package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"kritika/internal/app/kritika/entity"
)

func TestIsSafeMethod(t *testing.T) {
	assert.True(t, IsSafeMethod(http.MethodGet))
	assert.True(t, IsSafeMethod(http.MethodHead))
	assert.True(t, IsSafeMethod(http.MethodOptions))
	assert.False(t, IsSafeMethod(http.MethodPost))
	assert.False(t, IsSafeMethod(http.MethodPatch))
	assert.False(t, IsSafeMethod(http.MethodDelete))
}

func TestCanWriteCatalog(t *testing.T) {
	assert.False(t, CanWriteCatalog(nil))
	assert.False(t, CanWriteCatalog(&entity.User{Role: entity.RoleUser}))
	assert.False(t, CanWriteCatalog(&entity.User{Role: entity.RoleModerator}))
	assert.True(t, CanWriteCatalog(&entity.User{Role: entity.RoleAdmin}))
	// Служебные флаги дают административный доступ независимо от роли
	assert.True(t, CanWriteCatalog(&entity.User{Role: entity.RoleUser, IsSuperuser: true}))
	assert.True(t, CanWriteCatalog(&entity.User{Role: entity.RoleUser, IsStaff: true}))
}

func TestCanModifyContent(t *testing.T) {
	author := &entity.User{ID: 1, Role: entity.RoleUser}
	other := &entity.User{ID: 2, Role: entity.RoleUser}
	moderator := &entity.User{ID: 3, Role: entity.RoleModerator}
	admin := &entity.User{ID: 4, Role: entity.RoleAdmin}

	assert.False(t, CanModifyContent(nil, 1))
	assert.True(t, CanModifyContent(author, 1))
	assert.False(t, CanModifyContent(other, 1))
	assert.True(t, CanModifyContent(moderator, 1))
	assert.True(t, CanModifyContent(admin, 1))
}

func TestCanManageUsers(t *testing.T) {
	assert.False(t, CanManageUsers(nil))
	assert.False(t, CanManageUsers(&entity.User{Role: entity.RoleModerator}))
	assert.True(t, CanManageUsers(&entity.User{Role: entity.RoleAdmin}))
	assert.True(t, CanManageUsers(&entity.User{Role: entity.RoleUser, IsSuperuser: true}))
}
