package srv_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-ai/reverie/app/core/srv"
	"github.com/reverie-ai/reverie/pkg/security"
	"github.com/reverie-ai/reverie/pkg/types"
)

func claimsWithRole(userID, role string) security.TokenClaims {
	return security.NewTokenClaims("reverie", "reverie", userID, role, time.Now().Add(time.Hour).Unix())
}

func TestCheckPermission(t *testing.T) {
	rbac := srv.SetupRBACSrv()

	assert.True(t, rbac.CheckPermission(srv.RoleAdmin, srv.PermissionAdmin))
	// 管理者继承普通用户的权限
	assert.True(t, rbac.CheckPermission(srv.RoleAdmin, srv.PermissionMember))
	assert.True(t, rbac.CheckPermission(srv.RoleMember, srv.PermissionMember))
	assert.False(t, rbac.CheckPermission(srv.RoleMember, srv.PermissionAdmin))
	assert.False(t, rbac.CheckPermission("", srv.PermissionMember))
}

// The role ids persisted in reverie_user_global_role feed CheckPermission
// directly, the two constant sets must stay aligned.
func TestStoredRolesMatchRBACRoles(t *testing.T) {
	assert.Equal(t, types.GlobalRoleAdmin, srv.RoleAdmin)
	assert.Equal(t, types.GlobalRoleMember, srv.RoleMember)
}

func TestCheckOwnership(t *testing.T) {
	rbac := srv.SetupRBACSrv()

	resource := srv.NewRolerWithLazyload(func() (string, error) {
		return "user-1", nil
	})

	// 管理员无需是资源归属人
	require.Nil(t, rbac.Check(claimsWithRole("user-2", srv.RoleAdmin), resource, srv.PermissionAdmin))

	// 普通用户只能操作自己的资源
	require.Nil(t, rbac.Check(claimsWithRole("user-1", srv.RoleMember), resource, srv.PermissionAdmin))

	err := rbac.Check(claimsWithRole("user-2", srv.RoleMember), resource, srv.PermissionAdmin)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.GetCode())
}
