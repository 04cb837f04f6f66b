package srv

import (
	"net/http"

	"github.com/mikespook/gorbac/v2"

	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
)

const (
	// 定义角色ID
	RoleAdmin  = "role-admin"
	RoleMember = "role-member"

	// 定义权限ID
	PermissionAdmin  = "admin"
	PermissionMember = "member"
)

func SetupRBACSrv() *RBACSrv {
	rbac := gorbac.New()

	pAdmin := gorbac.NewStdPermission(PermissionAdmin)
	pMember := gorbac.NewStdPermission(PermissionMember)

	roleAdmin := gorbac.NewStdRole(RoleAdmin)
	roleAdmin.Assign(pAdmin)

	roleMember := gorbac.NewStdRole(RoleMember)
	roleMember.Assign(pMember)

	rbac.Add(roleAdmin)
	rbac.Add(roleMember)

	// 管理者继承普通用户的权限
	rbac.SetParent(RoleAdmin, RoleMember)

	return &RBACSrv{
		rbac: rbac,
	}
}

type RBACSrv struct {
	rbac *gorbac.RBAC
}

// CheckPermission 检查角色是否有某权限
func (a *RBACSrv) CheckPermission(roleID, permissionID string) bool {
	return a.rbac.IsGranted(roleID, gorbac.NewStdPermission(permissionID), nil)
}

type RoleObject interface {
	GetUser() (string, error)
}

type LazyRoler struct {
	f      func() (string, error)
	userID string
}

func (s *LazyRoler) GetUser() (string, error) {
	if s.userID == "" {
		var err error
		if s.userID, err = s.f(); err != nil {
			return "", err
		}
	}
	return s.userID, nil
}

func NewRolerWithLazyload(f func() (string, error)) *LazyRoler {
	return &LazyRoler{
		f: f,
	}
}

type RoleUser interface {
	GetRole() string
	GetUser() string
}

// 管理端用户只检测权限，普通用户需检测资源是否属于该用户
func (a *RBACSrv) Check(user RoleUser, obj RoleObject, permissionID string) *errors.CustomizedError {
	if !a.CheckPermission(user.GetRole(), permissionID) {
		resourceUser, err := obj.GetUser()
		if err != nil {
			return errors.Trace("RBACSrv.Check", err)
		}
		if user.GetUser() != resourceUser {
			return errors.New("RBACSrv.Check.ClientUser", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
		}
	}
	return nil
}
