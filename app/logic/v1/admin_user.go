package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/app/core/srv"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/types"
)

// AdminUserLogic 管理端用户管理，调用方需先通过 admin 权限校验
type AdminUserLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewAdminUserLogic(ctx context.Context, core *core.Core) *AdminUserLogic {
	l := &AdminUserLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}

	return l
}

type AdminUserList struct {
	Users []UserBaseInfo `json:"users"`
	Total int64          `json:"total"`
}

func (l *AdminUserLogic) ListUsers(page, pageSize uint64) (*AdminUserList, error) {
	appid := l.GetUserInfo().Appid
	opts := types.ListUserOptions{Appid: appid}

	users, err := l.core.Store().UserStore().ListUsers(l.ctx, opts, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AdminUserLogic.ListUsers.UserStore.ListUsers", i18n.ERROR_INTERNAL, err)
	}

	total, err := l.core.Store().UserStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("AdminUserLogic.ListUsers.UserStore.Total", i18n.ERROR_INTERNAL, err)
	}

	roles, err := l.core.Store().UserGlobalRoleStore().ListUsersByRole(l.ctx, types.ListUserGlobalRoleOptions{Appid: appid}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AdminUserLogic.ListUsers.UserGlobalRoleStore.ListUsersByRole", i18n.ERROR_INTERNAL, err)
	}
	roleByUser := lo.SliceToMap(roles, func(item types.UserGlobalRole) (string, string) {
		return item.UserID, item.Role
	})

	result := &AdminUserList{Total: total}
	for _, user := range users {
		info := UserBaseInfo{
			ID:         user.ID,
			Appid:      user.Appid,
			Name:       user.Name,
			Avatar:     user.Avatar,
			Email:      user.Email,
			Source:     user.Source,
			UpdatedAt:  user.UpdatedAt,
			CreatedAt:  user.CreatedAt,
			SystemRole: types.GlobalRoleMember,
		}
		if role, ok := roleByUser[user.ID]; ok {
			info.SystemRole = role
		}
		result.Users = append(result.Users, info)
	}

	return result, nil
}

func (l *AdminUserLogic) UpdateUserRole(userID, role string) error {
	if role != types.GlobalRoleAdmin && role != types.GlobalRoleMember {
		return errors.New("AdminUserLogic.UpdateUserRole.role.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	if err := l.Identification(srv.NewRolerWithLazyload(func() (string, error) {
		return userID, nil
	}), srv.PermissionAdmin); err != nil {
		return errors.Trace("AdminUserLogic.UpdateUserRole.Identification", err)
	}

	appid := l.GetUserInfo().Appid
	existing, err := l.core.Store().UserGlobalRoleStore().GetUserRole(l.ctx, appid, userID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("AdminUserLogic.UpdateUserRole.UserGlobalRoleStore.GetUserRole", i18n.ERROR_INTERNAL, err)
	}

	if existing == nil {
		err = l.core.Store().UserGlobalRoleStore().Create(l.ctx, types.UserGlobalRole{
			UserID:    userID,
			Appid:     appid,
			Role:      role,
			CreatedAt: time.Now().Unix(),
			UpdatedAt: time.Now().Unix(),
		})
	} else {
		err = l.core.Store().UserGlobalRoleStore().UpdateUserRole(l.ctx, appid, userID, role)
	}
	if err != nil {
		return errors.New("AdminUserLogic.UpdateUserRole.UserGlobalRoleStore.save", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// DeleteUser removes the account with everything it owns: tokens, role,
// the in-memory partition and the archived collection.
func (l *AdminUserLogic) DeleteUser(userID string) error {
	if err := l.Identification(srv.NewRolerWithLazyload(func() (string, error) {
		return userID, nil
	}), srv.PermissionAdmin); err != nil {
		return errors.Trace("AdminUserLogic.DeleteUser.Identification", err)
	}

	appid := l.GetUserInfo().Appid

	user, err := l.core.Store().UserStore().GetUser(l.ctx, appid, userID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("AdminUserLogic.DeleteUser.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}
	if user == nil {
		return errors.New("AdminUserLogic.DeleteUser.UserStore.GetUser.nil", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().AccessTokenStore().ClearUserTokens(ctx, appid, userID); err != nil {
			return errors.New("AdminUserLogic.DeleteUser.AccessTokenStore.ClearUserTokens", i18n.ERROR_INTERNAL, err)
		}
		if err := l.core.Store().UserGlobalRoleStore().Delete(ctx, appid, userID); err != nil {
			return errors.New("AdminUserLogic.DeleteUser.UserGlobalRoleStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		if err := l.core.Store().UserStore().Delete(ctx, appid, userID); err != nil {
			return errors.New("AdminUserLogic.DeleteUser.UserStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.core.Journal().Evict(userID)
	if err := l.core.Journal().Purge(l.ctx, userID); err != nil {
		// 行数据已删除，归档清理失败只记录
		return errors.New("AdminUserLogic.DeleteUser.Journal.Purge", i18n.ERROR_INTERNAL, err)
	}

	return nil
}
