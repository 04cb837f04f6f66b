package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/pkg/auth"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/security"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

// logic for unlogin
type UserLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewUserLogic(ctx context.Context, core *core.Core) *UserLogic {
	l := &UserLogic{
		ctx:  ctx,
		core: core,
	}

	return l
}

func (l *UserLogic) Register(appid, name, email, password string) (string, error) {
	exist, err := l.core.Store().UserStore().GetByEmail(l.ctx, appid, email)
	if err != nil && err != sql.ErrNoRows {
		return "", errors.New("UserLogic.Register.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return "", errors.New("UserLogic.Register.email.exist", i18n.ERROR_EMAIL_ALREADY_REGISTERED, nil).Code(http.StatusConflict)
	}

	salt := utils.RandomStr(10)
	userID := utils.GenUniqIDStr()

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		err := l.core.Store().UserStore().Create(ctx, types.User{
			ID:        userID,
			Appid:     appid,
			Name:      name,
			Email:     email,
			Avatar:    l.core.Cfg().Site.DefaultAvatar,
			Salt:      salt,
			Source:    types.USER_SOURCE_EMAIL,
			Password:  utils.GenUserPassword(salt, password),
			UpdatedAt: time.Now().Unix(),
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			return errors.New("UserLogic.Register.UserStore.Create", i18n.ERROR_INTERNAL, err)
		}

		err = l.core.Store().UserGlobalRoleStore().Create(ctx, types.UserGlobalRole{
			UserID:    userID,
			Appid:     appid,
			Role:      types.DefaultGlobalRole,
			CreatedAt: time.Now().Unix(),
			UpdatedAt: time.Now().Unix(),
		})
		if err != nil {
			return errors.New("UserLogic.Register.UserGlobalRoleStore.Create", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})

	if err != nil {
		return "", err
	}

	return userID, nil
}

type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (l *UserLogic) Login(appid, email, password string) (*LoginResult, error) {
	user, err := l.core.Store().UserStore().GetByEmail(l.ctx, appid, email)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.Login.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}

	if user == nil || user.Password != utils.GenUserPassword(user.Salt, password) {
		return nil, errors.New("UserLogic.Login.Password.check", i18n.ERROR_INVALID_ACCOUNT, err).Code(http.StatusBadRequest)
	}

	token, err := l.issueToken(user, "login")
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// FederatedLogin verifies an HS256 token minted by the external identity
// provider, auto-registering the account on first sight.
func (l *UserLogic) FederatedLogin(appid, idToken string) (*LoginResult, error) {
	secret := l.core.Cfg().Security.FederatedSecret
	if secret == "" {
		return nil, errors.New("UserLogic.FederatedLogin.secret.unset", i18n.ERROR_FEDERATED_TOKEN_INVALID, nil).Code(http.StatusBadRequest)
	}

	claims, err := security.VerifyFederatedToken(idToken, []byte(secret))
	if err != nil {
		return nil, errors.New("UserLogic.FederatedLogin.VerifyFederatedToken", i18n.ERROR_FEDERATED_TOKEN_INVALID, err).Code(http.StatusUnauthorized)
	}

	user, err := l.core.Store().UserStore().GetByEmail(l.ctx, appid, claims.Email)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.FederatedLogin.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}

	if user == nil {
		salt := utils.RandomStr(10)
		user = &types.User{
			ID:        utils.GenUniqIDStr(),
			Appid:     appid,
			Name:      claims.Email,
			Email:     claims.Email,
			Avatar:    l.core.Cfg().Site.DefaultAvatar,
			Salt:      salt,
			Source:    types.USER_SOURCE_FEDERATED,
			Password:  utils.GenUserPassword(salt, utils.RandomStr(32)),
			UpdatedAt: time.Now().Unix(),
			CreatedAt: time.Now().Unix(),
		}

		err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
			if err := l.core.Store().UserStore().Create(ctx, *user); err != nil {
				return errors.New("UserLogic.FederatedLogin.UserStore.Create", i18n.ERROR_INTERNAL, err)
			}
			if err := l.core.Store().UserGlobalRoleStore().Create(ctx, types.UserGlobalRole{
				UserID:    user.ID,
				Appid:     appid,
				Role:      types.DefaultGlobalRole,
				CreatedAt: time.Now().Unix(),
				UpdatedAt: time.Now().Unix(),
			}); err != nil {
				return errors.New("UserLogic.FederatedLogin.UserGlobalRoleStore.Create", i18n.ERROR_INTERNAL, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	token, err := l.issueToken(user, "federated login")
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

func (l *UserLogic) issueToken(user *types.User, info string) (string, error) {
	accessToken := utils.MD5(user.ID + utils.GenRandomID())
	expiresAt := time.Now().AddDate(0, 0, l.core.Cfg().Security.TokenTTLDaysOrDefault()).Unix()

	err := l.core.Store().AccessTokenStore().Create(l.ctx, types.AccessToken{
		UserID:    user.ID,
		Appid:     user.Appid,
		Token:     accessToken,
		Version:   types.DEFAULT_ACCESS_TOKEN_VERSION,
		Info:      info,
		CreatedAt: time.Now().Unix(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", errors.New("UserLogic.issueToken.AccessTokenStore.Create", i18n.ERROR_INTERNAL, err)
	}

	// cache miss后中间件会回源数据库，缓存失败不阻塞登录
	if err = auth.SaveTokenToCache(l.ctx, accessToken, types.UserTokenMeta{
		Appid:    user.Appid,
		UserID:   user.ID,
		ExpireAt: expiresAt,
	}, l.core.Cache(), time.Hour*24*7); err != nil {
		slog.Warn("token cache write failed", slog.String("error", err.Error()))
	}

	return accessToken, nil
}

type UserBaseInfo struct {
	ID         string `json:"id" db:"id"`                 // 用户ID，主键
	Appid      string `json:"appid" db:"appid"`           // 租户id
	Name       string `json:"name" db:"name"`             // 用户名
	Avatar     string `json:"avatar" db:"avatar"`         // 用户头像URL
	Email      string `json:"email" db:"email"`           // 用户邮箱，唯一约束
	Source     string `json:"-" db:"source"`              // 用户注册来源
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"` // 更新时间，Unix时间戳
	CreatedAt  int64  `json:"created_at" db:"created_at"` // 创建时间，Unix时间戳
	SystemRole string `json:"system_role"`                // 用户全局角色
}

func (l *UserLogic) GetUser(appid, id string) (*UserBaseInfo, error) {
	user, err := l.core.Store().UserStore().GetUser(l.ctx, appid, id)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.GetUser.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}

	if user == nil {
		return nil, errors.New("UserLogic.GetUser.UserStore.GetUser.nil", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	role, err := l.core.Store().UserGlobalRoleStore().GetUserRole(l.ctx, appid, id)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.GetUser.UserGlobalRoleStore.GetUserRole", i18n.ERROR_INTERNAL, err)
	}

	userInfo := &UserBaseInfo{
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

	if role != nil {
		userInfo.SystemRole = role.Role
	}

	return userInfo, nil
}

type AuthedUserLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewAuthedUserLogic(ctx context.Context, core *core.Core) *AuthedUserLogic {
	l := &AuthedUserLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}

	return l
}

func (l *AuthedUserLogic) Me() (*UserBaseInfo, error) {
	claims := l.GetUserInfo()
	return NewUserLogic(l.ctx, l.core).GetUser(claims.Appid, claims.User)
}

func (l *AuthedUserLogic) UpdateUserProfile(userName, email, avatar string) error {
	err := l.core.Store().UserStore().UpdateUserProfile(l.ctx, l.GetUserInfo().Appid, l.GetUserInfo().User, userName, email, avatar)
	if err != nil {
		return errors.New("AuthedUserLogic.UpdateUserProfile.UserStore.UpdateUserProfile", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// Logout revokes the presented token and drops the identity's in-memory
// journal partition so the next sign-in re-keys from the archive.
func (l *AuthedUserLogic) Logout(tokenValue string) error {
	claims := l.GetUserInfo()

	if err := l.core.Store().AccessTokenStore().DeleteByToken(l.ctx, claims.Appid, tokenValue); err != nil {
		return errors.New("AuthedUserLogic.Logout.AccessTokenStore.DeleteByToken", i18n.ERROR_INTERNAL, err)
	}

	if err := auth.DeleteTokenFromCache(l.ctx, tokenValue, l.core.Cache()); err != nil {
		return errors.Trace("AuthedUserLogic.Logout.DeleteTokenFromCache", err)
	}

	l.core.Journal().Evict(claims.User)
	return nil
}
