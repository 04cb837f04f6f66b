package types

import (
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/reverie-ai/reverie/pkg/security"
)

type User struct {
	ID        string `json:"id" db:"id"`
	Appid     string `json:"appid" db:"appid"`
	Name      string `json:"name" db:"name"`
	Avatar    string `json:"avatar" db:"avatar"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"-" db:"password"`
	Salt      string `json:"-" db:"salt"`
	Source    string `json:"source" db:"source"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

const (
	USER_SOURCE_EMAIL     = "email"
	USER_SOURCE_FEDERATED = "federated"
)

type UpdateUserData struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Email  string `json:"email"`
}

type ListUserOptions struct {
	Appid  string
	Email  string
	Source string
	IDs    []string
}

func (opts ListUserOptions) Apply(query *sq.SelectBuilder) {
	if opts.Appid != "" {
		*query = query.Where(sq.Eq{"appid": opts.Appid})
	}
	if opts.Email != "" {
		*query = query.Where(sq.Eq{"email": opts.Email})
	}
	if opts.Source != "" {
		*query = query.Where(sq.Eq{"source": opts.Source})
	}
	if len(opts.IDs) > 0 {
		*query = query.Where(sq.Eq{"id": opts.IDs})
	}
}

const (
	DEFAULT_ACCESS_TOKEN_VERSION = "v1"
)

type AccessToken struct {
	ID        int64  `json:"id" db:"id"`
	Appid     string `json:"appid" db:"appid"`
	UserID    string `json:"user_id" db:"user_id"`
	Token     string `json:"token" db:"token"`
	Version   string `json:"version" db:"version"` // token存储格式的版本号
	Info      string `json:"info" db:"info"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
}

func (s *AccessToken) TokenClaims() (security.TokenClaims, error) {
	if s.Version != "" && s.Version != DEFAULT_ACCESS_TOKEN_VERSION {
		return security.TokenClaims{}, errors.New("unknown access token version")
	}
	claim := security.NewTokenClaims(s.Appid, "reverie", s.UserID, "", s.ExpiresAt)
	return claim, nil
}

// UserGlobalRole 全局用户角色表结构
type UserGlobalRole struct {
	ID        int64  `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	Appid     string `json:"appid" db:"appid"`
	Role      string `json:"role" db:"role"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type ListUserGlobalRoleOptions struct {
	UserID string
	Appid  string
	Role   string
}

func (opts ListUserGlobalRoleOptions) Apply(query *sq.SelectBuilder) {
	if opts.UserID != "" {
		*query = query.Where(sq.Eq{"user_id": opts.UserID})
	}
	if opts.Appid != "" {
		*query = query.Where(sq.Eq{"appid": opts.Appid})
	}
	if opts.Role != "" {
		*query = query.Where(sq.Eq{"role": opts.Role})
	}
}

// UserTokenMeta 登录token的缓存结构
type UserTokenMeta struct {
	Appid    string `json:"appid"`
	UserID   string `json:"user_id"`
	ExpireAt int64  `json:"expire_at"`
}

const (
	GlobalRoleAdmin  = "role-admin"
	GlobalRoleMember = "role-member"
)

const DefaultGlobalRole = GlobalRoleMember
