package store

import (
	"context"

	"github.com/reverie-ai/reverie/pkg/sqlstore"
	"github.com/reverie-ai/reverie/pkg/types"
)

type UserStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, appid, id string) (*types.User, error)
	GetByEmail(ctx context.Context, appid, email string) (*types.User, error)
	UpdateUserProfile(ctx context.Context, appid, id, userName, email, avatar string) error
	UpdateUserPassword(ctx context.Context, appid, id, salt, password string) error
	Delete(ctx context.Context, appid, id string) error
	ListUsers(ctx context.Context, opts types.ListUserOptions, page, pageSize uint64) ([]types.User, error)
	Total(ctx context.Context, opts types.ListUserOptions) (int64, error)
}

type AccessTokenStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.AccessToken) error
	GetAccessToken(ctx context.Context, appid, token string) (*types.AccessToken, error)
	Delete(ctx context.Context, appid, userID string, id int64) error
	DeleteByToken(ctx context.Context, appid, token string) error
	ListAccessTokens(ctx context.Context, appid, userID string, page, pageSize uint64) ([]types.AccessToken, error)
	ClearUserTokens(ctx context.Context, appid, userID string) error
}

// UserGlobalRoleStore 全局用户角色存储接口
type UserGlobalRoleStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.UserGlobalRole) error
	GetUserRole(ctx context.Context, appid, userID string) (*types.UserGlobalRole, error)
	UpdateUserRole(ctx context.Context, appid, userID, role string) error
	Delete(ctx context.Context, appid, userID string) error
	ListUsersByRole(ctx context.Context, opts types.ListUserGlobalRoleOptions, page, pageSize uint64) ([]types.UserGlobalRole, error)
}

// JournalArchiveStore moves whole per-identity collections across the
// durability boundary. Drivers translate the structured key into their own
// addressing and must hand back timestamps exactly as stored.
//
// Load returns an empty collection both when nothing is stored and when the
// stored payload no longer parses; a malformed archive is logged and treated
// as absent rather than wedging the owning session. Errors are reserved for
// connectivity-class failures.
type JournalArchiveStore interface {
	Load(ctx context.Context, key types.CollectionKey) (types.JournalCollection, error)
	Save(ctx context.Context, key types.CollectionKey, collection types.JournalCollection) error
	Delete(ctx context.Context, key types.CollectionKey) error
}
