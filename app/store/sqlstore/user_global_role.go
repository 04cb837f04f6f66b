package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/reverie-ai/reverie/pkg/register"
	"github.com/reverie-ai/reverie/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.UserGlobalRoleStore = NewUserGlobalRoleStore(provider)
	})
}

// UserGlobalRoleStore 处理reverie_user_global_role表的操作
type UserGlobalRoleStore struct {
	CommonFields
}

// NewUserGlobalRoleStore 创建新的UserGlobalRoleStore实例
func NewUserGlobalRoleStore(provider SqlProviderAchieve) *UserGlobalRoleStore {
	repo := &UserGlobalRoleStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_USER_GLOBAL_ROLE)
	repo.SetAllColumns("id", "user_id", "appid", "role", "created_at", "updated_at")
	return repo
}

// Create 创建角色记录
func (s *UserGlobalRoleStore) Create(ctx context.Context, data types.UserGlobalRole) error {
	query := sq.Insert(s.GetTable()).
		Columns("user_id", "appid", "role", "created_at", "updated_at").
		Values(data.UserID, data.Appid, data.Role, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// GetUserRole 获取用户的全局角色
func (s *UserGlobalRoleStore) GetUserRole(ctx context.Context, appid, userID string) (*types.UserGlobalRole, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"appid": appid, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.UserGlobalRole
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateUserRole 更新用户角色
func (s *UserGlobalRoleStore) UpdateUserRole(ctx context.Context, appid, userID, role string) error {
	query := sq.Update(s.GetTable()).
		Set("role", role).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"appid": appid, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Delete 删除用户角色记录
func (s *UserGlobalRoleStore) Delete(ctx context.Context, appid, userID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"appid": appid, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ListUsersByRole 按角色分页获取用户
func (s *UserGlobalRoleStore) ListUsersByRole(ctx context.Context, opts types.ListUserGlobalRoleOptions, page, pageSize uint64) ([]types.UserGlobalRole, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if page != 0 || pageSize != 0 {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.UserGlobalRole
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
