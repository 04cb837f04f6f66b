package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/reverie-ai/reverie/pkg/register"
	"github.com/reverie-ai/reverie/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.JournalArchiveStore = NewJournalArchiveStore(provider)
	})
}

// JournalArchiveStore 处理reverie_journal_archive表的操作
// One row per (namespace, identity), the whole collection serialized as a
// single JSON blob. Mirrors the browser-local storage slot the product
// started with.
type JournalArchiveStore struct {
	CommonFields
}

// NewJournalArchiveStore 创建新的JournalArchiveStore实例
func NewJournalArchiveStore(provider SqlProviderAchieve) *JournalArchiveStore {
	repo := &JournalArchiveStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_JOURNAL_ARCHIVE)
	repo.SetAllColumns("id", "namespace", "identity", "data", "updated_at", "created_at")
	return repo
}

// Load reads one identity's archived collection. Nothing stored and a
// payload that no longer parses both come back as an empty collection,
// the journal session must stay usable either way.
func (s *JournalArchiveStore) Load(ctx context.Context, key types.CollectionKey) (types.JournalCollection, error) {
	query := sq.Select("data").From(s.GetTable()).Where(sq.Eq{"namespace": key.Namespace, "identity": key.Identity})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var raw []byte
	if err = s.GetReplica(ctx).Get(&raw, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return types.JournalCollection{}, nil
		}
		return nil, err
	}

	var collection types.JournalCollection
	if err = json.Unmarshal(raw, &collection); err != nil {
		slog.Warn("journal archive payload is malformed, treating as empty",
			slog.String("identity", key.Identity),
			slog.String("namespace", key.Namespace),
			slog.String("error", err.Error()))
		return types.JournalCollection{}, nil
	}
	return collection, nil
}

// Save upserts the whole collection for one identity.
func (s *JournalArchiveStore) Save(ctx context.Context, key types.CollectionKey, collection types.JournalCollection) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	query := sq.Insert(s.GetTable()).
		Columns("namespace", "identity", "data", "updated_at", "created_at").
		Values(key.Namespace, key.Identity, string(raw), now, now).
		Suffix("ON CONFLICT (namespace, identity) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Delete drops the archived blob, used when an identity is purged.
func (s *JournalArchiveStore) Delete(ctx context.Context, key types.CollectionKey) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"namespace": key.Namespace, "identity": key.Identity})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
