package boltstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/reverie-ai/reverie/pkg/types"
)

// BoltStore archives journal collections into a local bbolt file: one
// bucket per namespace, one key per identity, the collection as a JSON
// value. It is the single-node stand-in for the Postgres archive, the
// local-file analog of the browser storage slot this product grew out of.
type BoltStore struct {
	db *bolt.DB
}

func MustSetup(path string) *BoltStore {
	s, err := New(path)
	if err != nil {
		panic(err)
	}
	return s
}

func New(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load returns an empty collection when the bucket or key does not exist,
// and also when the stored value no longer parses. A malformed archive is
// logged and treated as absent so the owning session still starts.
func (s *BoltStore) Load(ctx context.Context, key types.CollectionKey) (types.JournalCollection, error) {
	collection := types.JournalCollection{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(key.Namespace))
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(key.Identity))
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, &collection); err != nil {
			slog.Warn("journal archive payload is malformed, treating as empty",
				slog.String("identity", key.Identity),
				slog.String("namespace", key.Namespace),
				slog.String("error", err.Error()))
			collection = types.JournalCollection{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}

// Save replaces the identity's slot with the given snapshot.
func (s *BoltStore) Save(ctx context.Context, key types.CollectionKey, collection types.JournalCollection) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(key.Namespace))
		if err != nil {
			return err
		}
		return b.Put([]byte(key.Identity), raw)
	})
}

func (s *BoltStore) Delete(ctx context.Context, key types.CollectionKey) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(key.Namespace))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key.Identity))
	})
}
