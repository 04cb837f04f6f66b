package boltstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/reverie-ai/reverie/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "archive.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := types.JournalKey("user-1")

	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	collection := types.JournalCollection{
		{
			ID:    "e1",
			Title: "Morning pages",
			Date:  ts,
			Conversation: []types.Turn{
				{ID: "t1", Sender: types.TURN_SENDER_USER, Text: "I feel tired", Timestamp: ts},
			},
			LastMessagePreview: "I feel tired",
		},
	}

	require.NoError(t, s.Save(ctx, key, collection))

	loaded, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, collection[0].ID, loaded[0].ID)
	assert.True(t, collection[0].Date.Equal(loaded[0].Date))
	assert.True(t, collection[0].Conversation[0].Timestamp.Equal(loaded[0].Conversation[0].Timestamp))
}

func TestBoltStoreLoadMissing(t *testing.T) {
	s := newTestStore(t)

	loaded, err := s.Load(context.Background(), types.JournalKey("nobody"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestBoltStoreLoadMalformedPayload(t *testing.T) {
	s := newTestStore(t)
	key := types.JournalKey("user-1")

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(key.Namespace))
		if err != nil {
			return err
		}
		return b.Put([]byte(key.Identity), []byte("{not json"))
	})
	require.NoError(t, err)

	loaded, err := s.Load(context.Background(), key)
	require.NoError(t, err, "malformed payloads are swallowed, not propagated")
	assert.Empty(t, loaded)
}

func TestBoltStoreDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := types.JournalKey("user-1")

	require.NoError(t, s.Save(ctx, key, types.JournalCollection{{ID: "e1"}}))
	require.NoError(t, s.Delete(ctx, key))

	loaded, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// deleting an identity that was never stored is a no-op
	require.NoError(t, s.Delete(ctx, types.JournalKey("nobody")))
}

func TestBoltStorePartitionsByIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, types.JournalKey("alice"), types.JournalCollection{{ID: "a"}}))
	require.NoError(t, s.Save(ctx, types.JournalKey("bob"), types.JournalCollection{{ID: "b"}}))

	fromAlice, err := s.Load(ctx, types.JournalKey("alice"))
	require.NoError(t, err)
	require.Len(t, fromAlice, 1)
	assert.Equal(t, "a", fromAlice[0].ID)

	raw, err := json.Marshal(fromAlice)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"b"`)
}
