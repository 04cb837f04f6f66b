package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-ai/reverie/pkg/types"
)

func newTestManager(archive Archive) *Manager {
	var seq int
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return NewManager(archive,
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("%04d", seq)
		}),
		WithClock(func() time.Time {
			return base.Add(time.Duration(seq) * time.Second)
		}),
	)
}

func userTurn(text string) types.Turn {
	return types.Turn{Sender: types.TURN_SENDER_USER, Text: text}
}

func assistantTurn(text string) types.Turn {
	return types.Turn{Sender: types.TURN_SENDER_ASSISTANT, Text: text}
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("hello world")}, "audio/alice/rec1.webm")
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)

	got, found := p.Get(entry.ID)
	require.True(t, found)
	assert.Equal(t, entry.Conversation, got.Conversation)
	assert.Equal(t, "audio/alice/rec1.webm", got.AudioRecordingRef)
	assert.False(t, got.Date.IsZero())

	// ids stay unique across creations
	seen := map[string]bool{entry.ID: true}
	for i := 0; i < 20; i++ {
		e, err := p.Create(ctx, []types.Turn{userTurn("more")}, "")
		require.NoError(t, err)
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestCreateRejectsEmptyConversation(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	_, err := p.Create(ctx, nil, "")
	assert.ErrorIs(t, err, ErrEmptyConversation)
	assert.Equal(t, 0, p.Len())
}

func TestTitleAndPreviewDerivation(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("I feel tired")}, "")
	require.NoError(t, err)
	assert.Equal(t, "I feel tired", entry.LastMessagePreview)
	assert.Equal(t, "I feel tired", entry.Title)

	require.NoError(t, p.Continue(ctx, entry.ID, []types.Turn{assistantTurn("Tell me more")}))
	got, found := p.Get(entry.ID)
	require.True(t, found)
	assert.Len(t, got.Conversation, 2)
	assert.Equal(t, "Tell me more", got.LastMessagePreview)

	// title keeps the leading five words of the first user turn
	long, err := p.Create(ctx, []types.Turn{userTurn("today was a very long day at the office")}, "")
	require.NoError(t, err)
	assert.Equal(t, "today was a very long", long.Title)

	// an entry opened by the assistant has no derivable title
	untitled, err := p.Create(ctx, []types.Turn{assistantTurn("How was your day?")}, "")
	require.NoError(t, err)
	assert.Empty(t, untitled.Title)
}

func TestPreviewTruncation(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	text := strings.Repeat("a", 200)
	entry, err := p.Create(ctx, []types.Turn{userTurn(text)}, "")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(entry.LastMessagePreview, "..."))
	assert.LessOrEqual(t, len([]rune(entry.LastMessagePreview)), PreviewMaxRunes+3)
}

func TestContinueUnknownIDLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("first")}, "")
	require.NoError(t, err)
	before := p.List()

	err = p.Continue(ctx, "nope", []types.Turn{assistantTurn("lost")})
	assert.ErrorIs(t, err, ErrEntryNotFound)

	after := p.List()
	assert.Equal(t, before, after)
	got, _ := p.Get(entry.ID)
	assert.Len(t, got.Conversation, 1)
}

func TestContinueZeroTurns(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("first")}, "")
	require.NoError(t, err)

	require.NoError(t, p.Continue(ctx, entry.ID, nil))
	assert.ErrorIs(t, p.Continue(ctx, "nope", nil), ErrEntryNotFound)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("quiet evening")}, "")
	require.NoError(t, err)

	require.NoError(t, p.Rename(ctx, entry.ID, "Evening reflections"))
	got, _ := p.Get(entry.ID)
	assert.Equal(t, "Evening reflections", got.Title)

	assert.ErrorIs(t, p.Rename(ctx, "nope", "x"), ErrEntryNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("bye")}, "")
	require.NoError(t, err)

	require.NoError(t, p.Delete(ctx, entry.ID))
	_, found := p.Get(entry.ID)
	assert.False(t, found)

	before := p.List()
	assert.ErrorIs(t, p.Delete(ctx, entry.ID), ErrEntryNotFound)
	assert.Equal(t, before, p.List())
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	first, err := p.Create(ctx, []types.Turn{userTurn("Walked the dog this morning")}, "")
	require.NoError(t, err)
	second, err := p.Create(ctx, []types.Turn{userTurn("Work was stressful")}, "")
	require.NoError(t, err)
	require.NoError(t, p.Continue(ctx, second.ID, []types.Turn{assistantTurn("What made it stressful?")}))

	// empty query returns everything in creation order
	all := p.Search("")
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	// case-insensitive, matches any turn of the conversation
	assert.Len(t, p.Search("DOG"), 1)
	assert.Equal(t, first.ID, p.Search("dog")[0].ID)
	assert.Len(t, p.Search("what made"), 1)
	assert.Empty(t, p.Search("holiday"))

	// idempotent for the same state
	assert.Equal(t, p.Search("stressful"), p.Search("stressful"))
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	p := newTestManager(NewMemoryArchive()).Partition(ctx, "alice")

	entry, err := p.Create(ctx, []types.Turn{userTurn("before")}, "")
	require.NoError(t, err)

	snapshot := p.List()
	snapTurns := snapshot[0].Conversation

	require.NoError(t, p.Continue(ctx, entry.ID, []types.Turn{assistantTurn("after")}))
	require.NoError(t, p.Rename(ctx, entry.ID, "changed"))

	// the snapshot taken before the mutations is untouched
	assert.Len(t, snapTurns, 1)
	assert.Equal(t, "before", snapTurns[0].Text)
	assert.NotEqual(t, "changed", snapshot[0].Title)
}

func TestArchiveRoundTripKeepsTimestamps(t *testing.T) {
	ctx := context.Background()
	archive := NewMemoryArchive()
	m := newTestManager(archive)

	p := m.Partition(ctx, "alice")
	entry, err := p.Create(ctx, []types.Turn{userTurn("persist me")}, "")
	require.NoError(t, err)

	// evicting and re-reading goes through the archive
	m.Evict("alice")
	reloaded := m.Partition(ctx, "alice")

	got, found := reloaded.Get(entry.ID)
	require.True(t, found)
	assert.True(t, entry.Date.Equal(got.Date))
	assert.True(t, entry.Conversation[0].Timestamp.Equal(got.Conversation[0].Timestamp))
}

func TestPartitionIsolation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(NewMemoryArchive())

	alice := m.Partition(ctx, "alice")
	bob := m.Partition(ctx, "bob")

	_, err := alice.Create(ctx, []types.Turn{userTurn("alice only")}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, alice.Len())
	assert.Equal(t, 0, bob.Len())
	assert.Empty(t, bob.Search("alice"))
}

type failingArchive struct {
	loadErr error
	saveErr error
}

func (a *failingArchive) Load(ctx context.Context, key types.CollectionKey) (types.JournalCollection, error) {
	return nil, a.loadErr
}

func (a *failingArchive) Save(ctx context.Context, key types.CollectionKey, collection types.JournalCollection) error {
	return a.saveErr
}

func (a *failingArchive) Delete(ctx context.Context, key types.CollectionKey) error {
	return nil
}

func TestArchiveFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	broken := &failingArchive{
		loadErr: errors.New("disk on fire"),
		saveErr: errors.New("disk still on fire"),
	}

	var loadFails, saveFails int
	m := NewManager(broken, WithHooks(Hooks{
		ArchiveLoadFailed: func(string) { loadFails++ },
		ArchiveSaveFailed: func(string) { saveFails++ },
	}))

	// load failure degrades into an empty, usable partition
	p := m.Partition(ctx, "alice")
	assert.Equal(t, 1, loadFails)
	assert.Equal(t, 0, p.Len())

	// save failure never blocks the in-memory mutation
	entry, err := p.Create(ctx, []types.Turn{userTurn("still here")}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, saveFails)

	got, found := p.Get(entry.ID)
	require.True(t, found)
	assert.Equal(t, "still here", got.Conversation[0].Text)
}

func TestEvictIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	m := NewManager(NewMemoryArchive(), WithClock(func() time.Time { return now }))

	m.Partition(ctx, "alice")
	m.Partition(ctx, "bob")
	require.Equal(t, 2, m.PartitionCount())

	now = now.Add(45 * time.Minute)
	m.Partition(ctx, "bob") // keep bob fresh

	evicted := m.EvictIdle(30 * time.Minute)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.PartitionCount())
}
