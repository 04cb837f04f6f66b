package journal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

var (
	ErrEntryNotFound     = errors.New("journal entry not found")
	ErrEmptyConversation = errors.New("conversation must not be empty")
)

const (
	// PreviewMaxRunes bounds the derived list preview.
	PreviewMaxRunes = 80
	// TitleMaxWords is how many leading words of the first user turn make
	// up a derived title.
	TitleMaxWords = 5
)

// Archive is the durability boundary the manager persists through. It is a
// pure translation layer with no state of its own; sqlstore, boltstore and
// the in-memory archive all satisfy it.
type Archive interface {
	Load(ctx context.Context, key types.CollectionKey) (types.JournalCollection, error)
	Save(ctx context.Context, key types.CollectionKey, collection types.JournalCollection) error
	Delete(ctx context.Context, key types.CollectionKey) error
}

// Hooks let the owner observe archive failures without the manager knowing
// about metrics. Both sides swallow the error itself.
type Hooks struct {
	ArchiveLoadFailed func(identity string)
	ArchiveSaveFailed func(identity string)
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.genID = gen }
}

func WithHooks(h Hooks) Option {
	return func(m *Manager) { m.hooks = h }
}

// Manager owns every in-memory journal partition. One partition per
// identity, loaded wholesale from the archive on first access and evicted
// on sign-out or idleness. The manager is the only writer of its archive.
type Manager struct {
	archive    Archive
	partitions cmap.ConcurrentMap[string, *Partition]
	hooks      Hooks
	now        func() time.Time
	genID      func() string
}

func NewManager(archive Archive, opts ...Option) *Manager {
	m := &Manager{
		archive:    archive,
		partitions: cmap.New[*Partition](),
		now:        time.Now,
		genID:      utils.GenUniqIDStr,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Partition returns the identity's partition, loading its collection from
// the archive on first access. Load failures are swallowed into an empty
// collection so a session always starts usable; memory is the source of
// truth from then on.
func (m *Manager) Partition(ctx context.Context, identity string) *Partition {
	if p, ok := m.partitions.Get(identity); ok {
		p.touch(m.now())
		return p
	}

	p := &Partition{
		identity: identity,
		key:      types.JournalKey(identity),
		mgr:      m,
	}

	collection, err := m.archive.Load(ctx, p.key)
	if err != nil {
		slog.Warn("failed to load journal archive, starting empty",
			slog.String("identity", identity),
			slog.String("error", err.Error()))
		if m.hooks.ArchiveLoadFailed != nil {
			m.hooks.ArchiveLoadFailed(identity)
		}
		collection = types.JournalCollection{}
	}
	p.entries = collection
	p.touch(m.now())

	// another request may have raced us here, keep whoever got in first
	if !m.partitions.SetIfAbsent(identity, p) {
		p, _ = m.partitions.Get(identity)
	}
	return p
}

// Evict drops one identity's partition. The next Partition call reloads
// from the archive; callers use it on sign-out and identity purges.
func (m *Manager) Evict(identity string) {
	m.partitions.Remove(identity)
}

// Purge deletes the identity's archived collection. Unlike mutation-path
// saves this error propagates, a purge that silently fails would leave
// orphaned data behind.
func (m *Manager) Purge(ctx context.Context, identity string) error {
	m.partitions.Remove(identity)
	return m.archive.Delete(ctx, types.JournalKey(identity))
}

// EvictIdle drops every partition untouched for longer than maxIdle and
// reports how many were evicted.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	deadline := m.now().Add(-maxIdle).UnixNano()
	var evicted int
	for _, identity := range m.partitions.Keys() {
		p, ok := m.partitions.Get(identity)
		if !ok {
			continue
		}
		if p.lastUsed.Load() < deadline {
			m.partitions.Remove(identity)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) PartitionCount() int {
	return m.partitions.Count()
}

// Partition holds one identity's collection exclusively. Mutations are
// serialized by its mutex and replace the slice reference instead of
// editing in place, so snapshots handed out by reads never change.
type Partition struct {
	identity string
	key      types.CollectionKey
	mgr      *Manager

	mu       sync.Mutex
	entries  types.JournalCollection
	lastUsed atomic.Int64
}

func (p *Partition) Identity() string {
	return p.identity
}

func (p *Partition) touch(now time.Time) {
	p.lastUsed.Store(now.UnixNano())
}

// Create assigns a fresh id, stamps the creation instant, derives the
// title and preview, appends the entry and persists the collection
// wholesale. A failed archive write is a warning, not an error: the entry
// lives in memory either way.
func (p *Partition) Create(ctx context.Context, conversation []types.Turn, audioRef string) (types.JournalEntry, error) {
	if len(conversation) == 0 {
		return types.JournalEntry{}, ErrEmptyConversation
	}

	now := p.mgr.now()
	entry := types.JournalEntry{
		ID:                "j" + p.mgr.genID(),
		Date:              now,
		Conversation:      p.normalizeTurns(conversation, now),
		AudioRecordingRef: audioRef,
	}
	entry.Title = deriveTitle(entry.Conversation)
	entry.LastMessagePreview = derivePreview(entry.Conversation)

	p.mu.Lock()
	next := make(types.JournalCollection, len(p.entries), len(p.entries)+1)
	copy(next, p.entries)
	p.entries = append(next, entry)
	p.persistLocked(ctx)
	p.mu.Unlock()

	p.touch(now)
	return entry, nil
}

// Get is a point lookup; absence is not an error.
func (p *Partition) Get(id string) (types.JournalEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.ID == id {
			return e, true
		}
	}
	return types.JournalEntry{}, false
}

// Continue appends newTurns to the named entry and recomputes the preview.
// The collection is untouched when the id is unknown. Appending zero turns
// succeeds without persisting.
func (p *Partition) Continue(ctx context.Context, id string, newTurns []types.Turn) error {
	if len(newTurns) == 0 {
		_, found := p.Get(id)
		if !found {
			return ErrEntryNotFound
		}
		return nil
	}

	now := p.mgr.now()
	turns := p.normalizeTurns(newTurns, now)

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexLocked(id)
	if idx < 0 {
		return ErrEntryNotFound
	}

	next := make(types.JournalCollection, len(p.entries))
	copy(next, p.entries)

	entry := next[idx]
	conversation := make([]types.Turn, len(entry.Conversation), len(entry.Conversation)+len(turns))
	copy(conversation, entry.Conversation)
	entry.Conversation = append(conversation, turns...)
	entry.LastMessagePreview = derivePreview(entry.Conversation)
	next[idx] = entry

	p.entries = next
	p.persistLocked(ctx)
	p.touch(now)
	return nil
}

// Rename sets the entry's title, same not-found contract as Continue.
func (p *Partition) Rename(ctx context.Context, id, title string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexLocked(id)
	if idx < 0 {
		return ErrEntryNotFound
	}

	next := make(types.JournalCollection, len(p.entries))
	copy(next, p.entries)
	next[idx].Title = title

	p.entries = next
	p.persistLocked(ctx)
	p.touch(p.mgr.now())
	return nil
}

// Delete removes the entry.
func (p *Partition) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexLocked(id)
	if idx < 0 {
		return ErrEntryNotFound
	}

	next := make(types.JournalCollection, 0, len(p.entries)-1)
	next = append(next, p.entries[:idx]...)
	next = append(next, p.entries[idx+1:]...)

	p.entries = next
	p.persistLocked(ctx)
	p.touch(p.mgr.now())
	return nil
}

// Search matches the query case-insensitively against the text of every
// turn of every entry, preserving collection order. The empty query
// returns the full collection. Always materializes a fresh slice.
func (p *Partition) Search(query string) types.JournalCollection {
	p.mu.Lock()
	snapshot := p.entries
	p.mu.Unlock()
	p.touch(p.mgr.now())

	result := make(types.JournalCollection, 0, len(snapshot))
	if query == "" {
		return append(result, snapshot...)
	}

	needle := strings.ToLower(query)
	for _, entry := range snapshot {
		for _, turn := range entry.Conversation {
			if strings.Contains(strings.ToLower(turn.Text), needle) {
				result = append(result, entry)
				break
			}
		}
	}
	return result
}

// List returns the full collection in creation order.
func (p *Partition) List() types.JournalCollection {
	return p.Search("")
}

func (p *Partition) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Partition) indexLocked(id string) int {
	for i, e := range p.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the collection wholesale, best effort. Save
// failures are logged and counted, never retried, and never roll back the
// in-memory state.
func (p *Partition) persistLocked(ctx context.Context) {
	if err := p.mgr.archive.Save(ctx, p.key, p.entries); err != nil {
		slog.Warn("failed to persist journal collection, memory remains source of truth",
			slog.String("identity", p.identity),
			slog.Int("entries", len(p.entries)),
			slog.String("error", err.Error()))
		if p.mgr.hooks.ArchiveSaveFailed != nil {
			p.mgr.hooks.ArchiveSaveFailed(p.identity)
		}
	}
}

// normalizeTurns clones the given turns, filling missing ids and
// timestamps. Turn fields set by the caller are kept as-is; turns are
// immutable after this point.
func (p *Partition) normalizeTurns(turns []types.Turn, now time.Time) []types.Turn {
	out := make([]types.Turn, len(turns))
	copy(out, turns)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = "t" + p.mgr.genID()
		}
		if out[i].Timestamp.IsZero() {
			out[i].Timestamp = now
		}
	}
	return out
}

// deriveTitle takes the leading words of the first user turn. Entries that
// open with only assistant turns keep an empty title until renamed.
func deriveTitle(conversation []types.Turn) string {
	for _, turn := range conversation {
		if turn.Sender != types.TURN_SENDER_USER {
			continue
		}
		words := strings.Fields(turn.Text)
		if len(words) > TitleMaxWords {
			words = words[:TitleMaxWords]
		}
		return strings.Join(words, " ")
	}
	return ""
}

func derivePreview(conversation []types.Turn) string {
	if len(conversation) == 0 {
		return ""
	}
	return utils.TruncatePreview(conversation[len(conversation)-1].Text, PreviewMaxRunes)
}
