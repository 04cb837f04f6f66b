package journal

import (
	"context"
	"sync"

	"github.com/reverie-ai/reverie/pkg/types"
)

// MemoryArchive keeps collections in process memory. It backs the
// "no durable storage configured" mode and the hermetic tests; restarting
// the service loses everything, which is the documented trade.
type MemoryArchive struct {
	mu    sync.RWMutex
	slots map[types.CollectionKey]types.JournalCollection
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		slots: make(map[types.CollectionKey]types.JournalCollection),
	}
}

func (a *MemoryArchive) Load(ctx context.Context, key types.CollectionKey) (types.JournalCollection, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stored, ok := a.slots[key]
	if !ok {
		return types.JournalCollection{}, nil
	}
	out := make(types.JournalCollection, len(stored))
	copy(out, stored)
	return out, nil
}

func (a *MemoryArchive) Save(ctx context.Context, key types.CollectionKey, collection types.JournalCollection) error {
	stored := make(types.JournalCollection, len(collection))
	copy(stored, collection)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[key] = stored
	return nil
}

func (a *MemoryArchive) Delete(ctx context.Context, key types.CollectionKey) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.slots, key)
	return nil
}
