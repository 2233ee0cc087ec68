package library

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/kv"
)

// Index is the ordered summary list stored under IndexKey.
// Read-modify-write cycles are serialized; the mutex only covers this
// process.
type Index struct {
	mu     sync.Mutex
	store  kv.Store
	logger *zap.Logger
}

// NewIndex returns the index over store.
func NewIndex(store kv.Store, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{store: store, logger: logger}
}

// List returns the entries in stored order (most recently added first).
// A missing or undecodable index reads as empty.
func (x *Index) List(ctx context.Context) ([]capsule.IndexEntry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.load(ctx)
}

// Upsert merges patch into the entry with the same id, keeping its position,
// or prepends a new entry.
func (x *Index) Upsert(ctx context.Context, patch capsule.IndexPatch) error {
	if strings.TrimSpace(patch.ID) == "" {
		return errors.NewInvalidRequest("index entry id is required")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	entries, err := x.load(ctx)
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].ID == patch.ID {
			patch.Apply(&entries[i])
			return x.save(ctx, entries)
		}
	}

	var e capsule.IndexEntry
	patch.Apply(&e)
	entries = append([]capsule.IndexEntry{e}, entries...)
	return x.save(ctx, entries)
}

// Remove drops the entry with id. Unknown ids leave the index untouched.
func (x *Index) Remove(ctx context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entries, err := x.load(ctx)
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return x.save(ctx, kept)
}

// Clear deletes the index record.
func (x *Index) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.store.Remove(ctx, IndexKey); err != nil {
		x.logger.Error("clear index", zap.Error(err))
		return internal(err)
	}
	return nil
}

func (x *Index) load(ctx context.Context) ([]capsule.IndexEntry, error) {
	data, found, err := x.store.Get(ctx, IndexKey)
	if err != nil {
		x.logger.Error("read index", zap.Error(err))
		return nil, internal(err)
	}
	entries := []capsule.IndexEntry{}
	if !found {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		x.logger.Warn("discarding undecodable index", zap.Error(err))
		return []capsule.IndexEntry{}, nil
	}
	if entries == nil {
		entries = []capsule.IndexEntry{}
	}
	return entries, nil
}

func (x *Index) save(ctx context.Context, entries []capsule.IndexEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		x.logger.Error("encode index", zap.Error(err))
		return errors.NewInternal(err)
	}
	if err := x.store.Put(ctx, IndexKey, data); err != nil {
		x.logger.Error("write index", zap.Error(err))
		return internal(err)
	}
	return nil
}
