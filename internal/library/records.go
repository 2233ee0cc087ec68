// Package library persists capsules, progress and the capsule index on top
// of a kv.Store.
package library

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/kv"
)

// Key prefixes and the fixed index key.
const (
	CapsulePrefix  = "capsule:"
	ProgressPrefix = "progress:"
	IndexKey       = "index"
)

// KeyCapsule returns the storage key of a capsule record.
func KeyCapsule(id string) string { return CapsulePrefix + id }

// KeyProgress returns the storage key of a progress record.
func KeyProgress(id string) string { return ProgressPrefix + id }

// Records reads and writes capsule and progress documents.
type Records struct {
	store  kv.Store
	logger *zap.Logger
}

// NewRecords returns a record store over store.
func NewRecords(store kv.Store, logger *zap.Logger) *Records {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Records{store: store, logger: logger}
}

// PutCapsule writes c under its id. c must carry an id.
func (r *Records) PutCapsule(ctx context.Context, c *capsule.Capsule) error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.NewInvalidRequest("capsule id is required")
	}
	return r.put(ctx, KeyCapsule(c.ID), c)
}

// GetCapsule returns the capsule with id, or found=false.
func (r *Records) GetCapsule(ctx context.Context, id string) (*capsule.Capsule, bool, error) {
	var c capsule.Capsule
	found, err := r.get(ctx, KeyCapsule(id), &c)
	if err != nil || !found {
		return nil, false, err
	}
	return &c, true, nil
}

// RemoveCapsule deletes the capsule record. Absent ids are not an error.
func (r *Records) RemoveCapsule(ctx context.Context, id string) error {
	return r.remove(ctx, KeyCapsule(id))
}

// CapsuleIDs lists the ids of every stored capsule record.
func (r *Records) CapsuleIDs(ctx context.Context) ([]string, error) {
	return r.ids(ctx, CapsulePrefix)
}

// PutProgress overwrites the progress record of capsule id.
func (r *Records) PutProgress(ctx context.Context, id string, p capsule.Progress) error {
	if p.KnownFlashcards == nil {
		p.KnownFlashcards = []string{}
	}
	return r.put(ctx, KeyProgress(id), p)
}

// GetProgress returns the progress of capsule id. Absent progress reads as
// the zero state.
func (r *Records) GetProgress(ctx context.Context, id string) (capsule.Progress, error) {
	var p capsule.Progress
	found, err := r.get(ctx, KeyProgress(id), &p)
	if err != nil {
		return capsule.Progress{}, err
	}
	if !found {
		return capsule.NewProgress(0), nil
	}
	if p.KnownFlashcards == nil {
		p.KnownFlashcards = []string{}
	}
	return p, nil
}

// RemoveProgress deletes the progress record of capsule id.
func (r *Records) RemoveProgress(ctx context.Context, id string) error {
	return r.remove(ctx, KeyProgress(id))
}

// ProgressIDs lists the capsule ids that have a progress record.
func (r *Records) ProgressIDs(ctx context.Context) ([]string, error) {
	return r.ids(ctx, ProgressPrefix)
}

func (r *Records) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Error("encode record", zap.String("key", key), zap.Error(err))
		return errors.NewInternal(err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		r.logger.Error("write record", zap.String("key", key), zap.Error(err))
		return internal(err)
	}
	return nil
}

// get decodes the record at key into v. Undecodable records are logged and
// reported as absent.
func (r *Records) get(ctx context.Context, key string, v any) (bool, error) {
	data, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Error("read record", zap.String("key", key), zap.Error(err))
		return false, internal(err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.logger.Warn("discarding undecodable record", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (r *Records) remove(ctx context.Context, key string) error {
	if err := r.store.Remove(ctx, key); err != nil {
		r.logger.Error("remove record", zap.String("key", key), zap.Error(err))
		return internal(err)
	}
	return nil
}

func (r *Records) ids(ctx context.Context, prefix string) ([]string, error) {
	keys, err := r.store.Keys(ctx, prefix)
	if err != nil {
		r.logger.Error("list records", zap.String("prefix", prefix), zap.Error(err))
		return nil, internal(err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

// internal keeps typed errors (e.g. CANCELLED) and wraps everything else.
func internal(err error) error {
	var ae *errors.ArminaError
	if stderrors.As(err, &ae) {
		return ae
	}
	return errors.NewInternal(err)
}
