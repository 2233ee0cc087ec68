package library

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/kv"
)

// brokenStore fails every operation.
type brokenStore struct{}

var errDisk = stderrors.New("disk on fire")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDisk }
func (brokenStore) Put(context.Context, string, []byte) error         { return errDisk }
func (brokenStore) Remove(context.Context, string) error              { return errDisk }
func (brokenStore) Keys(context.Context, string) ([]string, error)    { return nil, errDisk }

func ptr[T any](v T) *T { return &v }

func testCapsule(id, title string) *capsule.Capsule {
	return &capsule.Capsule{
		ID:         id,
		Title:      title,
		Subject:    "Math",
		Level:      capsule.DefaultLevel,
		Notes:      []string{"first note"},
		Flashcards: []capsule.Flashcard{{Front: "2+2", Back: "4"}},
		Quiz:       []capsule.Question{{Question: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1}},
		CreatedAt:  1000,
		UpdatedAt:  2000,
	}
}

func TestRecords_CapsuleRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewRecords(kv.NewMemory(), nil)

	c := testCapsule("c1", "Arithmetic")
	require.NoError(t, r.PutCapsule(ctx, c))

	got, found, err := r.GetCapsule(ctx, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, c, got)

	require.NoError(t, r.RemoveCapsule(ctx, "c1"))
	_, found, err = r.GetCapsule(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, found)

	// removing again is fine
	require.NoError(t, r.RemoveCapsule(ctx, "c1"))
}

func TestRecords_PutCapsuleRequiresID(t *testing.T) {
	r := NewRecords(kv.NewMemory(), nil)
	err := r.PutCapsule(context.Background(), &capsule.Capsule{Title: "x"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRecords_UndecodableIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Put(ctx, KeyCapsule("bad"), []byte("{not json")))

	r := NewRecords(store, nil)
	c, found, err := r.GetCapsule(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, c)
}

func TestRecords_ProgressDefaults(t *testing.T) {
	ctx := context.Background()
	r := NewRecords(kv.NewMemory(), nil)

	p, err := r.GetProgress(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, p.BestScore)
	assert.NotNil(t, p.KnownFlashcards)
	assert.Empty(t, p.KnownFlashcards)

	require.NoError(t, r.PutProgress(ctx, "c1", capsule.Progress{BestScore: 3}))
	p, err = r.GetProgress(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.BestScore)
	assert.Equal(t, []string{}, p.KnownFlashcards)

	// overwrite, no max policy
	require.NoError(t, r.PutProgress(ctx, "c1", capsule.NewProgress(1)))
	p, err = r.GetProgress(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.BestScore)
}

func TestRecords_IDs(t *testing.T) {
	ctx := context.Background()
	r := NewRecords(kv.NewMemory(), nil)

	require.NoError(t, r.PutCapsule(ctx, testCapsule("b", "B")))
	require.NoError(t, r.PutCapsule(ctx, testCapsule("a", "A")))
	require.NoError(t, r.PutProgress(ctx, "a", capsule.NewProgress(2)))

	ids, err := r.CapsuleIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, err = r.ProgressIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestRecords_StorageFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	r := NewRecords(brokenStore{}, nil)

	err := r.PutCapsule(ctx, testCapsule("c1", "x"))
	assert.True(t, errors.Is(err, errors.ErrInternal))

	_, _, err = r.GetCapsule(ctx, "c1")
	assert.True(t, errors.Is(err, errors.ErrInternal))

	_, err = r.GetProgress(ctx, "c1")
	assert.True(t, errors.Is(err, errors.ErrInternal))

	err = r.RemoveProgress(ctx, "c1")
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestIndex_UpsertPrependsNewEntries(t *testing.T) {
	ctx := context.Background()
	x := NewIndex(kv.NewMemory(), nil)

	a := testCapsule("a", "A")
	b := testCapsule("b", "B")
	require.NoError(t, x.Upsert(ctx, a.ToIndexPatch()))
	require.NoError(t, x.Upsert(ctx, b.ToIndexPatch()))

	entries, err := x.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "a", entries[1].ID)
	assert.Equal(t, "first note", entries[1].Description)
}

func TestIndex_UpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	x := NewIndex(kv.NewMemory(), nil)

	patch := testCapsule("a", "A").ToIndexPatch()
	require.NoError(t, x.Upsert(ctx, patch))
	first, err := x.List(ctx)
	require.NoError(t, err)

	require.NoError(t, x.Upsert(ctx, patch))
	second, err := x.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 1)
}

func TestIndex_UpsertMergesInPlace(t *testing.T) {
	ctx := context.Background()
	x := NewIndex(kv.NewMemory(), nil)

	require.NoError(t, x.Upsert(ctx, testCapsule("a", "A").ToIndexPatch()))
	require.NoError(t, x.Upsert(ctx, testCapsule("b", "B").ToIndexPatch()))

	// partial patch: only title changes
	require.NoError(t, x.Upsert(ctx, capsule.IndexPatch{ID: "a", Title: ptr("A2")}))

	entries, err := x.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "A2", entries[1].Title)
	assert.Equal(t, "Math", entries[1].Subject)
	assert.Equal(t, int64(2000), entries[1].UpdatedAt)
}

func TestIndex_UpsertRequiresID(t *testing.T) {
	x := NewIndex(kv.NewMemory(), nil)
	err := x.Upsert(context.Background(), capsule.IndexPatch{Title: ptr("t")})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestIndex_Remove(t *testing.T) {
	ctx := context.Background()
	x := NewIndex(kv.NewMemory(), nil)

	require.NoError(t, x.Upsert(ctx, testCapsule("a", "A").ToIndexPatch()))
	require.NoError(t, x.Upsert(ctx, testCapsule("b", "B").ToIndexPatch()))

	require.NoError(t, x.Remove(ctx, "a"))
	require.NoError(t, x.Remove(ctx, "unknown"))

	entries, err := x.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ID)
}

func TestIndex_EmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	x := NewIndex(store, nil)

	entries, err := x.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	require.NoError(t, store.Put(ctx, IndexKey, []byte("null")))
	entries, err = x.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, entries)

	require.NoError(t, store.Put(ctx, IndexKey, []byte("[{")))
	entries, err = x.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIndex_Clear(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	x := NewIndex(store, nil)

	require.NoError(t, x.Upsert(ctx, testCapsule("a", "A").ToIndexPatch()))
	require.NoError(t, x.Clear(ctx))

	_, found, err := store.Get(ctx, IndexKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndex_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	lib := New(kv.NewMemory(), nil)

	const n = 20
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			id := string(rune('a' + i))
			done <- lib.Index.Upsert(ctx, testCapsule(id, id).ToIndexPatch())
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}

	entries, err := lib.Index.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestIndex_StorageFailure(t *testing.T) {
	x := NewIndex(brokenStore{}, nil)
	_, err := x.List(context.Background())
	assert.True(t, errors.Is(err, errors.ErrInternal))
}
