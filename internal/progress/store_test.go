package progress

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, New("book1", 3, 12, at)))

	got, err := s.Get(ctx, "book1")
	require.NoError(t, err)
	assert.Equal(t, "book1", got.BookID)
	assert.Equal(t, 3, got.CurrentSpread)
	assert.Equal(t, 12, got.TotalSpreads)
	assert.True(t, at.Equal(got.LastRead))
	assert.False(t, got.Completed)
}

func TestSaveUpserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, New("book1", 0, 4, time.Now())))
	require.NoError(t, s.Save(ctx, New("book1", 3, 4, time.Now())))

	got, err := s.Get(ctx, "book1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentSpread)
	assert.True(t, got.Completed)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetMissing(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.Save(ctx, New("book1", 5, 4, time.Now()))
	assert.ErrorIs(t, err, ErrInvalid)

	err = s.Save(ctx, New("", 0, 4, time.Now()))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWireFormat(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Save(ctx, New("book2", 1, 2, at)))

	var raw map[string]any
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("reading_progress_book2"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &raw)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, "book2", raw["bookId"])
	assert.EqualValues(t, 1, raw["currentSpread"])
	assert.EqualValues(t, 2, raw["totalSpreads"])
	assert.Equal(t, "2026-01-02T03:04:05Z", raw["lastRead"])
	assert.Equal(t, true, raw["completed"])
}

func TestAllSortsByLastRead(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, New("a", 0, 2, base)))
	require.NoError(t, s.Save(ctx, New("b", 0, 2, base.Add(2*time.Hour))))
	require.NoError(t, s.Save(ctx, New("c", 0, 2, base.Add(time.Hour))))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].BookID, all[1].BookID, all[2].BookID})
}

func TestAllSkipsCorruptRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, New("good", 0, 2, time.Now())))
	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(KeyPrefix+"bad"), []byte("{not json"))
	}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].BookID)
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, New("book1", 0, 2, time.Now())))
	require.NoError(t, s.Delete(ctx, "book1"))
	require.NoError(t, s.Delete(ctx, "book1"))

	_, err := s.Get(ctx, "book1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, New("book1", 0, 2, time.Now())), context.Canceled)
	_, err := s.Get(ctx, "book1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, New("book1", 2, 5, time.Now())))
	require.NoError(t, s.Close())

	s, err = Open(Options{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "book1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentSpread)
}

func TestClampAndPercent(t *testing.T) {
	p := New("book1", 5, 6, time.Now())
	assert.Equal(t, 5, p.Clamp(6))
	assert.Equal(t, 2, p.Clamp(3), "book shrank between sessions")
	assert.Equal(t, 0, p.Clamp(0))
	assert.Equal(t, 100, p.Percent())

	p = New("book1", 1, 4, time.Now())
	assert.False(t, p.Completed)
	assert.Equal(t, 25, p.Percent())
}
