package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	var mu sync.Mutex
	s := NewMemoryStore(WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	require.NoError(t, s.EnsureIndexes(context.Background(), "likes", []Index{
		{Name: "uniq_like", Fields: []string{"likedBy", "target"}, Unique: true},
	}))
	require.NoError(t, s.EnsureIndexes(context.Background(), "videos", []Index{
		{Name: "text", Fields: []string{"title", "description"}, Text: true},
	}))
	return s
}

func TestMemoryStore_InsertGetFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Insert(ctx, "videos", Document{"title": "first", "views": 3})
	require.NoError(t, err)
	require.True(t, IsValidID(a.ID()))
	assert.Equal(t, int64(3), a["views"])
	assert.NotNil(t, a[FieldCreatedAt])

	_, err = s.Insert(ctx, "videos", Document{"title": "second"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "videos", a.ID())
	require.NoError(t, err)
	assert.Equal(t, "first", got["title"])

	got["title"] = "mutated"
	again, _ := s.Get(ctx, "videos", a.ID())
	assert.Equal(t, "first", again["title"], "returned documents must not alias stored ones")

	all, err := s.Find(ctx, "videos", Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0]["title"])

	_, err = s.Get(ctx, "videos", NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Insert(ctx, "likes", Document{"likedBy": "u1", "target": "v1"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "likes", Document{"likedBy": "u1", "target": "v1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = s.Insert(ctx, "likes", Document{"likedBy": "u2", "target": "v1"})
	assert.NoError(t, err)
}

func TestMemoryStore_ConcurrentInsertKeepsUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Insert(ctx, "likes", Document{"likedBy": "u1", "target": "v1"})
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx, "likes", Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_Filters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Insert(ctx, "playlists", Document{"name": "a", "videos": []any{"v1", "v2"}, "owner": "u1"})
	s.Insert(ctx, "playlists", Document{"name": "b", "videos": []any{"v2"}, "owner": "u2"})
	s.Insert(ctx, "playlists", Document{"name": "c", "videos": []any{}, "owner": "u3"})

	docs, _ := s.Find(ctx, "playlists", Query{Filter: Where(Eq("videos", "v2"))})
	assert.Len(t, docs, 2)

	docs, _ = s.Find(ctx, "playlists", Query{Filter: Where(In("owner", []any{"u1", "u3"}))})
	assert.Len(t, docs, 2)

	docs, _ = s.Find(ctx, "playlists", Query{Filter: Where(
		Or(Where(Eq("owner", "u3")), Where(Eq("videos", "v1"))),
	)})
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "c", docs[1]["name"])
}

func TestMemoryStore_Updates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u, _ := s.Insert(ctx, "users", Document{"username": "alice", "views": 0})

	require.NoError(t, s.Update(ctx, "users", u.ID(), Update{
		Set:      Document{"fullName": "Alice A"},
		Inc:      map[string]int64{"views": 2},
		AddToSet: map[string]any{"watchHistory": "v1"},
	}))
	require.NoError(t, s.Update(ctx, "users", u.ID(), Update{AddToSet: map[string]any{"watchHistory": "v1"}}))
	require.NoError(t, s.Update(ctx, "users", u.ID(), Update{AddToSet: map[string]any{"watchHistory": "v2"}}))

	got, _ := s.Get(ctx, "users", u.ID())
	assert.Equal(t, "Alice A", got["fullName"])
	assert.Equal(t, int64(2), got["views"])
	assert.Equal(t, []any{"v1", "v2"}, got["watchHistory"])
	assert.True(t, got.Get(FieldUpdatedAt).(time.Time).After(u[FieldUpdatedAt].(time.Time)))

	n, err := s.UpdateMany(ctx, "users", Where(Eq("watchHistory", "v1")), Update{Pull: map[string]any{"watchHistory": "v1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, _ = s.Get(ctx, "users", u.ID())
	assert.Equal(t, []any{"v2"}, got["watchHistory"])

	assert.ErrorIs(t, s.Update(ctx, "users", NewID(), Update{Set: Document{"x": 1}}), ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a, _ := s.Insert(ctx, "tweets", Document{"owner": "u1"})
	s.Insert(ctx, "tweets", Document{"owner": "u1"})
	s.Insert(ctx, "tweets", Document{"owner": "u2"})

	require.NoError(t, s.Delete(ctx, "tweets", a.ID()))
	assert.ErrorIs(t, s.Delete(ctx, "tweets", a.ID()), ErrNotFound)

	n, err := s.DeleteMany(ctx, "tweets", Where(Eq("owner", "u1")))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	left, _ := s.Count(ctx, "tweets", Query{})
	assert.Equal(t, int64(1), left)
}

func TestMemoryStore_TextSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Insert(ctx, "videos", Document{"title": "Go tutorial", "description": "learn go fast, go go"})
	s.Insert(ctx, "videos", Document{"title": "Cooking", "description": "pasta"})
	s.Insert(ctx, "videos", Document{"title": "Rust vs Go", "description": "comparison"})

	docs, err := s.Find(ctx, "videos", Query{Text: "GO"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 4.0, docs[0][FieldScore])
	assert.Equal(t, 1.0, docs[1][FieldScore])

	n, err := s.Count(ctx, "videos", Query{Text: "pasta"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Find(ctx, "tweets", Query{Text: "go"})
	assert.Error(t, err)
}
