package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func stubs(ids ...int) []domain.MovieStub {
	out := make([]domain.MovieStub, len(ids))
	for i, id := range ids {
		out[i] = domain.MovieStub{ID: id, Title: "Movie " + string(rune('A'+i))}
	}
	return out
}

func TestCollectionStore_RoundTripAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetList("favorites", stubs(3, 1, 2)))
	require.NoError(t, s.SetList("watchlist", stubs(9)))
	require.NoError(t, s.SetList("empty", nil))
	want := s.Collection()
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got := reopened.Collection()
	assert.Equal(t, []string{"favorites", "watchlist", "empty"}, got.Names)
	assert.Equal(t, want, got)
	assert.Equal(t, []int{3, 1, 2}, ids(reopened.GetList("favorites")))
	assert.True(t, reopened.HasList("empty"))
	assert.Empty(t, reopened.GetList("empty"))
}

func TestCollectionStore_SetListKeepsSequenceInLockstep(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.SetList("a", stubs(1)))
	require.NoError(t, s.SetList("b", stubs(2)))
	require.NoError(t, s.SetList("a", stubs(1, 4)))

	assert.Equal(t, []string{"a", "b"}, s.ListNames())
	assert.Equal(t, []int{1, 4}, ids(s.GetList("a")))
}

func TestCollectionStore_RemoveList(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.SetList("a", stubs(1)))
	require.NoError(t, s.SetList("b", stubs(2)))
	require.NoError(t, s.RemoveList("a"))
	require.NoError(t, s.RemoveList("missing"))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"b"}, reopened.ListNames())
	assert.False(t, reopened.HasList("a"))
	assert.Nil(t, reopened.GetList("a"))
}

func TestCollectionStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.SetList("a", stubs(1, 2)))

	list := s.GetList("a")
	list[0].ID = 99
	names := s.ListNames()
	names[0] = "mutated"

	assert.Equal(t, []int{1, 2}, ids(s.GetList("a")))
	assert.Equal(t, []string{"a"}, s.ListNames())
}

func TestReconcile(t *testing.T) {
	names := []string{"b", "a", "b", "ghost"}
	lists := map[string][]domain.MovieStub{
		"a":       stubs(1),
		"b":       stubs(2),
		"zorphan": stubs(3),
		"orphan":  stubs(4),
	}

	gotNames, gotLists := reconcile(names, lists)

	assert.Equal(t, []string{"b", "a", "ghost", "orphan", "zorphan"}, gotNames)
	assert.Contains(t, gotLists, "ghost")
	assert.Empty(t, gotLists["ghost"])
}

func TestOpen_EmptyDirIsMemoryOnly(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	require.NoError(t, s.SetList("a", stubs(1)))
	assert.Equal(t, []string{"a"}, s.ListNames())
	assert.NoError(t, s.Close())
}

func TestOpen_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCollections).Put([]byte(keyLists), []byte("{not json"))
	}))
	require.NoError(t, s.Close())

	_, err = Open(dir)
	assert.Error(t, err)
}

func TestCollectionStore_Details(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	fetched := time.Unix(1_700_000_000, 0)
	detail := &domain.MovieDetail{
		ID:          603,
		Title:       "The Matrix",
		Runtime:     136,
		Genres:      []string{"Action", "Science Fiction"},
		ReleaseDate: time.Date(1999, 3, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveDetail(detail, fetched))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, at, ok := reopened.GetDetail(603)
	require.True(t, ok)
	assert.Equal(t, detail, got)
	assert.True(t, at.Equal(fetched))

	_, _, ok = reopened.GetDetail(1)
	assert.False(t, ok)

	reopened.InvalidateDetails()
	_, _, ok = reopened.GetDetail(603)
	assert.False(t, ok)
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, dbFileName))
	assert.NoError(t, err)
}

func ids(list []domain.MovieStub) []int {
	out := make([]int, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}
