package buildcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestLookup_MissReturnsNotFound(t *testing.T) {
	cache := openTestCache(t)

	_, found, err := cache.Lookup(context.Background(), "/first-post/")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreAndLookup(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	buildID, err := cache.BeginBuild(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, buildID)

	hash := HashContent([]byte("body"), []byte("template"))
	require.NoError(t, cache.Store(ctx, "/first-post/", hash, buildID))

	got, found, err := cache.Lookup(ctx, "/first-post/")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, hash, got)

	require.NoError(t, cache.FinishBuild(ctx, buildID, 1))
}

func TestStore_UpsertsOnSamePath(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	buildID, err := cache.BeginBuild(ctx)
	require.NoError(t, err)

	require.NoError(t, cache.Store(ctx, "/p/", "hash-1", buildID))
	require.NoError(t, cache.Store(ctx, "/p/", "hash-2", buildID))

	got, found, err := cache.Lookup(ctx, "/p/")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "hash-2", got)
}

func TestPrune_RemovesPathsOutsideRouteSet(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	buildID, err := cache.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Store(ctx, "/keep/", "h1", buildID))
	require.NoError(t, cache.Store(ctx, "/deleted-post/", "h2", buildID))

	pruned, err := cache.Prune(ctx, []string{"/keep/"})
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)

	_, found, err := cache.Lookup(ctx, "/deleted-post/")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = cache.Lookup(ctx, "/keep/")
	require.NoError(t, err)
	require.True(t, found)
}

func TestHashContent_DiffersOnInput(t *testing.T) {
	a := HashContent([]byte("one"))
	b := HashContent([]byte("two"))
	require.NotEqual(t, a, b)
	require.Equal(t, a, HashContent([]byte("one")))
}
