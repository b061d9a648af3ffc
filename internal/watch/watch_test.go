package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

func TestWatcher_RebuildsOnceForEventBurst(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32

	w, err := NewWatcher([]string{dir}, func() { rebuilds.Add(1) })
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md"), []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return rebuilds.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// The burst must have collapsed into a small number of rebuilds, not one
	// per write event.
	require.LessOrEqual(t, rebuilds.Load(), int32(2))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestPublishScheduler_SkipsAlreadyPublished(t *testing.T) {
	sched, err := NewPublishScheduler(func() {})
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	past := content.Entry{Slug: "old", PubDate: time.Now().Add(-time.Hour)}
	require.NoError(t, sched.Reschedule([]content.Entry{past}))
	require.Empty(t, sched.scheduler.Jobs())
}

func TestPublishScheduler_ArmsJobPerFutureEntry(t *testing.T) {
	sched, err := NewPublishScheduler(func() {})
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	future := []content.Entry{
		{Slug: "soon", PubDate: time.Now().Add(time.Hour)},
		{Slug: "later", PubDate: time.Now().Add(2 * time.Hour)},
	}
	require.NoError(t, sched.Reschedule(future))
	require.Len(t, sched.scheduler.Jobs(), 2)
}

func TestPublishScheduler_RescheduleReplacesJobs(t *testing.T) {
	sched, err := NewPublishScheduler(func() {})
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	require.NoError(t, sched.Reschedule([]content.Entry{
		{Slug: "a", PubDate: time.Now().Add(time.Hour)},
	}))
	require.NoError(t, sched.Reschedule([]content.Entry{
		{Slug: "b", PubDate: time.Now().Add(time.Hour)},
	}))
	jobs := sched.scheduler.Jobs()
	require.Len(t, jobs, 1)
	require.Equal(t, "publish-b", jobs[0].Name())
}
