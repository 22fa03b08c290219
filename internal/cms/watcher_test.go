package cms

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, KindBlog), 0o755))
	file := filepath.Join(dir, KindBlog, "post.md")
	require.NoError(t, os.WriteFile(file, []byte("---\ntitle: Before\n---\nbody"), 0o644))

	store := NewStore(os.DirFS(dir), WithCacheTTL(time.Hour))
	page, err := store.Get(context.Background(), KindBlog, "post")
	require.NoError(t, err)
	require.Equal(t, "Before", page.Title)

	w, err := NewWatcher(dir, store, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(file, []byte("---\ntitle: After\n---\nbody"), 0o644))

	require.Eventually(t, func() bool {
		page, err := store.Get(context.Background(), KindBlog, "post")
		return err == nil && page.Title == "After"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), NewStore(nil), nil)
	require.NoError(t, err)
	w.Stop()
}
