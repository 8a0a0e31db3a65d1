package mailer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sesadapter/pkg/cache"
)

func TestFileLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "reset.txt")
	require.NoError(t, os.WriteFile(path, []byte("Reset: {{link}}"), 0o600))

	data, err := FileLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Reset: {{link}}", string(data))

	_, err = FileLoader().Load(context.Background(), filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFSLoader(t *testing.T) {
	t.Parallel()

	loader := FSLoader(fstest.MapFS{
		"emails/verify.txt": {Data: []byte("Verify {{email}}")},
	})

	data, err := loader.Load(context.Background(), "emails/verify.txt")
	require.NoError(t, err)
	require.Equal(t, "Verify {{email}}", string(data))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.Load(ctx, "emails/verify.txt")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCachedLoader(t *testing.T) {
	t.Parallel()

	t.Run("loads each path once", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		next := LoaderFunc(func(_ context.Context, path string) ([]byte, error) {
			calls.Add(1)
			return []byte("source of " + path), nil
		})

		c := cache.NewMemory[[]byte](cache.WithCleanupInterval(0))
		defer c.Close()
		loader := CachedLoader(next, c, time.Minute)

		for range 3 {
			data, err := loader.Load(context.Background(), "reset.txt")
			require.NoError(t, err)
			require.Equal(t, "source of reset.txt", string(data))
		}
		require.Equal(t, int32(1), calls.Load())

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, err := loader.Load(context.Background(), "verify.txt")
				assert.NoError(t, err)
				assert.Equal(t, "source of verify.txt", string(data))
			}()
		}
		wg.Wait()

		_, err := loader.Load(context.Background(), "verify.txt")
		require.NoError(t, err)
		require.GreaterOrEqual(t, calls.Load(), int32(2))
	})

	t.Run("does not cache failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		loadErr := errors.New("boom")
		next := LoaderFunc(func(context.Context, string) ([]byte, error) {
			calls.Add(1)
			return nil, loadErr
		})

		c := cache.NewMemory[[]byte](cache.WithCleanupInterval(0))
		defer c.Close()
		loader := CachedLoader(next, c, time.Minute)

		for range 2 {
			_, err := loader.Load(context.Background(), "reset.txt")
			require.ErrorIs(t, err, loadErr)
		}
		require.Equal(t, int32(2), calls.Load())
	})
}
