package mailer

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrymomot/sesadapter/pkg/cache"
)

// Loader reads template source by path.
type Loader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) ([]byte, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// FileLoader reads templates from the OS filesystem. It is the default.
func FileLoader() Loader {
	return LoaderFunc(func(ctx context.Context, path string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	})
}

// FSLoader reads templates from fsys, e.g. an embed.FS.
// Paths must be valid fs.FS paths (slash-separated, unrooted).
func FSLoader(fsys fs.FS) Loader {
	return LoaderFunc(func(ctx context.Context, path string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fs.ReadFile(fsys, path)
	})
}

// CachedLoader memoizes next in c for ttl. Concurrent misses on the same
// path share one underlying load. Failed loads are not cached.
func CachedLoader(next Loader, c cache.Cache[[]byte], ttl time.Duration) Loader {
	return LoaderFunc(func(ctx context.Context, path string) ([]byte, error) {
		return cache.GetOrSet(ctx, c, "template:"+path, func(ctx context.Context) ([]byte, time.Duration, error) {
			data, err := next.Load(ctx, path)
			return data, ttl, err
		})
	})
}
