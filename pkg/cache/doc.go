// Package cache provides a small TTL cache with in-memory and Redis backends.
//
// The mailer uses it to memoize template sources (see mailer.CachedLoader):
//
//	c := cache.NewMemory[[]byte](cache.WithDefaultTTL(time.Minute))
//	loader := mailer.CachedLoader(mailer.FileLoader(), c, 0)
//
// or, shared across processes:
//
//	client, err := cache.OpenRedis(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[[]byte](client, cache.BytesMarshaler{}, cache.WithPrefix("templates"))
//
// GetOrSet deduplicates concurrent misses with singleflight.
package cache
