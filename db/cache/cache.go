package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/evergreen-ci/utility/ttlcache"
)

type (
	// Using a custom type to avoid collisions with other context keys.
	cacheContextKey string
)

const (
	Users cacheContextKey = "users"

	lifetime = time.Second
)

var validCaches = []cacheContextKey{
	Users,
}

// Embed adds an empty cache for every collection to the context. Caches
// already present are kept.
func Embed(ctx context.Context, namePrefix string) context.Context {
	for _, collection := range validCaches {
		if ctx.Value(collection) != nil {
			continue
		}
		cacheName := fmt.Sprintf("%s-db-cache-%s", namePrefix, collection)
		cache := ttlcache.WithOtel(ttlcache.NewInMemory[any](), cacheName)
		ctx = context.WithValue(ctx, collection, cache)
	}

	return ctx
}

// GetFromCache returns the cached document with the given id. A context
// without a cache always misses.
func GetFromCache[T any](ctx context.Context, collection cacheContextKey, id string) (T, bool) {
	var zero T
	cache, ok := getCache(ctx, collection)
	if !ok {
		return zero, false
	}

	val, ok := cache.Get(ctx, id, 0)
	if !ok {
		return zero, false
	}
	out, ok := val.(T)
	return out, ok
}

func SetInCache[T any](ctx context.Context, collection cacheContextKey, id string, value T) {
	cache, ok := getCache(ctx, collection)
	if !ok {
		return
	}

	cache.Put(ctx, id, value, time.Now().Add(lifetime))
}

func getCache(ctx context.Context, collection cacheContextKey) (ttlcache.Cache[any], bool) {
	if !validCache(collection) {
		return nil, false
	}

	cache, ok := ctx.Value(collection).(ttlcache.Cache[any])
	return cache, ok
}

func validCache(collection cacheContextKey) bool {
	for _, validCollection := range validCaches {
		if collection == validCollection {
			return true
		}
	}
	return false
}
