package cache

import (
	"net/http"

	"github.com/evergreen-ci/gimlet"
)

// requestCacheMiddleware gives every request its own document caches, so a
// user loaded by the auth middleware is not fetched again by the handler.
type requestCacheMiddleware struct {
	name string
}

func NewGimletMiddleware(name string) gimlet.Middleware {
	return &requestCacheMiddleware{name: name}
}

func (m *requestCacheMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	next(rw, r.WithContext(Embed(r.Context(), m.name)))
}
