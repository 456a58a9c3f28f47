package route

import (
	"context"
	"net/http"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/evergreen-ci/gimlet"
)

// loggedOutTTL is how long the cleared token cookie lives after logout.
const loggedOutTTL = 10 * time.Second

type cookieJarKey int

const cookieJarContextKey cookieJarKey = 0

// cookieJar collects the cookies a handler wants to send. Handlers only see
// a context, so they add cookies here and the middleware writes them out
// with the response headers.
type cookieJar struct {
	cookies []*http.Cookie
}

type cookieMiddleware struct{}

// NewCookieMiddleware lets route handlers set cookies on their response
// through setCookie.
func NewCookieMiddleware() gimlet.Middleware { return &cookieMiddleware{} }

func (m *cookieMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	jar := &cookieJar{}
	ctx := context.WithValue(r.Context(), cookieJarContextKey, jar)
	next(&cookieWriter{ResponseWriter: rw, jar: jar}, r.WithContext(ctx))
}

type cookieWriter struct {
	http.ResponseWriter
	jar         *cookieJar
	wroteHeader bool
}

func (w *cookieWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		for _, c := range w.jar.cookies {
			http.SetCookie(w.ResponseWriter, c)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// setCookie queues a cookie for the response. It does nothing when the
// request did not pass through the cookie middleware.
func setCookie(ctx context.Context, c *http.Cookie) {
	if jar, ok := ctx.Value(cookieJarContextKey).(*cookieJar); ok {
		jar.cookies = append(jar.cookies, c)
	}
}

func setTokenCookie(ctx context.Context, opts HandlerOpts, token string) {
	setCookie(ctx, &http.Cookie{
		Name:     devcamper.AuthTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		Expires:  time.Now().Add(opts.CookieTTL),
	})
}

func clearTokenCookie(ctx context.Context, opts HandlerOpts) {
	setCookie(ctx, &http.Cookie{
		Name:     devcamper.AuthTokenCookie,
		Value:    auth.LoggedOutToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		Expires:  time.Now().Add(loggedOutTTL),
	})
}
