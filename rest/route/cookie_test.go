package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieMiddlewareWritesQueuedCookies(t *testing.T) {
	for name, write := range map[string]func(http.ResponseWriter){
		"WriteHeader": func(rw http.ResponseWriter) {
			rw.WriteHeader(http.StatusCreated)
			_, _ = rw.Write([]byte("{}"))
		},
		"ImplicitHeader": func(rw http.ResponseWriter) {
			_, _ = rw.Write([]byte("{}"))
		},
	} {
		t.Run(name, func(t *testing.T) {
			rw := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			NewCookieMiddleware().ServeHTTP(rw, r, func(rw http.ResponseWriter, r *http.Request) {
				setCookie(r.Context(), &http.Cookie{Name: "first", Value: "1"})
				setCookie(r.Context(), &http.Cookie{Name: "second", Value: "2"})
				write(rw)
			})

			cookies := rw.Result().Cookies()
			require.Len(t, cookies, 2)
			assert.Equal(t, "first", cookies[0].Name)
			assert.Equal(t, "2", cookies[1].Value)
			assert.Equal(t, "{}", rw.Body.String())
		})
	}
}

func TestSetCookieWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotPanics(t, func() {
		setCookie(r.Context(), &http.Cookie{Name: "ignored", Value: "x"})
	})
}

func TestAppTokenCookie(t *testing.T) {
	client, _ := newAPIClient(t)

	resp := client.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Cookie Monster",
		"email":    "cookie@devcamper.io",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.code, resp.body)
	token, _ := resp.details()["token"].(string)
	require.NotEmpty(t, token)

	tokenCookie := func(resp apiResponse) *http.Cookie {
		for _, c := range resp.raw.Result().Cookies() {
			if c.Name == devcamper.AuthTokenCookie {
				return c
			}
		}
		return nil
	}
	c := tokenCookie(resp)
	require.NotNil(t, c)
	assert.Equal(t, token, c.Value)
	assert.True(t, c.HttpOnly)

	me := func(cookie *http.Cookie) int {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.AddCookie(cookie)
		rw := httptest.NewRecorder()
		client.handler.ServeHTTP(rw, r)
		return rw.Code
	}
	assert.Equal(t, http.StatusOK, me(&http.Cookie{Name: c.Name, Value: c.Value}))

	resp = client.do(http.MethodGet, "/api/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.code)
	c = tokenCookie(resp)
	require.NotNil(t, c)
	assert.Equal(t, auth.LoggedOutToken, c.Value)
	assert.Equal(t, http.StatusUnauthorized, me(&http.Cookie{Name: c.Name, Value: c.Value}))
}
