package route

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

type apiResponse struct {
	code int
	body map[string]any
	raw  *httptest.ResponseRecorder
}

func (c *apiClient) do(method, path, token string, body any) apiResponse {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	r := httptest.NewRequest(method, path, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	c.handler.ServeHTTP(rw, r)

	out := apiResponse{code: rw.Code, raw: rw}
	if rw.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rw.Body.Bytes(), &out.body), rw.Body.String())
	}
	return out
}

func (r apiResponse) details() map[string]any {
	details, _ := r.body["details"].(map[string]any)
	return details
}

func newAPIClient(t *testing.T) (*apiClient, HandlerOpts) {
	sc := newMockConnector()
	opts := newTestOpts(t, sc)
	handler, err := NewApp(opts).Handler()
	require.NoError(t, err)
	return &apiClient{t: t, handler: handler}, opts
}

func TestAppEndToEnd(t *testing.T) {
	client, opts := newAPIClient(t)
	admin := addUser(t, opts.Connector, "root", devcamper.AdminRole)
	adminToken, err := opts.Tokens.Sign(admin.Id.Hex())
	require.NoError(t, err)

	resp := client.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Pat Publisher",
		"email":    "pat@devcamper.io",
		"password": "secret123",
		"role":     "publisher",
	})
	require.Equal(t, http.StatusOK, resp.code, resp.body)
	assert.Equal(t, true, resp.body["success"])
	publisherToken, _ := resp.details()["token"].(string)
	require.NotEmpty(t, publisherToken)

	resp = client.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Uma User",
		"email":    "uma@devcamper.io",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.code, resp.body)
	userToken, _ := resp.details()["token"].(string)

	t.Run("MeRequiresToken", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.code)
		assert.Equal(t, false, resp.body["success"])
		assert.Equal(t, notAuthorizedMessage, resp.body["message"])

		resp = client.do(http.MethodGet, "/api/v1/auth/me", publisherToken, nil)
		require.Equal(t, http.StatusOK, resp.code)
		assert.Equal(t, "pat@devcamper.io", resp.details()["email"])
		assert.NotContains(t, resp.details(), "password")
	})

	var bootcampID string
	t.Run("UserCannotCreateBootcamp", func(t *testing.T) {
		resp := client.do(http.MethodPost, "/api/v1/bootcamps", userToken, map[string]any{
			"name": "Nope", "description": "x", "address": testZipcode, "careers": []string{"Other"},
		})
		assert.Equal(t, http.StatusForbidden, resp.code)
		assert.Equal(t, "Forbidden", resp.body["error"])
	})
	t.Run("PublisherCreatesBootcamp", func(t *testing.T) {
		resp := client.do(http.MethodPost, "/api/v1/bootcamps", publisherToken, map[string]any{
			"name": "Devworks Bootcamp", "description": "Full stack", "address": testZipcode, "careers": []string{"Web Development"},
		})
		require.Equal(t, http.StatusCreated, resp.code, resp.body)
		bootcampID, _ = resp.details()["_id"].(string)
		require.NotEmpty(t, bootcampID)
	})
	t.Run("CoursesAndReviews", func(t *testing.T) {
		resp := client.do(http.MethodPost, "/api/v1/bootcamps/"+bootcampID+"/courses", publisherToken, map[string]any{
			"title": "Web Dev", "description": "HTML", "weeks": "10", "tuition": 9999, "minimumSkill": "beginner",
		})
		require.Equal(t, http.StatusCreated, resp.code, resp.body)

		resp = client.do(http.MethodPost, "/api/v1/bootcamps/"+bootcampID+"/reviews", publisherToken, map[string]any{
			"title": "Mine", "text": "Great", "rating": 10,
		})
		assert.Equal(t, http.StatusForbidden, resp.code)

		resp = client.do(http.MethodPost, "/api/v1/bootcamps/"+bootcampID+"/reviews", userToken, map[string]any{
			"title": "Solid", "text": "Learned a lot", "rating": 7,
		})
		require.Equal(t, http.StatusCreated, resp.code, resp.body)

		resp = client.do(http.MethodGet, "/api/v1/bootcamps/"+bootcampID, "", nil)
		require.Equal(t, http.StatusOK, resp.code)
		assert.EqualValues(t, 10000, resp.details()["averageCost"])
		assert.EqualValues(t, 7, resp.details()["averageRating"])
		courses, _ := resp.details()["courses"].([]any)
		assert.Len(t, courses, 1)
	})
	t.Run("ListAndRadius", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/v1/bootcamps?select=name,averageCost&sort=name", "", nil)
		require.Equal(t, http.StatusOK, resp.code)
		assert.EqualValues(t, 1, resp.details()["total"])

		resp = client.do(http.MethodGet, "/api/v1/bootcamps?page=922337203685477581&limit=9223372036854775807", "", nil)
		require.Equal(t, http.StatusOK, resp.code, resp.body)
		assert.EqualValues(t, 0, resp.details()["count"])
		pagination, _ := resp.details()["pagination"].(map[string]any)
		assert.EqualValues(t, listing.MaxLimit, pagination["limit"])
		assert.NotContains(t, pagination, "next")

		resp = client.do(http.MethodGet, "/api/v1/bootcamps/radius/02118/5", "", nil)
		require.Equal(t, http.StatusOK, resp.code)
		assert.EqualValues(t, 1, resp.details()["count"])
	})
	t.Run("UserRoutesAreAdminOnly", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/v1/users", publisherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.code)

		resp = client.do(http.MethodGet, "/api/v1/users", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.code)
		assert.EqualValues(t, 3, resp.details()["total"])
	})
	t.Run("InvalidJSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
		rw := httptest.NewRecorder()
		client.handler.ServeHTTP(rw, r)
		assert.Equal(t, http.StatusBadRequest, rw.Code)
	})
	t.Run("DeleteAllIsAdminOnly", func(t *testing.T) {
		resp := client.do(http.MethodDelete, "/api/v1/bootcamps/allDelete", publisherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.code)

		resp = client.do(http.MethodDelete, "/api/v1/bootcamps/allDelete", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.code, resp.body)
		assert.EqualValues(t, 1, resp.details()["deletedCount"])
	})
	t.Run("Logout", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/v1/auth/logout", "", nil)
		assert.Equal(t, http.StatusOK, resp.code)
	})
}

func TestAppAllowsCrossOriginRequests(t *testing.T) {
	client, _ := newAPIClient(t)

	r := httptest.NewRequest(http.MethodOptions, "/api/v1/bootcamps", nil)
	r.Header.Set("Origin", "http://frontend.devcamper.io")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rw := httptest.NewRecorder()
	client.handler.ServeHTTP(rw, r)

	assert.Equal(t, "*", rw.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rw.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestHandlerOptsPublicURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "http://api.devcamper.io/api/v1/auth/forgotpassword", nil)

	opts := HandlerOpts{URL: "https://devcamper.io/"}
	assert.Equal(t, "https://devcamper.io", opts.publicURL(r))

	opts.URL = ""
	assert.Equal(t, "http://api.devcamper.io", opts.publicURL(r))
}
