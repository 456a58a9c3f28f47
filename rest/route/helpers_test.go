package route

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/notify"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/evergreen-ci/gimlet"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testPassword = "123456"
	testZipcode  = "02215"
)

func newMockConnector() *data.MockConnector {
	return &data.MockConnector{
		Geocoder: &thirdparty.MockGeocoder{Results: map[string][]thirdparty.GeoResult{
			testZipcode: {{Latitude: 42.35, Longitude: -71.10, City: "Boston", Zipcode: testZipcode}},
			"02118":     {{Latitude: 42.34, Longitude: -71.07, City: "Boston", Zipcode: "02118"}},
			"10001":     {{Latitude: 40.75, Longitude: -73.99, City: "New York", Zipcode: "10001"}},
		}},
		Mailer: &notify.MockMailer{},
		URL:    "/uploads",
	}
}

func newTestOpts(t *testing.T, sc data.Connector) HandlerOpts {
	tokens, err := auth.NewTokenManager("route-test-secret", time.Hour)
	require.NoError(t, err)
	return HandlerOpts{
		Connector:      sc,
		Tokens:         tokens,
		BcryptCost:     4,
		MaxUploadBytes: 1024 * 1024,
		CookieTTL:      time.Hour,
		URL:            "http://devcamper.test",
		CORSOrigins:    []string{"*"},
	}
}

func addUser(t *testing.T, sc data.Connector, name string, role devcamper.Role) *user.DBUser {
	u := &user.DBUser{Name: name, Email: name + "@devcamper.io", Role: role}
	require.NoError(t, u.SetPassword(testPassword, 4))
	require.NoError(t, sc.CreateUser(context.Background(), u))
	return u
}

func addBootcamp(t *testing.T, sc data.Connector, owner *user.DBUser, name string) *bootcamp.Bootcamp {
	b := &bootcamp.Bootcamp{
		Name:        name,
		Description: "A bootcamp for testing",
		Address:     testZipcode,
		Careers:     []devcamper.Career{devcamper.CareerWebDevelopment},
	}
	require.NoError(t, sc.CreateBootcamp(context.Background(), owner, b))
	return b
}

func jsonRequest(t *testing.T, method, url string, body any) *http.Request {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	r := httptest.NewRequest(method, url, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// run parses and runs the handler the way the app does, with the given user
// attached to the request.
func run(t *testing.T, h gimlet.RouteHandler, r *http.Request, vars map[string]string, u *user.DBUser) gimlet.Responder {
	ctx := r.Context()
	if u != nil {
		ctx = setRequestUser(ctx, u)
	}
	if vars != nil {
		r = gimlet.SetURLVars(r, vars)
	}
	handler := enveloped(h).Factory()
	require.NoError(t, handler.Parse(ctx, r))
	return handler.Run(ctx)
}

func success(t *testing.T, resp gimlet.Responder) SuccessResponse {
	out, ok := resp.Data().(SuccessResponse)
	require.True(t, ok, "expected a success response, got %#v", resp.Data())
	require.True(t, out.Success)
	require.Equal(t, resp.Status(), out.StatusCode)
	return out
}

func failure(t *testing.T, resp gimlet.Responder, status int) FailureResponse {
	out, ok := resp.Data().(FailureResponse)
	require.True(t, ok, "expected a failure response, got %#v", resp.Data())
	require.False(t, out.Success)
	require.Equal(t, status, resp.Status())
	require.Equal(t, status, out.StatusCode)
	return out
}

func hexID() string { return primitive.NewObjectID().Hex() }
