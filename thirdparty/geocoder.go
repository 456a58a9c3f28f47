package thirdparty

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/PuerkitoBio/rehttp"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
)

const (
	geocoderMinDelay = 100 * time.Millisecond
	geocoderMaxDelay = 2 * time.Second
)

// GeoResult is one candidate location for a geocoded address.
type GeoResult struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Street           string
	City             string
	State            string
	Zipcode          string
	Country          string
}

// Geocoder resolves a free-form address or postal code to locations, best
// match first.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]GeoResult, error)
}

// MapQuestGeocoder calls the MapQuest address endpoint.
type MapQuestGeocoder struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

// NewMapQuestGeocoder returns a geocoder whose client retries transient
// failures with exponential backoff.
func NewMapQuestGeocoder(conf devcamper.GeocoderConfig) *MapQuestGeocoder {
	return &MapQuestGeocoder{
		Client:  newRetryableClient(conf.MaxRetries),
		BaseURL: conf.URL,
		APIKey:  conf.APIKey,
	}
}

func newRetryableClient(maxRetries int) *http.Client {
	client := utility.GetHTTPClient()
	b := &backoff.Backoff{
		Min:    geocoderMinDelay,
		Max:    geocoderMaxDelay,
		Factor: 2,
		Jitter: true,
	}
	client.Transport = rehttp.NewTransport(client.Transport,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(maxRetries),
			rehttp.RetryHTTPMethods(http.MethodGet),
			rehttp.RetryAny(
				rehttp.RetryTemporaryErr(),
				rehttp.RetryStatuses(
					http.StatusTooManyRequests,
					http.StatusInternalServerError,
					http.StatusBadGateway,
					http.StatusServiceUnavailable,
					http.StatusGatewayTimeout,
				),
			),
		),
		func(attempt rehttp.Attempt) time.Duration {
			return b.ForAttempt(float64(attempt.Index))
		},
	)
	return client
}

// Close returns the client to the shared pool.
func (g *MapQuestGeocoder) Close() {
	if g.Client != nil {
		utility.PutHTTPClient(g.Client)
		g.Client = nil
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     string `json:"street"`
	City       string `json:"adminArea5"`
	State      string `json:"adminArea3"`
	Country    string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (l mapQuestLocation) result() GeoResult {
	stateZip := strings.TrimSpace(l.State + " " + l.PostalCode)
	parts := []string{}
	for _, part := range []string{l.Street, l.City, stateZip, l.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return GeoResult{
		Latitude:         l.LatLng.Lat,
		Longitude:        l.LatLng.Lng,
		FormattedAddress: strings.Join(parts, ", "),
		Street:           l.Street,
		City:             l.City,
		State:            l.State,
		Zipcode:          l.PostalCode,
		Country:          l.Country,
	}
}

func (g *MapQuestGeocoder) Geocode(ctx context.Context, query string) ([]GeoResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("cannot geocode an empty address")
	}

	params := url.Values{}
	params.Set("key", g.APIKey)
	params.Set("location", query)
	apiURL := fmt.Sprintf("%s?%s", g.BaseURL, params.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating geocoder request")
	}
	request.Header.Add("Accept", "application/json")

	resp, err := g.Client.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "calling geocoder")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("geocoder returned unexpected status '%s': %s", resp.Status, string(msg))
	}

	out := mapQuestResponse{}
	if err := gimlet.GetJSON(resp.Body, &out); err != nil {
		return nil, errors.Wrap(err, "decoding geocoder response")
	}
	if out.Info.StatusCode != 0 {
		return nil, errors.Errorf("geocoder returned status %d: %s", out.Info.StatusCode, strings.Join(out.Info.Messages, "; "))
	}

	results := []GeoResult{}
	for _, r := range out.Results {
		for _, loc := range r.Locations {
			results = append(results, loc.result())
		}
	}
	return results, nil
}

// MockGeocoder resolves queries from a fixed table.
type MockGeocoder struct {
	Results map[string][]GeoResult
	Err     error
	Queries []string
}

func (g *MockGeocoder) Geocode(_ context.Context, query string) ([]GeoResult, error) {
	g.Queries = append(g.Queries, query)
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Results[query], nil
}
