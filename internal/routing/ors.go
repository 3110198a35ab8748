// Package routing talks to the OpenRouteService directions API.
package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inflationfighter/price-service/internal/catalog"
	xhttp "github.com/inflationfighter/price-service/internal/http"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

const (
	// DefaultBaseURL is the public OpenRouteService endpoint.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultProfile is the routing profile used for shopping trips.
	DefaultProfile = "driving-car"
)

var (
	// ErrNoAPIKey is returned by NewORSClient when no key is configured.
	ErrNoAPIKey = errors.New("openrouteservice api key is empty")

	// ErrMalformedResponse is returned when the response has no usable route.
	ErrMalformedResponse = errors.New("malformed directions response")
)

// StatusError is returned for non-2xx responses.
type StatusError = xhttp.StatusError

// Config holds OpenRouteService settings.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Profile           string        `mapstructure:"profile"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// DefaultConfig returns the default configuration without an API key.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Profile:           DefaultProfile,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 1,
		Burst:             5,
	}
}

// ORSClient implements optimizer.RouteProvider.
type ORSClient struct {
	client   *xhttp.Client
	endpoint string
	apiKey   string
}

// NewORSClient creates a client. It returns ErrNoAPIKey when cfg.APIKey is empty.
func NewORSClient(cfg Config) (*ORSClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}

	httpCfg := xhttp.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	httpCfg.RequestsPerSecond = cfg.RequestsPerSecond
	httpCfg.Burst = cfg.Burst

	return &ORSClient{
		client:   xhttp.NewClient(httpCfg),
		endpoint: fmt.Sprintf("%s/v2/directions/%s", strings.TrimRight(cfg.BaseURL, "/"), cfg.Profile),
		apiKey:   cfg.APIKey,
	}, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary *struct {
			Distance *float64 `json:"distance"` // metres
			Duration *float64 `json:"duration"` // seconds
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// Directions implements optimizer.RouteProvider with a single request.
func (c *ORSClient) Directions(ctx context.Context, points []catalog.Location) (optimizer.Directions, error) {
	if len(points) < 2 {
		return optimizer.Directions{}, fmt.Errorf("directions need at least 2 points, got %d", len(points))
	}

	body := directionsRequest{Coordinates: make([][]float64, 0, len(points))}
	for _, p := range points {
		// ORS expects [longitude, latitude]
		body.Coordinates = append(body.Coordinates, []float64{p.Longitude, p.Latitude})
	}

	var resp directionsResponse
	err := c.client.PostJSON(ctx, c.endpoint, map[string]string{"Authorization": c.apiKey}, body, &resp)
	if errors.Is(err, xhttp.ErrRateLimited) {
		return optimizer.Directions{}, fmt.Errorf("%w: %w", optimizer.ErrProviderBusy, err)
	}
	if err != nil {
		return optimizer.Directions{}, fmt.Errorf("directions request: %w", err)
	}

	if len(resp.Routes) == 0 {
		return optimizer.Directions{}, fmt.Errorf("%w: no routes", ErrMalformedResponse)
	}
	route := resp.Routes[0]
	if route.Summary == nil || route.Summary.Distance == nil || route.Summary.Duration == nil {
		return optimizer.Directions{}, fmt.Errorf("%w: missing summary", ErrMalformedResponse)
	}

	return optimizer.Directions{
		DistanceKm:      *route.Summary.Distance / 1000,
		DurationMinutes: *route.Summary.Duration / 60,
		Polyline:        route.Geometry,
	}, nil
}
