package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Street View proxy errors surfaced to the API layer.
var (
	ErrStreetViewBilling    = errors.New("street view billing not enabled")
	ErrStreetViewInvalidKey = errors.New("invalid or expired street view API key")
)

// StreetViewService fetches street-level imagery for an address from the
// Google Street View static API and returns it as an inline data URL.
type StreetViewService struct {
	client  *resty.Client
	apiKey  string
	baseURL string
	size    string
	fov     int
	pitch   int
}

// StreetViewConfig holds configuration for the Street View client.
type StreetViewConfig struct {
	APIKey  string
	BaseURL string
	Size    string
	FOV     int
	Pitch   int
	Timeout time.Duration
}

// NewStreetViewService creates a new Street View client.
// Parameters:
//   - cfg: client configuration including the Google API key.
// Returns:
//   - *StreetViewService: initialized client.
func NewStreetViewService(cfg *StreetViewConfig) *StreetViewService {
	client := resty.New()

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/streetview"
	}
	size := cfg.Size
	if size == "" {
		size = "640x640"
	}
	fov := cfg.FOV
	if fov == 0 {
		fov = 90
	}

	return &StreetViewService{
		client:  client,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		size:    size,
		fov:     fov,
		pitch:   cfg.Pitch,
	}
}

// FetchStreetView fetches the street view image for an address.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - address: free-text location to photograph.
// Returns:
//   - string: base64 data URL suitable for direct display.
//   - error: ErrStreetViewBilling, ErrStreetViewInvalidKey, or a wrapped
//     transport error.
func (s *StreetViewService) FetchStreetView(ctx context.Context, address string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"size":     s.size,
			"location": address,
			"key":      s.apiKey,
			"fov":      strconv.Itoa(s.fov),
			"pitch":    strconv.Itoa(s.pitch),
		}).
		Get(s.baseURL)

	if err != nil {
		return "", fmt.Errorf("failed to fetch street view image: %w", err)
	}

	if resp.StatusCode() != 200 {
		body := strings.ToLower(string(resp.Body()))
		switch {
		case strings.Contains(body, "billing"):
			return "", ErrStreetViewBilling
		case strings.Contains(body, "invalid"), strings.Contains(body, "expired"):
			return "", ErrStreetViewInvalidKey
		default:
			return "", fmt.Errorf("street view request failed: HTTP %d", resp.StatusCode())
		}
	}

	encoded := base64.StdEncoding.EncodeToString(resp.Body())
	return "data:image/jpeg;base64," + encoded, nil
}
