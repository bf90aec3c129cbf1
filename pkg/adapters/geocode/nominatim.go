// Package geocode resolves device coordinates to place names.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/agrimind/pkg/ports"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultUserAgent identifies requests, as Nominatim's usage policy requires.
const DefaultUserAgent = "agrimind/1.0"

// Nominatim is a reverse geocoder speaking the Nominatim /reverse API.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

var _ ports.Geocoder = (*Nominatim)(nil)

// NewNominatim creates a geocoder. Empty arguments take the defaults.
func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Nominatim{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		Village string `json:"village"`
		Town    string `json:"town"`
		City    string `json:"city"`
		County  string `json:"county"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// place prefers "City, State" over the long display name.
func (r reverseResponse) place() string {
	locality := firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village, r.Address.County)
	region := firstNonEmpty(r.Address.State, r.Address.Country)
	switch {
	case locality != "" && region != "":
		return locality + ", " + region
	case locality != "":
		return locality
	default:
		return r.DisplayName
	}
}

// Reverse returns a human-readable place name for the coordinates.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("geocode: decode response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("geocode: %s", body.Error)
	}
	place := body.place()
	if place == "" {
		return "", errors.New("geocode: no place found")
	}
	return place, nil
}

// ValidateCoordinates rejects latitudes outside [-90, 90] and longitudes
// outside [-180, 180].
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}

// FormatCoordinates renders coordinates the way they are shown when no place
// name is available, e.g. "36.7783, -119.4179".
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

// Describe resolves coordinates with g and degrades to the raw coordinate
// string on any failure. g may be nil.
func Describe(ctx context.Context, g ports.Geocoder, lat, lon float64) string {
	if g == nil {
		return FormatCoordinates(lat, lon)
	}
	place, err := g.Reverse(ctx, lat, lon)
	if err != nil {
		slog.Debug("reverse geocoding failed, using coordinates", "lat", lat, "lon", lon, "err", err)
		return FormatCoordinates(lat, lon)
	}
	return place
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
