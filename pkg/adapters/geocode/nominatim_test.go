package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "36.7783", r.URL.Query().Get("lat"))
		assert.Equal(t, "-119.4179", r.URL.Query().Get("lon"))
		assert.Equal(t, "agrimind-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Fresno County, California, United States","address":{"city":"Fresno","state":"California"}}`))
	}))
	defer srv.Close()

	g := NewNominatim(srv.URL+"/", "agrimind-test", time.Second)
	place, err := g.Reverse(context.Background(), 36.7783, -119.4179)
	require.NoError(t, err)
	assert.Equal(t, "Fresno, California", place)
}

func TestReverse_DisplayNameFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":"Somewhere in the Pacific"}`))
	}))
	defer srv.Close()

	place, err := NewNominatim(srv.URL, "", 0).Reverse(context.Background(), 0, -150)
	require.NoError(t, err)
	assert.Equal(t, "Somewhere in the Pacific", place)
}

func TestReverse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"api error", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"error":"Unable to geocode"}`)) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
		{"empty", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewNominatim(srv.URL, "", time.Second).Reverse(context.Background(), 10, 10)
			assert.Error(t, err)
		})
	}
}

func TestReverse_RejectsBadCoordinates(t *testing.T) {
	g := NewNominatim("http://127.0.0.1:0", "", time.Second)
	_, err := g.Reverse(context.Background(), 91, 0)
	assert.Error(t, err)
	_, err = g.Reverse(context.Background(), 0, 181)
	assert.Error(t, err)
}

type failingGeocoder struct{}

func (failingGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return "", errors.New("offline")
}

func TestDescribe_FallsBackToCoordinates(t *testing.T) {
	assert.Equal(t, "36.7783, -119.4179", Describe(context.Background(), failingGeocoder{}, 36.7783, -119.4179))
	assert.Equal(t, "1.5000, 2.2500", Describe(context.Background(), nil, 1.5, 2.25))
}
