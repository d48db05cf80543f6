package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

const feedBody = `{
  "channel": {"id": 3007093, "field1": "Temperature", "field2": "Humidity"},
  "feeds": [
    {"created_at": "2025-08-01T10:00:00Z", "entry_id": 1, "field1": "27.5"},
    {"created_at": "2025-08-01T11:00:00Z", "entry_id": 2, "field1": null},
    {"created_at": "2025-08-01T12:00:00Z", "entry_id": 3, "field1": 28.25},
    {"created_at": "2025-08-01T13:00:00Z", "entry_id": 4}
  ]
}`

var temperature = weather.SeriesID{Name: "temperature", Field: 1}

func TestThingSpeakFetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	p := NewThingSpeakProvider(srv.Client(), ThingSpeakConfig{
		BaseURL:    srv.URL + "/",
		ChannelID:  " 3007093",
		ReadAPIKey: "KEY",
		Results:    800,
	})

	records, err := p.Fetch(context.Background(), temperature)
	require.NoError(t, err)

	assert.Equal(t, "/channels/3007093/fields/1.json", gotPath)
	assert.Equal(t, "api_key=KEY&results=800", gotQuery)
	assert.Equal(t, []weather.RawRecord{
		{Timestamp: "2025-08-01T10:00:00Z", Value: "27.5"},
		{Timestamp: "2025-08-01T11:00:00Z", Value: ""},
		{Timestamp: "2025-08-01T12:00:00Z", Value: "28.25"},
		{Timestamp: "2025-08-01T13:00:00Z", Value: ""},
	}, records)

	s, err := weather.LoadSeries(temperature, records)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestThingSpeakFetch_noKey(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"feeds": []}`))
	}))
	defer srv.Close()

	p := NewThingSpeakProvider(srv.Client(), ThingSpeakConfig{BaseURL: srv.URL, ChannelID: "42", Results: 10})

	records, err := p.Fetch(context.Background(), weather.SeriesID{Name: "humidity", Field: 2})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "results=10", gotQuery)
}

func TestThingSpeakFetch_statusError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `"-1"`, http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewThingSpeakProvider(srv.Client(), ThingSpeakConfig{BaseURL: srv.URL, ChannelID: "42"})

	_, err := p.Fetch(context.Background(), temperature)
	require.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), calls.Load(), "no retries by default")
}

func TestThingSpeakFetch_serverErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	p := NewThingSpeakProvider(srv.Client(), ThingSpeakConfig{BaseURL: srv.URL, ChannelID: "42", MaxRetries: 1})
	p.httpCfg.Backoff.InitialInterval = 1

	records, err := p.Fetch(context.Background(), temperature)
	require.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, int32(2), calls.Load())
}

func TestThingSpeakFetch_badJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	p := NewThingSpeakProvider(srv.Client(), ThingSpeakConfig{BaseURL: srv.URL, ChannelID: "42"})

	_, err := p.Fetch(context.Background(), temperature)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode thingspeak feed")
}

func TestThingSpeakFetch_circuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewThingSpeakProvider(srv.Client(), ThingSpeakConfig{BaseURL: srv.URL, ChannelID: "42"})

	// gobreaker's default trips after more than five consecutive failures.
	var err error
	for i := 0; i < 7; i++ {
		_, err = p.Fetch(context.Background(), temperature)
	}
	require.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(6), calls.Load())
}

func TestThingSpeakFetch_missingChannel(t *testing.T) {
	p := NewThingSpeakProvider(http.DefaultClient, ThingSpeakConfig{})

	_, err := p.Fetch(context.Background(), temperature)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errUnexpected))
}

func TestDoRequestWithResilience_config(t *testing.T) {
	cb := newCircuitBreaker("test")
	build := func() (*http.Request, error) { return http.NewRequest(http.MethodGet, "http://invalid.test", nil) }

	_, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, cb, build)
	require.ErrorIs(t, err, errNoHTTPClient)

	_, err = doRequestWithResilience(context.Background(), HTTPClientConfig{
		Client:  http.DefaultClient,
		Backoff: BackoffConfig{MaxRetries: 2},
	}, cb, build)
	require.ErrorIs(t, err, errInvalidConfig)
}
