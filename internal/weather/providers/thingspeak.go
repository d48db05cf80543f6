package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

// DefaultThingSpeakURL is the public ThingSpeak API endpoint.
const DefaultThingSpeakURL = "https://api.thingspeak.com"

// ThingSpeakConfig describes one channel to read from.
type ThingSpeakConfig struct {
	BaseURL    string
	ChannelID  string
	ReadAPIKey string
	Results    int
	MaxRetries int
}

// ThingSpeakProvider implements weather.Source for a ThingSpeak channel.
type ThingSpeakProvider struct {
	name       string
	baseURL    string
	channelID  string
	readAPIKey string
	results    int
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

func NewThingSpeakProvider(client *http.Client, cfg ThingSpeakConfig) *ThingSpeakProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultThingSpeakURL
	}

	return &ThingSpeakProvider{
		name:       "thingspeak",
		baseURL:    baseURL,
		channelID:  strings.TrimSpace(cfg.ChannelID),
		readAPIKey: cfg.ReadAPIKey,
		results:    cfg.Results,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      cfg.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("thingspeak"),
	}
}

func (p *ThingSpeakProvider) Name() string {
	return p.name
}

// Fetch reads the most recent entries of one channel field.
func (p *ThingSpeakProvider) Fetch(ctx context.Context, id weather.SeriesID) ([]weather.RawRecord, error) {
	if p.channelID == "" {
		return nil, fmt.Errorf("thingspeak channel id is not configured")
	}
	if id.Field < 1 {
		return nil, fmt.Errorf("thingspeak field must be positive, got %d", id.Field)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		if p.results > 0 {
			values.Set("results", strconv.Itoa(p.results))
		}
		if p.readAPIKey != "" {
			values.Set("api_key", p.readAPIKey)
		}

		u := fmt.Sprintf("%s/channels/%s/fields/%d.json", p.baseURL, url.PathEscape(p.channelID), id.Field)
		if enc := values.Encode(); enc != "" {
			u += "?" + enc
		}
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Feeds []map[string]json.RawMessage `json:"feeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode thingspeak feed: %w", err)
	}

	fieldKey := "field" + strconv.Itoa(id.Field)
	records := make([]weather.RawRecord, 0, len(payload.Feeds))
	for _, entry := range payload.Feeds {
		records = append(records, weather.RawRecord{
			Timestamp: rawString(entry["created_at"]),
			Value:     rawString(entry[fieldKey]),
		})
	}

	return records, nil
}

// rawString returns the text of a JSON string or number. Null, missing and
// other kinds yield "" so the loader drops them.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
