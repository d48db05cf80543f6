package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// FetchSeries reads one series from src and cleans it. Any fetch failure is
// reported as ErrNoData.
func FetchSeries(ctx context.Context, src Source, id SeriesID) (Series, error) {
	records, err := src.Fetch(ctx, id)
	if err != nil {
		return Series{}, fmt.Errorf("%w: %s fetch from %s: %v", ErrNoData, id.Key(), src.Name(), err)
	}
	slog.Debug("series fetched", "series", id.Key(), "source", src.Name(), "records", len(records))
	return LoadSeries(id, records)
}

// LoadSeries turns raw records into a Series. Records with an unparseable
// timestamp or a non-numeric value are dropped. Survivors are stably sorted
// by timestamp and get ElapsedHours relative to the earliest one.
func LoadSeries(id SeriesID, records []RawRecord) (Series, error) {
	if len(records) == 0 {
		return Series{}, fmt.Errorf("%w: %s returned no records", ErrNoData, id.Key())
	}

	readings := make([]Reading, 0, len(records))
	for _, rec := range records {
		ts, ok := parseTimestamp(rec.Timestamp)
		if !ok {
			continue
		}
		v, ok := parseValue(rec.Value)
		if !ok {
			continue
		}
		readings = append(readings, Reading{Timestamp: ts, Value: v})
	}

	if dropped := len(records) - len(readings); dropped > 0 {
		slog.Debug("dropped malformed records", "series", id.Key(), "dropped", dropped)
	}
	if len(readings) == 0 {
		return Series{}, fmt.Errorf("%w: %s has no numeric values", ErrNoData, id.Key())
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	origin := readings[0].Timestamp
	for i := range readings {
		readings[i].ElapsedHours = readings[i].Timestamp.Sub(origin).Seconds() / 3600
	}

	return Series{ID: id, Readings: readings}, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
