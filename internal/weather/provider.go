package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoData is returned when a series has nothing usable: the fetch failed,
	// returned no records, or every record was malformed.
	ErrNoData = errors.New("no data")

	// ErrForecastUnavailable is returned by the service when either series
	// could not be loaded. No partial result accompanies it.
	ErrForecastUnavailable = errors.New("forecast unavailable")

	// ErrInvalidHorizon is returned for horizons below one hour.
	ErrInvalidHorizon = errors.New("horizon must be at least one hour")
)

// Source abstracts the remote data channel (e.g. a ThingSpeak channel).
// A non-nil error signals a failed fetch.
type Source interface {
	Name() string
	Fetch(ctx context.Context, id SeriesID) ([]RawRecord, error)
}

// Store is the contract the outlook history stores must satisfy.
type Store interface {
	SaveOutlook(ctx context.Context, o Outlook) error
	GetLatest(ctx context.Context) (Outlook, error)
	GetRange(ctx context.Context, from, to time.Time) ([]Outlook, error)
}
