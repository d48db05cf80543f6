package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

var (
	// ErrNotFound is returned when no outlook matches the query.
	ErrNotFound = errors.New("no outlook recorded")
)

// MemoryStore is a concurrency-safe in-memory outlook history.
type MemoryStore struct {
	mu sync.RWMutex

	// ordered by GeneratedAt ascending
	outlooks []weather.Outlook

	// retention configuration
	maxHistory int           // max number of outlooks kept
	maxAge     time.Duration // optional max age for outlooks

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveOutlook appends an outlook and enforces retention.
func (s *MemoryStore) SaveOutlook(_ context.Context, o weather.Outlook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outlooks = append(s.outlooks, o)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.outlooks) > s.maxHistory {
		over := len(s.outlooks) - s.maxHistory
		s.outlooks = s.outlooks[over:]
	}

	// Enforce retention by age. The newest outlook is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.outlooks)-1; i++ {
			if !s.outlooks[i].GeneratedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.outlooks = s.outlooks[i:]
		}
	}

	return nil
}

// GetLatest returns the most recent outlook.
func (s *MemoryStore) GetLatest(_ context.Context) (weather.Outlook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.outlooks) == 0 {
		return weather.Outlook{}, ErrNotFound
	}
	return s.outlooks[len(s.outlooks)-1], nil
}

// GetRange returns all outlooks generated between from and to (inclusive).
func (s *MemoryStore) GetRange(_ context.Context, from, to time.Time) ([]weather.Outlook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Outlook
	for _, o := range s.outlooks {
		if !o.GeneratedAt.Before(from) && !o.GeneratedAt.After(to) {
			result = append(result, o)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
