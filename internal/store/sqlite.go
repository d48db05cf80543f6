package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/i474232898/weather-trend-forecast/internal/weather"

	_ "modernc.org/sqlite"
)

const outlookSchema = `CREATE TABLE IF NOT EXISTS outlooks (
	id TEXT PRIMARY KEY,
	generated_at INTEGER NOT NULL,
	horizon_hours INTEGER NOT NULL,
	rain_hours INTEGER NOT NULL,
	first_rain_at INTEGER,
	summary TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS outlooks_generated_at ON outlooks(generated_at);`

const outlookColumns = `id, generated_at, horizon_hours, rain_hours, first_rain_at, summary`

// SQLiteStore keeps the outlook history in a SQLite file (pure Go driver
// modernc.org/sqlite). Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB

	maxHistory int
	maxAge     time.Duration

	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string, maxHistory int, maxAge time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn("could not set WAL mode", "error", err)
	}

	if _, err := db.Exec(outlookSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{
		db:         db,
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}, nil
}

// SaveOutlook inserts an outlook and enforces retention in one transaction.
func (s *SQLiteStore) SaveOutlook(ctx context.Context, o weather.Outlook) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var firstRain sql.NullInt64
	if o.FirstRainAt != nil {
		firstRain = sql.NullInt64{Int64: o.FirstRainAt.UnixNano(), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO outlooks(`+outlookColumns+`) VALUES(?,?,?,?,?,?)`,
		o.ID, o.GeneratedAt.UnixNano(), o.HorizonHours, o.RainHours, firstRain, o.Summary)
	if err != nil {
		return fmt.Errorf("insert outlook: %w", err)
	}

	if s.maxHistory > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM outlooks WHERE id NOT IN (
				SELECT id FROM outlooks ORDER BY generated_at DESC, rowid DESC LIMIT ?)`,
			s.maxHistory)
		if err != nil {
			return fmt.Errorf("trim outlooks by count: %w", err)
		}
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge).UnixNano()
		_, err = tx.ExecContext(ctx,
			`DELETE FROM outlooks WHERE generated_at < ? AND id <> (
				SELECT id FROM outlooks ORDER BY generated_at DESC, rowid DESC LIMIT 1)`,
			cutoff)
		if err != nil {
			return fmt.Errorf("trim outlooks by age: %w", err)
		}
	}

	return tx.Commit()
}

// GetLatest returns the most recent outlook.
func (s *SQLiteStore) GetLatest(ctx context.Context) (weather.Outlook, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+outlookColumns+` FROM outlooks ORDER BY generated_at DESC, rowid DESC LIMIT 1`)
	o, err := scanOutlook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Outlook{}, ErrNotFound
	}
	return o, err
}

// GetRange returns all outlooks generated between from and to (inclusive).
func (s *SQLiteStore) GetRange(ctx context.Context, from, to time.Time) ([]weather.Outlook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+outlookColumns+` FROM outlooks
		WHERE generated_at >= ? AND generated_at <= ?
		ORDER BY generated_at ASC, rowid ASC`,
		from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close outlook rows", "error", err)
		}
	}()

	var out []weather.Outlook
	for rows.Next() {
		o, err := scanOutlook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutlook(row rowScanner) (weather.Outlook, error) {
	var (
		o         weather.Outlook
		generated int64
		firstRain sql.NullInt64
	)
	if err := row.Scan(&o.ID, &generated, &o.HorizonHours, &o.RainHours, &firstRain, &o.Summary); err != nil {
		return weather.Outlook{}, err
	}
	o.GeneratedAt = time.Unix(0, generated).UTC()
	if firstRain.Valid {
		ts := time.Unix(0, firstRain.Int64).UTC()
		o.FirstRainAt = &ts
	}
	return o, nil
}
