package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xtding233/enhance-sim/internal/enhance"
)

// Record is one saved aggregation: a few queryable columns plus the full
// report as JSON.
type Record struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Preset     string         `json:"preset"`
	TargetTier int            `json:"target_tier"`
	Runs       int            `json:"runs"`
	Seed       uint64         `json:"seed"`
	Report     enhance.Report `json:"report"`
}

// Store keeps past aggregate reports in a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// sqlite handles one writer at a time
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			created_at  INTEGER NOT NULL,
			preset      TEXT NOT NULL,
			target_tier INTEGER NOT NULL,
			runs        INTEGER NOT NULL,
			seed        INTEGER NOT NULL,
			report      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`)
	if err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

// Save persists one record.
func (s *Store) Save(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, created_at, preset, target_tier, runs, seed, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Unix(), rec.Preset, rec.TargetTier, rec.Runs, int64(rec.Seed), string(body))
	if err != nil {
		return fmt.Errorf("save report %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, preset, target_tier, runs, seed, report
		 FROM reports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec     Record
			created int64
			seed    int64
			body    string
		)
		if err := rows.Scan(&rec.ID, &created, &rec.Preset, &rec.TargetTier, &rec.Runs, &seed, &body); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.CreatedAt = time.Unix(created, 0).UTC()
		rec.Seed = uint64(seed)
		if err := json.Unmarshal([]byte(body), &rec.Report); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
