// Package repository persists labeled reference actions.
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/pkg/metrics"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps reference actions in a SQLite database. Each action's
// samples are stored as a JSON array of [velocity, position, effort] triples.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
	now         func() time.Time
	closed      atomic.Bool
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("open store: empty path")
	}
	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// one writer; sqlite serialises writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d;", s.busyTimeout.Milliseconds())); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Append stores entries in one transaction and returns their generated ids
// in order. Either every entry is stored or none is.
func (s *SQLiteStore) Append(ctx context.Context, entries ...Entry) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows := make([]string, len(entries))
	for i, e := range entries {
		if _, ok := model.ParseLabel(e.Label.String()); !ok {
			return nil, fmt.Errorf("append entry %d: unknown label %q", i, e.Label)
		}
		samples, err := encodeSamples(e.Action)
		if err != nil {
			return nil, fmt.Errorf("append entry %d: %w", i, err)
		}
		rows[i] = samples
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reference_actions (id, label, samples, created_ns) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().UnixNano()
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = uuid.NewString()
		if _, err := stmt.ExecContext(ctx, ids[i], e.Label.String(), rows[i], now); err != nil {
			metrics.RecordErrorByComponent("repository", "insert")
			return nil, fmt.Errorf("insert action: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordErrorByComponent("repository", "commit")
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return ids, nil
}

// All returns every record in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, samples, created_ns FROM reference_actions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return out, nil
}

// Count returns the number of records per label. Both labels are always present.
func (s *SQLiteStore) Count(ctx context.Context) (map[model.Label]int, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	counts := make(map[model.Label]int)
	for _, label := range model.Labels() {
		counts[label] = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, COUNT(*) FROM reference_actions GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[model.Label(label)] = n
	}
	return counts, rows.Err()
}

// Close releases the database. Further calls return ErrClosed.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		label     string
		samples   string
		createdNs int64
	)
	if err := row.Scan(&rec.ID, &label, &samples, &createdNs); err != nil {
		return Record{}, err
	}
	action, err := decodeSamples(samples)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.Label = model.Label(label)
	rec.Action = action
	rec.CreatedAt = time.Unix(0, createdNs)
	return rec, nil
}

func encodeSamples(action model.Action) (string, error) {
	triples := make([][3]float64, 0, action.Len())
	for _, p := range action.All() {
		triples = append(triples, [3]float64{p.Velocity, p.Position, p.Effort})
	}
	b, err := json.Marshal(triples)
	if err != nil {
		return "", fmt.Errorf("encode samples: %w", err)
	}
	return string(b), nil
}

func decodeSamples(s string) (model.Action, error) {
	var triples [][3]float64
	if err := json.Unmarshal([]byte(s), &triples); err != nil {
		return model.Action{}, fmt.Errorf("decode samples: %w", err)
	}
	points := make([]model.DataPoint, len(triples))
	for i, t := range triples {
		points[i] = model.DataPoint{Velocity: t[0], Position: t[1], Effort: t[2]}
	}
	return model.NewAction(points), nil
}
