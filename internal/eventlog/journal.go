// Package eventlog journals manager events to SQLite so operators can inspect
// recent interface churn after the fact. The journal is write-only from the
// manager's point of view; no state is restored from it.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"wifihal/internal/common/fsutil"
	"wifihal/internal/manager"
	"wifihal/pkg/types"
)

const (
	defaultMaxRows      = 10000
	defaultWriteTimeout = 2 * time.Second
	defaultRecentLimit  = 100
)

const schema = `CREATE TABLE IF NOT EXISTS events (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	ts     TEXT NOT NULL,
	name   TEXT NOT NULL,
	iface  TEXT NOT NULL DEFAULT '',
	chip   INTEGER NOT NULL DEFAULT 0,
	fields TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS events_name ON events(name);`

// Options tunes a Journal.
type Options struct {
	// MaxRows bounds the table; older rows are pruned on write. Zero uses the
	// default, negative keeps everything.
	MaxRows int
	Logger  *zerolog.Logger
}

// Journal is a manager.EventPublisher backed by SQLite.
type Journal struct {
	db      *sql.DB
	maxRows int
	log     zerolog.Logger
}

var _ manager.EventPublisher = (*Journal)(nil)

// Open opens or creates the journal database at path.
func Open(path string, opts Options) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	path, err := fsutil.PrepareFile(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	j := &Journal{db: db, maxRows: opts.MaxRows, log: zerolog.Nop()}
	if j.maxRows == 0 {
		j.maxRows = defaultMaxRows
	}
	if opts.Logger != nil {
		j.log = opts.Logger.With().Str("component", "eventlog").Logger()
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Publish stores e. Write failures are logged and otherwise ignored.
func (j *Journal) Publish(e manager.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()
	if err := j.Append(ctx, e); err != nil {
		j.log.Error().Err(err).Str("event", e.Name).Msg("journal write failed")
	}
}

// Append stores e and prunes rows beyond the configured bound.
func (j *Journal) Append(ctx context.Context, e manager.Event) error {
	fields := []byte("{}")
	if len(e.Fields) > 0 {
		b, err := json.Marshal(e.Fields)
		if err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}
		fields = b
	}
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO events (ts, name, iface, chip, fields) VALUES (?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339Nano), e.Name, e.Iface, e.Chip, string(fields),
	)
	if err != nil {
		return fmt.Errorf("insert event %q: %w", e.Name, err)
	}
	if j.maxRows < 0 {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, `DELETE FROM events WHERE id <= ?`, id-int64(j.maxRows)); err != nil {
		return fmt.Errorf("prune events: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. A non-positive limit uses
// the default.
func (j *Journal) Recent(ctx context.Context, limit int) ([]types.EventRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, name, iface, chip, fields FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []types.EventRecord{}
	for rows.Next() {
		var (
			rec    types.EventRecord
			ts     string
			fields string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Name, &rec.Iface, &rec.Chip, &fields); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if rec.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse event time %q: %w", ts, err)
		}
		if fields != "" && fields != "{}" {
			if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
				return nil, fmt.Errorf("decode fields of event %d: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// Count returns the number of stored events.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
