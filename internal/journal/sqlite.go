// Package journal appends every dispatched simulation event to a SQLite
// database. Writes are queued and committed by a single writer goroutine so
// the simulator never blocks on disk.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/sim"
)

const queueSize = 4096

// Entry is one journaled event.
type Entry struct {
	Seq        int64
	Session    string
	Event      event.Event
	Line       string
	Recipients []string
}

type req struct {
	entry *Entry
	flush chan struct{}
}

// SQLite is a sim.Observer writing to a SQLite file.
type SQLite struct {
	db      *sql.DB
	session string
	logger  *slog.Logger

	// mu guards closed and every send on ch against Close
	mu     sync.RWMutex
	closed bool
	ch     chan req
	wg     sync.WaitGroup
	once   sync.Once

	dropped atomic.Int64
}

var _ sim.Observer = (*SQLite)(nil)

// Open creates or opens the journal at path and starts its writer. Use
// ":memory:" for a throwaway journal.
func Open(path, session string, logger *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	j := &SQLite{
		db:      db,
		session: session,
		logger:  logger.With("session_id", session),
		ch:      make(chan req, queueSize),
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.loop()
	}()
	return j, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to set %s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			session TEXT NOT NULL,
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			targets_json TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			line TEXT NOT NULL,
			recipients_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session_tick ON events(session, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor_tick ON events(actor_id, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to create journal schema: %w", err)
		}
	}
	return nil
}

// OnEvent queues d for writing. When the writer falls behind the entry is
// dropped and counted.
func (j *SQLite) OnEvent(d sim.Dispatched) {
	if j == nil {
		return
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.ch <- req{entry: &Entry{Session: j.session, Event: d.Event, Line: d.Line, Recipients: d.Recipients}}:
	default:
		if n := j.dropped.Add(1); n == 1 || n%100 == 0 {
			j.logger.Warn("Journal queue full, dropping events", "dropped", n)
		}
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (j *SQLite) Dropped() int64 {
	return j.dropped.Load()
}

// Flush blocks until everything queued before the call is committed.
func (j *SQLite) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := j.send(ctx, req{flush: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send queues r, waiting for room. A closed journal accepts nothing; a
// pending flush is released at once.
func (j *SQLite) send(ctx context.Context, r req) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		if r.flush != nil {
			close(r.flush)
		}
		return nil
	}
	select {
	case j.ch <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the writer after draining the queue and closes the database.
func (j *SQLite) Close() error {
	var err error
	j.once.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.ch)
		j.mu.Unlock()
		j.wg.Wait()
		err = j.db.Close()
	})
	return err
}

func (j *SQLite) loop() {
	ctx := context.Background()
	insert, err := j.db.Prepare(`INSERT OR IGNORE INTO events(id,session,tick,kind,actor_id,targets_json,payload_json,line,recipients_json) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		j.logger.Error("Failed to prepare journal insert", "error", err)
	} else {
		defer insert.Close()
	}

	var tx *sql.Tx
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			j.logger.Error("Failed to commit journal batch", "error", err)
		}
		tx = nil
	}

	for r := range j.ch {
		if r.flush != nil {
			commit()
			close(r.flush)
			continue
		}
		if insert == nil {
			continue
		}
		if tx == nil {
			if tx, err = j.db.BeginTx(ctx, nil); err != nil {
				j.logger.Error("Failed to begin journal batch", "error", err)
				tx = nil
				continue
			}
		}
		if err := j.write(tx.Stmt(insert), r.entry); err != nil {
			j.logger.Error("Failed to journal event", "error", err, "event_id", r.entry.Event.ID)
			_ = tx.Rollback()
			tx = nil
			continue
		}
		// Commit whenever the queue drains so readers see recent events.
		if len(j.ch) == 0 {
			commit()
		}
	}
	commit()
}

func (j *SQLite) write(stmt *sql.Stmt, e *Entry) error {
	targets, err := json.Marshal(nonNil(e.Event.TargetIDs))
	if err != nil {
		return err
	}
	payload, err := json.Marshal(e.Event.Payload)
	if err != nil {
		return err
	}
	recipients, err := json.Marshal(nonNil(e.Recipients))
	if err != nil {
		return err
	}
	_, err = stmt.Exec(
		e.Event.ID.String(),
		e.Session,
		e.Event.Tick,
		string(e.Event.Kind),
		e.Event.ActorID,
		string(targets),
		string(payload),
		e.Line,
		string(recipients),
	)
	return err
}

// Query selects journal entries.
type Query struct {
	Session   string // empty matches every session
	ActorID   string
	SinceTick int
	Limit     int // <= 0 means no limit
}

// Entries returns matching entries in dispatch order.
func (j *SQLite) Entries(ctx context.Context, q Query) ([]Entry, error) {
	stmt := `SELECT seq,id,session,tick,kind,actor_id,targets_json,payload_json,line,recipients_json FROM events WHERE tick >= ?`
	args := []any{q.SinceTick}
	if q.Session != "" {
		stmt += ` AND session = ?`
		args = append(args, q.Session)
	}
	if q.ActorID != "" {
		stmt += ` AND actor_id = ?`
		args = append(args, q.ActorID)
	}
	stmt += ` ORDER BY seq`
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			en                             Entry
			id, kind                       string
			targets, payload, recipientsJS string
		)
		if err := rows.Scan(&en.Seq, &id, &en.Session, &en.Event.Tick, &kind, &en.Event.ActorID, &targets, &payload, &en.Line, &recipientsJS); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		if err := en.Event.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("bad event id %q: %w", id, err)
		}
		en.Event.Kind = event.Kind(kind)
		if err := json.Unmarshal([]byte(targets), &en.Event.TargetIDs); err != nil {
			return nil, fmt.Errorf("bad targets for %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(payload), &en.Event.Payload); err != nil {
			return nil, fmt.Errorf("bad payload for %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(recipientsJS), &en.Recipients); err != nil {
			return nil, fmt.Errorf("bad recipients for %s: %w", id, err)
		}
		out = append(out, en)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
