package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Index keeps plan transitions in sqlite so matches can be queried after
// the fact. Writes happen on a background goroutine and are dropped if it
// falls behind; the Recorder remains the complete log.
type Index struct {
	db   *sql.DB
	ch   chan Record
	wg   sync.WaitGroup
	once sync.Once

	// mu orders sends on ch against close(ch).
	mu     sync.RWMutex
	closed bool
}

// Transition is one row of the plan_transitions table.
type Transition struct {
	Tick     int
	Agent    int
	PlanID   string
	Posture  string
	Step     string
	Reason   string
	Recorded time.Time
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS plan_transitions (
			tick INTEGER NOT NULL,
			agent INTEGER NOT NULL,
			plan_id TEXT NOT NULL,
			posture TEXT NOT NULL,
			step TEXT NOT NULL,
			reason TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_agent_tick ON plan_transitions(agent, tick);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open index %s: %w", path, err)
		}
	}

	ix := &Index{db: db, ch: make(chan Record, 4096)}
	ix.wg.Add(1)
	go func() {
		defer ix.wg.Done()
		ix.loop()
	}()
	return ix, nil
}

// Publish queues transitions. Other records are ignored.
func (ix *Index) Publish(_ context.Context, r Record) {
	if ix == nil || !r.Transition() {
		return
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return
	}
	select {
	case ix.ch <- r:
	default:
	}
}

// Close drains queued rows and closes the database.
func (ix *Index) Close() error {
	var err error
	ix.once.Do(func() {
		ix.mu.Lock()
		ix.closed = true
		close(ix.ch)
		ix.mu.Unlock()
		ix.wg.Wait()
		err = ix.db.Close()
	})
	return err
}

func (ix *Index) loop() {
	insert, err := ix.db.Prepare(`INSERT INTO plan_transitions(tick,agent,plan_id,posture,step,reason,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		for range ix.ch {
		}
		return
	}
	defer insert.Close()
	for r := range ix.ch {
		_, _ = insert.Exec(r.Situation.Tick, r.Situation.Agent, r.PlanID, r.Posture, r.Step, r.Reason,
			time.Now().UTC().Format(time.RFC3339Nano))
	}
}

// Transitions returns the recorded transitions of agent in tick order.
func (ix *Index) Transitions(ctx context.Context, agent int) ([]Transition, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT tick, agent, plan_id, posture, step, reason, recorded_at FROM plan_transitions WHERE agent = ? ORDER BY tick, rowid`, agent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		var recorded string
		if err := rows.Scan(&t.Tick, &t.Agent, &t.PlanID, &t.Posture, &t.Step, &t.Reason, &recorded); err != nil {
			return nil, err
		}
		t.Recorded, _ = time.Parse(time.RFC3339Nano, recorded)
		out = append(out, t)
	}
	return out, rows.Err()
}
