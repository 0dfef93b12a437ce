package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/davecheney/eic"
	"github.com/davecheney/eic/maps"
	_ "github.com/mattn/go-sqlite3"
)

// event is one dispatch observed during a run.
type event struct {
	step     uint64
	vector   eic.Vector
	spurious bool
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	map         TEXT    NOT NULL,
	fingerprint TEXT    NOT NULL,
	steps       INTEGER NOT NULL,
	started     TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS dispatches (
	run      INTEGER NOT NULL REFERENCES runs(id),
	step     INTEGER NOT NULL,
	vector   INTEGER NOT NULL,
	spurious INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS dispatches_run ON dispatches(run);
`

// traceDB stores dispatch traces in sqlite.
type traceDB struct {
	db *sql.DB
}

func openTrace(path string) (*traceDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	return &traceDB{db: db}, nil
}

func (t *traceDB) Close() error { return t.db.Close() }

// record stores a run and its events, returning the run id.
func (t *traceDB) record(m *eic.MemoryMap, steps uint64, events []event) (int64, error) {
	tx, err := t.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs (map, fingerprint, steps, started) VALUES (?, ?, ?, ?)`,
		m.Name, maps.Fingerprint(m), int64(steps), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO dispatches (run, step, vector, spurious) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.Exec(id, int64(e.step), int64(e.vector), e.spurious); err != nil {
			return 0, fmt.Errorf("record dispatch at step %d: %w", e.step, err)
		}
	}
	return id, tx.Commit()
}

// latest returns the id of the most recent run.
func (t *traceDB) latest() (int64, error) {
	var id sql.NullInt64
	if err := t.db.QueryRow(`SELECT MAX(id) FROM runs`).Scan(&id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, fmt.Errorf("trace holds no runs")
	}
	return id.Int64, nil
}

type runInfo struct {
	name        string
	fingerprint string
	steps       int64
}

func (t *traceDB) run(id int64) (runInfo, error) {
	var r runInfo
	err := t.db.QueryRow(`SELECT map, fingerprint, steps FROM runs WHERE id = ?`, id).Scan(&r.name, &r.fingerprint, &r.steps)
	if err == sql.ErrNoRows {
		return r, fmt.Errorf("trace holds no run %d", id)
	}
	return r, err
}

type total struct {
	vector   eic.Vector
	spurious bool
	count    uint64
}

// totals returns the number of dispatches per vector in run id, handled
// vectors first in vector order, then the spurious total.
func (t *traceDB) totals(id int64) ([]total, error) {
	rows, err := t.db.Query(`SELECT vector, spurious, COUNT(*) FROM dispatches WHERE run = ? GROUP BY spurious, vector ORDER BY spurious, vector`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []total
	for rows.Next() {
		var (
			vector int64
			tt     total
		)
		if err := rows.Scan(&vector, &tt.spurious, &tt.count); err != nil {
			return nil, err
		}
		tt.vector = eic.Vector(vector)
		totals = append(totals, tt)
	}
	return totals, rows.Err()
}
