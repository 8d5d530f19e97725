// Package sqlite persists registry snapshots in a SQLite database.
// Records are stored as JSON payloads keyed by id; holdings carry
// their interval in indexed columns so date-range queries run in SQL
// instead of scanning payloads.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id      TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS people (
	id      TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS positions (
	id      TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS holdings (
	id          TEXT PRIMARY KEY,
	position_id TEXT NOT NULL,
	person_id   TEXT NOT NULL,
	start_date  TEXT NOT NULL,
	end_date    TEXT,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_holdings_position_interval
	ON holdings (position_id, start_date, end_date);
CREATE INDEX IF NOT EXISTS idx_holdings_person
	ON holdings (person_id);
CREATE TABLE IF NOT EXISTS sync_state (
	source      TEXT PRIMARY KEY,
	last_synced TEXT NOT NULL
);
`

// Store is a SQLite-backed registry snapshot store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent savers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the full registry state in one transaction, replacing
// the previous snapshot.
func (s *Store) Save(ctx context.Context, reg *registry.Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", s.path, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"organizations", "people", "positions", "holdings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.WrapIO("clear "+table, s.path, err)
		}
	}

	for _, org := range reg.ListOrganizations() {
		if err := insertPayload(ctx, tx, "organizations", string(org.ID), org); err != nil {
			return err
		}
	}
	for _, p := range reg.ListPeople() {
		if err := insertPayload(ctx, tx, "people", string(p.ID), p); err != nil {
			return err
		}
	}
	for _, pos := range reg.ListPositions() {
		if err := insertPayload(ctx, tx, "positions", string(pos.ID), pos); err != nil {
			return err
		}
	}
	for _, h := range reg.Holdings().List() {
		payload, err := json.Marshal(h)
		if err != nil {
			return errors.WrapParse("json", string(h.ID), err)
		}
		var end any
		if !h.End.IsZero() {
			end = h.End.String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO holdings (id, position_id, person_id, start_date, end_date, payload)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			string(h.ID), string(h.PositionID), string(h.PersonID), h.Start.String(), end, string(payload))
		if err != nil {
			return errors.WrapIO("insert holding", s.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIO("commit", s.path, err)
	}
	return nil
}

// Load reads the snapshot back into a fresh registry. Organizations
// load in two passes so parent references resolve regardless of id
// order; holdings load last.
func (s *Store) Load(ctx context.Context) (*registry.Registry, error) {
	reg := registry.New()

	var orgs []*registry.Organization
	if err := scanPayloads(ctx, s.db, "organizations", &orgs); err != nil {
		return nil, err
	}
	for _, org := range orgs {
		parent := org.ParentID
		org.ParentID = ""
		if err := reg.SetOrganization(org); err != nil {
			return nil, err
		}
		org.ParentID = parent
	}
	for _, org := range orgs {
		if org.ParentID == "" {
			continue
		}
		if err := reg.SetOrganization(org); err != nil {
			return nil, err
		}
	}

	var people []*registry.Person
	if err := scanPayloads(ctx, s.db, "people", &people); err != nil {
		return nil, err
	}
	for _, p := range people {
		if err := reg.SetPerson(p); err != nil {
			return nil, err
		}
	}

	var positions []*registry.Position
	if err := scanPayloads(ctx, s.db, "positions", &positions); err != nil {
		return nil, err
	}
	for _, p := range positions {
		if err := reg.AddPosition(p); err != nil {
			return nil, err
		}
	}

	var holdings []*registry.PositionHolding
	if err := scanPayloads(ctx, s.db, "holdings", &holdings); err != nil {
		return nil, err
	}
	for _, h := range holdings {
		if err := reg.Holdings().Put(h); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// HoldingsInRange returns a position's holdings whose intervals touch
// [from, to], end-inclusive, via the interval index. An open-ended
// holding overlaps any range at or after its start.
func (s *Store) HoldingsInRange(ctx context.Context, positionID registry.PositionID, from, to registry.Date) ([]*registry.PositionHolding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM holdings
		 WHERE position_id = ?
		   AND start_date <= ?
		   AND (end_date IS NULL OR end_date >= ?)
		 ORDER BY start_date, id`,
		string(positionID), to.String(), from.String())
	if err != nil {
		return nil, errors.WrapIO("query holdings", s.path, err)
	}
	defer rows.Close()

	var out []*registry.PositionHolding
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.WrapIO("scan holding", s.path, err)
		}
		var h registry.PositionHolding
		if err := json.Unmarshal([]byte(payload), &h); err != nil {
			return nil, errors.WrapParse("json", s.path, err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// SaveFreshness persists the per-source sync timestamps.
func (s *Store) SaveFreshness(ctx context.Context, f *sources.Freshness) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", s.path, err)
	}
	defer tx.Rollback()

	for id, at := range f.Snapshot() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sync_state (source, last_synced) VALUES (?, ?)
			 ON CONFLICT(source) DO UPDATE SET last_synced = excluded.last_synced`,
			id.String(), at.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return errors.WrapIO("upsert sync state", s.path, err)
		}
	}
	return tx.Commit()
}

// LoadFreshness restores the per-source sync timestamps.
func (s *Store) LoadFreshness(ctx context.Context) (*sources.Freshness, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, last_synced FROM sync_state`)
	if err != nil {
		return nil, errors.WrapIO("query sync state", s.path, err)
	}
	defer rows.Close()

	f := sources.NewFreshness()
	for rows.Next() {
		var source, stamp string
		if err := rows.Scan(&source, &stamp); err != nil {
			return nil, errors.WrapIO("scan sync state", s.path, err)
		}
		at, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, errors.WrapParse("time", stamp, err)
		}
		f.Record(sources.ID(source), at)
	}
	return f, rows.Err()
}

func insertPayload(ctx context.Context, tx *sql.Tx, table, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.WrapParse("json", id, err)
	}
	query := fmt.Sprintf("INSERT INTO %s (id, payload) VALUES (?, ?)", table)
	if _, err := tx.ExecContext(ctx, query, id, string(payload)); err != nil {
		return errors.WrapIO("insert "+table, id, err)
	}
	return nil
}

func scanPayloads[T any](ctx context.Context, db *sql.DB, table string, out *[]*T) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT payload FROM %s ORDER BY id", table))
	if err != nil {
		return errors.WrapIO("query "+table, table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return errors.WrapIO("scan "+table, table, err)
		}
		v := new(T)
		if err := json.Unmarshal([]byte(payload), v); err != nil {
			return errors.WrapParse("json", table, err)
		}
		*out = append(*out, v)
	}
	return rows.Err()
}
