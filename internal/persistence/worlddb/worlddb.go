// Package worlddb stores named worlds and their map pins in sqlite.
// Worlds are just (name, seed); all terrain derives from the seed, so
// this is the only state that outlives a session.
package worlddb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type World struct {
	ID        int64
	Name      string
	Seed      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Pin struct {
	Name string
	X, Z int
}

var ErrNotFound = errors.New("worlddb: not found")

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
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
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS worlds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pins (
			world_id INTEGER NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			PRIMARY KEY (world_id, name)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreateWorld inserts a new world. Names are unique.
func (s *Store) CreateWorld(name string, seed int64) (World, error) {
	ts := now()
	res, err := s.db.Exec(
		`INSERT INTO worlds (name, seed, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, seed, ts, ts,
	)
	if err != nil {
		return World{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return World{}, err
	}
	return World{ID: id, Name: name, Seed: seed, CreatedAt: parseTime(ts), UpdatedAt: parseTime(ts)}, nil
}

// GetWorld loads one world by id.
func (s *Store) GetWorld(id int64) (World, error) {
	row := s.db.QueryRow(
		`SELECT id, name, seed, created_at, updated_at FROM worlds WHERE id = ?`, id)
	return scanWorld(row)
}

// MostRecentWorld returns the last opened world, or ErrNotFound when
// the store is empty.
func (s *Store) MostRecentWorld() (World, error) {
	row := s.db.QueryRow(
		`SELECT id, name, seed, created_at, updated_at FROM worlds ORDER BY updated_at DESC, id DESC LIMIT 1`)
	return scanWorld(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorld(row rowScanner) (World, error) {
	var w World
	var created, updated string
	err := row.Scan(&w.ID, &w.Name, &w.Seed, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return World{}, ErrNotFound
	}
	if err != nil {
		return World{}, err
	}
	w.CreatedAt = parseTime(created)
	w.UpdatedAt = parseTime(updated)
	return w, nil
}

// ListWorlds returns every world, most recently opened first.
func (s *Store) ListWorlds() ([]World, error) {
	rows, err := s.db.Query(
		`SELECT id, name, seed, created_at, updated_at FROM worlds ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []World
	for rows.Next() {
		w, err := scanWorld(rows)
		if err != nil {
			// corrupt row: skip it rather than fail the listing
			continue
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// TouchWorld bumps updated_at, marking the world as most recent.
func (s *Store) TouchWorld(id int64) error {
	res, err := s.db.Exec(`UPDATE worlds SET updated_at = ? WHERE id = ?`, now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorld removes a world and, via cascade, its pins.
func (s *Store) DeleteWorld(id int64) error {
	res, err := s.db.Exec(`DELETE FROM worlds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPin upserts a named pin for a world.
func (s *Store) SetPin(worldID int64, p Pin) error {
	_, err := s.db.Exec(
		`INSERT INTO pins (world_id, name, x, z) VALUES (?, ?, ?, ?)
		 ON CONFLICT(world_id, name) DO UPDATE SET x = excluded.x, z = excluded.z`,
		worldID, p.Name, p.X, p.Z,
	)
	return err
}

// RemovePin deletes a pin by name.
func (s *Store) RemovePin(worldID int64, name string) error {
	res, err := s.db.Exec(`DELETE FROM pins WHERE world_id = ? AND name = ?`, worldID, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPins returns a world's pins sorted by name. A world with no
// pins yields an empty slice; unreadable rows are skipped.
func (s *Store) ListPins(worldID int64) ([]Pin, error) {
	rows, err := s.db.Query(
		`SELECT name, x, z FROM pins WHERE world_id = ? ORDER BY name`, worldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Pin{}
	for rows.Next() {
		var p Pin
		if err := rows.Scan(&p.Name, &p.X, &p.Z); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
