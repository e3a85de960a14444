// Package sqlite persiste el libro en memoria en un archivo SQLite, como blobs JSON por bucket.
// Cada transacción confirmada reescribe la instantánea completa antes de publicarse.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	_ "modernc.org/sqlite" // driver sqlite en Go puro
)

var (
	_ inventory.TxRunner       = (*Store)(nil)
	_ inventory.ReadOnlyRunner = (*Store)(nil)
)

// Store libro en memoria con persistencia SQLite.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// bucket nombre y acceso al slice correspondiente de la instantánea.
type bucket struct {
	name string
	ref  func(s *memory.Snapshot) any
}

var buckets = []bucket{
	{"warehouses", func(s *memory.Snapshot) any { return &s.Warehouses }},
	{"products", func(s *memory.Snapshot) any { return &s.Products }},
	{"presentations", func(s *memory.Snapshot) any { return &s.Presentations }},
	{"lots", func(s *memory.Snapshot) any { return &s.Lots }},
	{"inventory", func(s *memory.Snapshot) any { return &s.Inventory }},
	{"movements", func(s *memory.Snapshot) any { return &s.Movements }},
	{"recipes", func(s *memory.Snapshot) any { return &s.Recipes }},
}

// Open abre (o crea) la base en path y carga la última instantánea.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "produccion.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{db: db, path: path}
	s.Store = memory.New(memory.WithCommitHook(s.persist))
	snap, err := s.load(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.Store.Load(snap)
	return s, nil
}

func (s *Store) load(ctx context.Context) (memory.Snapshot, error) {
	var snap memory.Snapshot
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return snap, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return snap, fmt.Errorf("scan: %w", err)
		}
		for _, b := range buckets {
			if b.name != name {
				continue
			}
			if err := json.Unmarshal(payload, b.ref(&snap)); err != nil {
				return snap, fmt.Errorf("decode %s: %w", name, err)
			}
		}
	}
	return snap, rows.Err()
}

// persist escribe todos los buckets en una transacción SQLite.
func (s *Store) persist(snap memory.Snapshot) (retErr error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		data, err := json.Marshal(b.ref(&snap))
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, b.name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	return tx.Commit()
}

// Close cierra la base.
func (s *Store) Close() error { return s.db.Close() }

// Path devuelve la ruta configurada.
func (s *Store) Path() string { return s.path }
