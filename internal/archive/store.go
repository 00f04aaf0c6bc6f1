// Package archive stores bulk feature rows in one sqlite file per dataset,
// kept separate from the metadata database so multi-million-marker GWAS
// files stay cheap to scan and cheap to throw away.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hidecan/internal/genome"

	_ "modernc.org/sqlite"
)

// Manifest summarises one dataset archive file.
type Manifest struct {
	Dataset    string `json:"dataset"`
	MinPos     int64  `json:"min_pos"`
	MaxPos     int64  `json:"max_pos"`
	Rows       int64  `json:"rows"`
	LastSyncAt int64  `json:"last_sync_at"`
	Path       string `json:"path"`
}

type Store struct {
	root string

	mu  sync.Mutex
	dbs map[string]*sql.DB
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("archive root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root, dbs: make(map[string]*sql.DB)}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for k, db := range s.dbs {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.dbs, k)
	}
	return firstErr
}

func (s *Store) db(dataset string) (*sql.DB, string, error) {
	if dataset == "" {
		return nil, "", fmt.Errorf("dataset id cannot be empty")
	}
	key := strings.ToLower(dataset)
	s.mu.Lock()
	defer s.mu.Unlock()
	if db, ok := s.dbs[key]; ok && db != nil {
		return db, s.dbPath(dataset), nil
	}
	path := s.dbPath(dataset)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db, dataset); err != nil {
		_ = db.Close()
		return nil, "", err
	}
	s.dbs[key] = db
	return db, path, nil
}

func (s *Store) dbPath(dataset string) string {
	return filepath.Join(s.root, strings.ToLower(dataset)+".db")
}

// ReplaceFeatures swaps the archived rows for the dataset atomically.
func (s *Store) ReplaceFeatures(ctx context.Context, dataset string, features []genome.Feature) (int, error) {
	db, _, err := s.db(dataset)
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM features`); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO features (chromosome, position, start_bp, end_bp, score, log2fc, name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()
	count := 0
	for _, f := range features {
		if _, err := stmt.ExecContext(ctx, f.Chromosome, f.Position, f.Start, f.End, f.Score, f.Log2FC, f.Name); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	if err := s.refreshManifest(ctx, db); err != nil {
		return count, err
	}
	return count, nil
}

// Features returns archived rows, optionally restricted to one chromosome
// window. chromosome == "" returns everything; end == 0 is unbounded.
func (s *Store) Features(ctx context.Context, dataset, chromosome string, start, end int64) ([]genome.Feature, error) {
	db, _, err := s.db(dataset)
	if err != nil {
		return nil, err
	}
	query := `SELECT chromosome, position, start_bp, end_bp, score, log2fc, name FROM features`
	var args []any
	var where []string
	if chromosome != "" {
		where = append(where, `chromosome = ? COLLATE NOCASE`)
		args = append(args, chromosome)
	}
	if start > 0 {
		where = append(where, `position >= ?`)
		args = append(args, start)
	}
	if end > 0 {
		where = append(where, `position <= ?`)
		args = append(args, end)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY chromosome, position`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []genome.Feature
	for rows.Next() {
		var f genome.Feature
		if err := rows.Scan(&f.Chromosome, &f.Position, &f.Start, &f.End, &f.Score, &f.Log2FC, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Manifest returns the stats block of one dataset archive.
func (s *Store) Manifest(ctx context.Context, dataset string) (Manifest, error) {
	db, path, err := s.db(dataset)
	if err != nil {
		return Manifest{}, err
	}
	row := db.QueryRowContext(ctx, `SELECT dataset, min_pos, max_pos, rows, last_sync_at FROM manifest WHERE id=1`)
	var m Manifest
	if err := row.Scan(&m.Dataset, &m.MinPos, &m.MaxPos, &m.Rows, &m.LastSyncAt); err != nil {
		return Manifest{}, err
	}
	m.Path = path
	return m, nil
}

// Remove drops the archive file for a deleted dataset.
func (s *Store) Remove(dataset string) error {
	key := strings.ToLower(dataset)
	s.mu.Lock()
	if db, ok := s.dbs[key]; ok && db != nil {
		_ = db.Close()
		delete(s.dbs, key)
	}
	s.mu.Unlock()
	err := os.Remove(s.dbPath(dataset))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) refreshManifest(ctx context.Context, db *sql.DB) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		UPDATE manifest
		SET min_pos = (SELECT COALESCE(MIN(position), 0) FROM features),
		    max_pos = (SELECT COALESCE(MAX(position), 0) FROM features),
		    rows = (SELECT COUNT(1) FROM features),
		    last_sync_at = ?
		WHERE id = 1`, now)
	return err
}

func ensureSchema(db *sql.DB, dataset string) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS features (
			id         INTEGER PRIMARY KEY,
			chromosome TEXT NOT NULL,
			position   INTEGER NOT NULL,
			start_bp   INTEGER DEFAULT 0,
			end_bp     INTEGER DEFAULT 0,
			score      REAL DEFAULT 0,
			log2fc     REAL DEFAULT 0,
			name       TEXT DEFAULT '',
			inserted_at INTEGER NOT NULL DEFAULT (strftime('%s','now') * 1000)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_features_chrom_pos ON features (chromosome, position);`,
		`CREATE TABLE IF NOT EXISTS manifest (
			id INTEGER PRIMARY KEY CHECK (id=1),
			dataset TEXT NOT NULL,
			min_pos INTEGER,
			max_pos INTEGER,
			rows INTEGER DEFAULT 0,
			last_sync_at INTEGER
		);`,
		`INSERT INTO manifest (id, dataset) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET dataset=excluded.dataset;`,
	}
	for i, stmt := range stmts {
		var err error
		if i == len(stmts)-1 {
			_, err = db.Exec(stmt, strings.ToLower(dataset))
		} else {
			_, err = db.Exec(stmt)
		}
		if err != nil {
			return fmt.Errorf("archive schema: %w", err)
		}
	}
	return nil
}
