// Package store persists parsed variant intervals in a DuckDB database
// so large inputs can be parsed once and benchmarked many times.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/iitii/internal/variants"
)

// Store manages a DuckDB connection holding a variants table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an
// empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the variants table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variants (
		chrom VARCHAR,
		beg BIGINT,
		end_ BIGINT,
		id VARCHAR
	)`)
	return err
}

// InsertVariants appends variants in a single transaction.
func (s *Store) InsertVariants(vs []variants.Variant) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO variants (chrom, beg, end_, id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range vs {
		if _, err := stmt.Exec(v.Chrom, int64(v.Beg), int64(v.End), v.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert variant %s:%d: %w", v.Chrom, v.Beg, err)
		}
	}
	return tx.Commit()
}

// LoadVariants reads variants back, ordered by begin position. An empty
// chrom loads every chromosome.
func (s *Store) LoadVariants(chrom string) ([]variants.Variant, error) {
	query := `SELECT chrom, beg, end_, id FROM variants ORDER BY beg`
	args := []any{}
	if chrom != "" {
		query = `SELECT chrom, beg, end_, id FROM variants WHERE chrom = ? ORDER BY beg`
		args = append(args, chrom)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var vs []variants.Variant
	for rows.Next() {
		var v variants.Variant
		var beg, end int64
		if err := rows.Scan(&v.Chrom, &beg, &end, &v.ID); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v.Beg = uint32(beg)
		v.End = uint32(end)
		vs = append(vs, v)
	}
	return vs, rows.Err()
}

// Count returns the number of stored variants.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM variants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count variants: %w", err)
	}
	return n, nil
}

// Chromosomes returns the distinct chromosomes present in the store.
func (s *Store) Chromosomes() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT chrom FROM variants ORDER BY chrom`)
	if err != nil {
		return nil, fmt.Errorf("query chromosomes: %w", err)
	}
	defer rows.Close()

	var chroms []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		chroms = append(chroms, c)
	}
	return chroms, rows.Err()
}
