package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/methview/internal/regions"
)

// DuckDB is a keyed on-disk gene store for low-memory deployments.
// Each gene's annotation is serialized as a JSON blob in the genes table;
// a separate gene_list table allows enumeration without loading annotations.
type DuckDB struct {
	db   *sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB-backed gene store at the given path.
// Use an empty string for an in-memory database.
func OpenDuckDB(path string) (*DuckDB, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &DuckDB{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *DuckDB) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS genes (
			gene_id VARCHAR PRIMARY KEY,
			data VARCHAR
		);
		CREATE TABLE IF NOT EXISTS gene_list (
			pos INTEGER PRIMARY KEY,
			gene_id VARCHAR
		);
	`)
	return err
}

// Close closes the database connection.
func (s *DuckDB) Close() error {
	return s.db.Close()
}

// Get fetches and deserializes one gene annotation.
func (s *DuckDB) Get(geneID string) (*regions.GeneAnnotation, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM genes WHERE gene_id = ?`, geneID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Gene: geneID}
	}
	if err != nil {
		return nil, fmt.Errorf("query gene %s: %w", geneID, err)
	}

	var ann regions.GeneAnnotation
	if err := json.Unmarshal([]byte(data), &ann); err != nil {
		return nil, fmt.Errorf("decode gene %s: %w", geneID, err)
	}
	return &ann, nil
}

// ListGenes returns all gene identifiers in stored (sorted) order.
func (s *DuckDB) ListGenes() ([]string, error) {
	rows, err := s.db.Query(`SELECT gene_id FROM gene_list ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("query gene list: %w", err)
	}
	defer rows.Close()

	var genes []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan gene id: %w", err)
		}
		genes = append(genes, id)
	}
	return genes, rows.Err()
}

// Insert serializes and stores one gene annotation.
func (s *DuckDB) Insert(ann *regions.GeneAnnotation) error {
	data, err := json.Marshal(ann)
	if err != nil {
		return fmt.Errorf("encode gene %s: %w", ann.GeneID, err)
	}
	if _, err := s.db.Exec(`INSERT INTO genes (gene_id, data) VALUES (?, ?)`,
		ann.GeneID, string(data)); err != nil {
		return fmt.Errorf("insert gene %s: %w", ann.GeneID, err)
	}
	return nil
}

// Build populates the store from a full annotation set: every gene is
// inserted and the gene list is rewritten in sorted order.
func (s *DuckDB) Build(anns map[string]*regions.GeneAnnotation) error {
	ids := make([]string, 0, len(anns))
	for id := range anns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin build: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM genes; DELETE FROM gene_list;`); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}

	for i, id := range ids {
		data, err := json.Marshal(anns[id])
		if err != nil {
			return fmt.Errorf("encode gene %s: %w", id, err)
		}
		if _, err := tx.Exec(`INSERT INTO genes (gene_id, data) VALUES (?, ?)`, id, string(data)); err != nil {
			return fmt.Errorf("insert gene %s: %w", id, err)
		}
		if _, err := tx.Exec(`INSERT INTO gene_list (pos, gene_id) VALUES (?, ?)`, i, id); err != nil {
			return fmt.Errorf("insert gene list entry %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// All loads every stored annotation, keyed by gene identifier.
// Used by bulk aggregation, which needs the whole region set resident.
func (s *DuckDB) All() (map[string]*regions.GeneAnnotation, error) {
	rows, err := s.db.Query(`SELECT gene_id, data FROM genes`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	anns := make(map[string]*regions.GeneAnnotation)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		var ann regions.GeneAnnotation
		if err := json.Unmarshal([]byte(data), &ann); err != nil {
			return nil, fmt.Errorf("decode gene %s: %w", id, err)
		}
		anns[id] = &ann
	}
	return anns, rows.Err()
}

// GeneCount returns the number of stored genes.
func (s *DuckDB) GeneCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM genes`).Scan(&count)
	return count, err
}
