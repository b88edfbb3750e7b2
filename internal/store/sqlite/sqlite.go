package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"dashboard-datagen/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCatalog replaces the stored catalog with records.
func (s *Store) SaveCatalog(ctx context.Context, records []models.BrandRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM brand_records`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO brand_records (brand, value, pct_change) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec.Brand, rec.Value, rec.PctChange); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) LoadCatalog(ctx context.Context) ([]models.BrandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT brand, value, pct_change FROM brand_records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.BrandRecord
	for rows.Next() {
		var rec models.BrandRecord
		if err := rows.Scan(&rec.Brand, &rec.Value, &rec.PctChange); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) SaveDataset(ctx context.Context, snapshot *models.Snapshot) (int64, error) {
	payload, err := json.Marshal(snapshot.Dataset)
	if err != nil {
		return 0, fmt.Errorf("sqlite: encode dataset: %w", err)
	}

	generatedAt := snapshot.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets (generated_at, seed, catalog_fingerprint, payload) VALUES (?, ?, ?, ?)
	`, generatedAt.UTC().Format(time.RFC3339Nano), int64(snapshot.Seed), snapshot.CatalogFingerprint, string(payload))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LatestDataset returns the most recent snapshot, or nil when none exists.
func (s *Store) LatestDataset(ctx context.Context) (*models.Snapshot, error) {
	var (
		snapshot    models.Snapshot
		generatedAt string
		seed        int64
		payload     string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, generated_at, seed, catalog_fingerprint, payload FROM datasets ORDER BY id DESC LIMIT 1
	`).Scan(&snapshot.ID, &generatedAt, &seed, &snapshot.CatalogFingerprint, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if snapshot.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return nil, fmt.Errorf("sqlite: parse generated_at: %w", err)
	}
	snapshot.Seed = uint64(seed)

	var ds models.Dataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return nil, fmt.Errorf("sqlite: decode dataset: %w", err)
	}
	snapshot.Dataset = &ds

	return &snapshot, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS brand_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			brand TEXT NOT NULL,
			value REAL NOT NULL,
			pct_change REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generated_at TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			catalog_fingerprint TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	// Databases created before snapshots carried a catalog fingerprint.
	var hasFingerprint int
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('datasets') WHERE name = 'catalog_fingerprint'
	`).Scan(&hasFingerprint); err != nil {
		return err
	}
	if hasFingerprint == 0 {
		if _, err := s.db.Exec(`ALTER TABLE datasets ADD COLUMN catalog_fingerprint TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}

	return nil
}
