package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"dashboard-datagen/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
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

	if _, err = tx.ExecContext(ctx, `TRUNCATE brand_records RESTART IDENTITY`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO brand_records (brand, value, pct_change) VALUES ($1, $2, $3)
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
		return 0, fmt.Errorf("postgres: encode dataset: %w", err)
	}

	generatedAt := snapshot.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO datasets (generated_at, seed, catalog_fingerprint, payload)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, generatedAt.UTC(), int64(snapshot.Seed), snapshot.CatalogFingerprint, string(payload)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LatestDataset returns the most recent snapshot, or nil when none exists.
func (s *Store) LatestDataset(ctx context.Context) (*models.Snapshot, error) {
	var (
		snapshot models.Snapshot
		seed     int64
		payload  []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, generated_at, seed, catalog_fingerprint, payload FROM datasets ORDER BY id DESC LIMIT 1
	`).Scan(&snapshot.ID, &snapshot.GeneratedAt, &seed, &snapshot.CatalogFingerprint, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snapshot.Seed = uint64(seed)

	var ds models.Dataset
	if err := json.Unmarshal(payload, &ds); err != nil {
		return nil, fmt.Errorf("postgres: decode dataset: %w", err)
	}
	snapshot.Dataset = &ds

	return &snapshot, nil
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS brand_records (
			id BIGSERIAL PRIMARY KEY,
			brand TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			pct_change DOUBLE PRECISION NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id BIGSERIAL PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			seed BIGINT NOT NULL DEFAULT 0,
			catalog_fingerprint TEXT NOT NULL DEFAULT '',
			payload JSONB NOT NULL
		);`,
		`ALTER TABLE datasets ADD COLUMN IF NOT EXISTS catalog_fingerprint TEXT NOT NULL DEFAULT '';`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}
