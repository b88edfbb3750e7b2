package store

import (
	"context"
	"errors"
	"fmt"

	"dashboard-datagen/internal/config"
	"dashboard-datagen/internal/models"
	"dashboard-datagen/internal/store/postgres"
	"dashboard-datagen/internal/store/sqlite"
)

// ErrNotFound is returned by LatestDataset when nothing has been saved yet.
var ErrNotFound = errors.New("store: no dataset saved")

type Store interface {
	SaveCatalog(ctx context.Context, records []models.BrandRecord) error
	LoadCatalog(ctx context.Context) ([]models.BrandRecord, error)
	SaveDataset(ctx context.Context, snapshot *models.Snapshot) (int64, error)
	LatestDataset(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

// Open returns the store selected by cfg.Driver. The "none" driver yields a
// NopStore.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "none":
		return &NopStore{}, nil
	case "sqlite":
		s, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return adapt(s), nil
	case "postgres":
		s, err := postgres.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return adapt(s), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NopStore keeps nothing. It backs the "none" driver.
type NopStore struct{}

func (s *NopStore) SaveCatalog(context.Context, []models.BrandRecord) error {
	return nil
}

func (s *NopStore) LoadCatalog(context.Context) ([]models.BrandRecord, error) {
	return nil, nil
}

func (s *NopStore) SaveDataset(context.Context, *models.Snapshot) (int64, error) {
	return 0, nil
}

func (s *NopStore) LatestDataset(context.Context) (*models.Snapshot, error) {
	return nil, ErrNotFound
}

func (s *NopStore) Close() error {
	return nil
}

// driver is implemented by the SQL backends. Their LatestDataset returns a
// nil snapshot when the table is empty.
type driver interface {
	SaveCatalog(ctx context.Context, records []models.BrandRecord) error
	LoadCatalog(ctx context.Context) ([]models.BrandRecord, error)
	SaveDataset(ctx context.Context, snapshot *models.Snapshot) (int64, error)
	LatestDataset(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

type driverStore struct {
	driver
}

func adapt(d driver) Store {
	return &driverStore{driver: d}
}

func (s *driverStore) LatestDataset(ctx context.Context) (*models.Snapshot, error) {
	snapshot, err := s.driver.LatestDataset(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrNotFound
	}
	return snapshot, nil
}
