package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dashboard-datagen/internal/catalog"
	"dashboard-datagen/internal/classifier"
	"dashboard-datagen/internal/errors"
	"dashboard-datagen/internal/generator"
	"dashboard-datagen/internal/models"
	"dashboard-datagen/internal/observability"
	"dashboard-datagen/internal/store"
)

const defaultPageLimit = 100

// ErrCatalogMismatch is returned by RestoreLatest when the stored dataset was
// generated from a catalog other than the loaded one.
var ErrCatalogMismatch = stderrors.New("stored dataset was generated from a different catalog")

type DatasetService struct {
	mu          sync.RWMutex
	catalog     *catalog.Catalog
	dataset     *models.Dataset
	generatedAt time.Time
	generations atomic.Int64
	generator   *generator.Generator
	classifier  *classifier.Classifier
	store       store.Store
	logger      *slog.Logger
}

func NewDatasetService(gen *generator.Generator, cls *classifier.Classifier, st store.Store, logger *slog.Logger) *DatasetService {
	if st == nil {
		st = &store.NopStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		generator:  gen,
		classifier: cls,
		store:      st,
		logger:     logger,
	}
}

// SetCatalog replaces the brand catalog and persists it to the store.
func (s *DatasetService) SetCatalog(ctx context.Context, records []models.BrandRecord) error {
	c, err := catalog.Build(records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()

	if err := s.store.SaveCatalog(ctx, c.Records()); err != nil {
		s.logger.Warn("failed to persist catalog", "error", err)
	}

	s.logger.Info("brand catalog loaded",
		"records", len(c.Records()),
		"brands", len(c.Brands()),
	)
	return nil
}

func (s *DatasetService) LoadCatalogFile(ctx context.Context, path string) error {
	records, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	return s.SetCatalog(ctx, records)
}

// LoadCatalogFromStore uses the catalog saved by an earlier run.
func (s *DatasetService) LoadCatalogFromStore(ctx context.Context) error {
	records, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog from store: %w", err)
	}
	if len(records) == 0 {
		return errors.Input("store holds no brand catalog")
	}

	c, err := catalog.Build(records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()

	s.logger.Info("brand catalog restored from store", "records", len(records), "brands", len(c.Brands()))
	return nil
}

// RestoreLatest makes the most recently persisted dataset current when it
// was generated from the loaded catalog. It returns store.ErrNotFound when
// nothing has been saved and ErrCatalogMismatch when the catalog differs.
func (s *DatasetService) RestoreLatest(ctx context.Context) error {
	s.mu.RLock()
	c := s.catalog
	s.mu.RUnlock()

	if c == nil {
		return errors.Input("no brand catalog loaded")
	}

	snapshot, err := s.store.LatestDataset(ctx)
	if err != nil {
		return err
	}
	if snapshot.CatalogFingerprint != c.Fingerprint() {
		return fmt.Errorf("snapshot %d: %w", snapshot.ID, ErrCatalogMismatch)
	}

	s.mu.Lock()
	s.dataset = snapshot.Dataset
	s.generatedAt = snapshot.GeneratedAt
	s.mu.Unlock()

	s.logger.Info("dataset restored from store", "snapshot_id", snapshot.ID, "generated_at", snapshot.GeneratedAt)
	return nil
}

// Regenerate builds a fresh dataset from the current catalog. On failure the
// previous dataset stays in place.
func (s *DatasetService) Regenerate(ctx context.Context) (*models.Dataset, error) {
	s.mu.RLock()
	c := s.catalog
	s.mu.RUnlock()

	if c == nil {
		return nil, errors.Input("no brand catalog loaded")
	}

	ctx, span := observability.StartSpan(ctx, "generate dataset")
	span.SetTag("brands", len(c.Brands()))

	ds, err := s.generator.Generate(ctx, c)
	if err != nil {
		span.SetError(err)
		span.Finish()
		s.logger.Error("dataset generation failed", "span", span)
		return nil, fmt.Errorf("generate dataset: %w", err)
	}
	generatedAt := time.Now()

	snapshot := &models.Snapshot{
		GeneratedAt:        generatedAt,
		CatalogFingerprint: c.Fingerprint(),
		Dataset:            ds,
	}
	if seed, ok := s.generator.Seed(); ok {
		snapshot.Seed = seed
	}
	if _, err := s.store.SaveDataset(ctx, snapshot); err != nil {
		s.logger.Warn("failed to persist dataset", "error", err)
	}

	s.mu.Lock()
	s.dataset = ds
	s.generatedAt = generatedAt
	s.mu.Unlock()

	span.Finish()
	count := s.generations.Add(1)
	s.logger.Info("dataset generated",
		"generation", count,
		"records", len(c.Records()),
		"span", span,
	)

	return ds, nil
}

func (s *DatasetService) Dataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// GeneratedAt reports when the current dataset was generated. It is zero
// before the first generation.
func (s *DatasetService) GeneratedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generatedAt
}

func (s *DatasetService) BrandTrends() []models.BrandTrend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil
	}
	return s.dataset.BrandTrends
}

func (s *DatasetService) SubstitutionPatterns() []models.SubstitutionPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil
	}
	return s.dataset.SubstitutionPatterns
}

// Subset returns one page of the named collection. A limit of zero selects
// the default page size.
func (s *DatasetService) Subset(name string, limit, offset int) (models.Page, error) {
	if limit < 0 || offset < 0 {
		return models.Page{}, errors.BadRequest("limit and offset must not be negative")
	}
	if limit == 0 {
		limit = defaultPageLimit
	}

	ds := s.Dataset()
	if ds == nil {
		return models.Page{}, errors.ServiceUnavailable("dataset has not been generated yet")
	}

	items, ok := ds.Section(name)
	if !ok {
		return models.Page{}, errors.NotFound(fmt.Sprintf("unknown subset %q", name)).
			WithDetails("valid subsets: %s", strings.Join(models.Sections, ", "))
	}

	start := min(offset, len(items))
	end := start + min(limit, len(items)-start)

	return models.Page{
		Data:    items[start:end],
		Total:   len(items),
		Limit:   limit,
		Offset:  offset,
		HasMore: end < len(items),
	}, nil
}

func (s *DatasetService) Classify(brand string) classifier.Match {
	return s.classifier.Explain(brand)
}

// Encode writes the dataset as indented JSON, the layout the dashboard
// prototype reads.
func (s *DatasetService) Encode(w io.Writer) error {
	ds := s.Dataset()
	if ds == nil {
		return errors.ServiceUnavailable("dataset has not been generated yet")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ds)
}

// WriteJSON writes the dataset to path. No file is created before the first
// generation.
func (s *DatasetService) WriteJSON(path string) (err error) {
	if s.Dataset() == nil {
		return errors.ServiceUnavailable("dataset has not been generated yet")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	return s.Encode(file)
}

// Utility method for monitoring
func (s *DatasetService) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"generations":    s.generations.Load(),
		"last_generated": s.generatedAt,
	}
	if s.catalog != nil {
		stats["brands"] = len(s.catalog.Brands())
		stats["records"] = len(s.catalog.Records())
	}
	if s.dataset != nil {
		stats["collections"] = s.dataset.Counts()
	}
	return stats
}

// IsNotFound reports whether err means the store has no saved dataset.
func IsNotFound(err error) bool {
	return stderrors.Is(err, store.ErrNotFound)
}
