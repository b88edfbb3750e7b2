package services

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dashboard-datagen/internal/classifier"
	"dashboard-datagen/internal/config"
	"dashboard-datagen/internal/errors"
	"dashboard-datagen/internal/generator"
	"dashboard-datagen/internal/models"
	"dashboard-datagen/internal/store"
)

var testRecords = []models.BrandRecord{
	{Brand: "Lucky Me! Pancit Canton", Value: 1000000, PctChange: 0.05},
	{Brand: "Oishi Prawn Crackers", Value: 750000, PctChange: 0.12},
	{Brand: "Alaska Evaporated Milk", Value: 1250000, PctChange: -0.02},
	{Brand: "Kopiko Brown Coffee", Value: 430000, PctChange: 0.08},
	{Brand: "Oishi Prawn Crackers", Value: 780000, PctChange: 0.1},
}

func newTestService(t *testing.T, st store.Store) *DatasetService {
	t.Helper()
	params := generator.DefaultParams()
	params.RecordCount = 50

	cls := classifier.New(classifier.DefaultRules())
	gen, err := generator.New(cls, params, generator.WithSeed(11))
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewDatasetService(gen, cls, st, logger)
}

func TestNewDatasetService(t *testing.T) {
	s := newTestService(t, nil)
	if s == nil {
		t.Fatal("NewDatasetService() returned nil")
	}
	if s.store == nil {
		t.Error("store should default to a NopStore")
	}
	if s.Dataset() != nil {
		t.Error("dataset should be empty before the first generation")
	}
}

func TestDatasetService_RegenerateWithoutCatalog(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.Regenerate(context.Background())
	if !errors.Is(err, errors.CodeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestDatasetService_SetCatalogRejectsEmpty(t *testing.T) {
	s := newTestService(t, nil)

	if err := s.SetCatalog(context.Background(), nil); !errors.Is(err, errors.CodeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestDatasetService_Regenerate(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	if err := s.SetCatalog(ctx, testRecords); err != nil {
		t.Fatalf("SetCatalog() error = %v", err)
	}

	ds, err := s.Regenerate(ctx)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	counts := ds.Counts()
	want := map[string]int{
		models.SectionTransactionTrends:    50,
		models.SectionConsumerProfiling:    50,
		models.SectionBasketAnalysis:       50,
		models.SectionSubstitutionPatterns: 2,
		models.SectionBrandTrends:          4,
	}
	for section, n := range want {
		if counts[section] != n {
			t.Errorf("%s: expected %d records, got %d", section, n, counts[section])
		}
	}

	if s.Dataset() != ds {
		t.Error("Dataset() should return the latest generation")
	}

	stats := s.Stats()
	if stats["generations"] != int64(1) {
		t.Errorf("expected 1 generation, got %v", stats["generations"])
	}
	if stats["brands"] != 4 {
		t.Errorf("expected 4 brands, got %v", stats["brands"])
	}
}

func TestDatasetService_Subset(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	if _, err := s.Subset(models.SectionBrandTrends, 10, 0); !errors.Is(err, errors.CodeServiceUnavail) {
		t.Errorf("expected service unavailable before generation, got %v", err)
	}

	if err := s.SetCatalog(ctx, testRecords); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Regenerate(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		subset    string
		limit     int
		offset    int
		wantLen   int
		wantMore  bool
		wantLimit int
		wantCode  errors.ErrorCode
	}{
		{name: "first page", subset: models.SectionBasketAnalysis, limit: 20, offset: 0, wantLen: 20, wantMore: true, wantLimit: 20},
		{name: "last page", subset: models.SectionBasketAnalysis, limit: 20, offset: 40, wantLen: 10, wantMore: false, wantLimit: 20},
		{name: "offset past end", subset: models.SectionBasketAnalysis, limit: 20, offset: 80, wantLen: 0, wantMore: false, wantLimit: 20},
		{name: "default limit", subset: models.SectionTransactionTrends, limit: 0, offset: 0, wantLen: 50, wantMore: false, wantLimit: 100},
		{name: "huge limit", subset: models.SectionBasketAnalysis, limit: math.MaxInt, offset: 1, wantLen: 49, wantMore: false, wantLimit: math.MaxInt},
		{name: "huge limit past end", subset: models.SectionBasketAnalysis, limit: math.MaxInt, offset: math.MaxInt, wantLen: 0, wantMore: false, wantLimit: math.MaxInt},
		{name: "unknown subset", subset: "consumer_profiles", limit: 10, wantCode: errors.CodeNotFound},
		{name: "negative limit", subset: models.SectionBrandTrends, limit: -1, wantCode: errors.CodeBadRequest},
		{name: "negative offset", subset: models.SectionBrandTrends, limit: 5, offset: -5, wantCode: errors.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Subset(tt.subset, tt.limit, tt.offset)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Subset() error = %v", err)
			}
			if len(page.Data) != tt.wantLen {
				t.Errorf("expected %d items, got %d", tt.wantLen, len(page.Data))
			}
			if page.HasMore != tt.wantMore {
				t.Errorf("expected has_more=%v, got %v", tt.wantMore, page.HasMore)
			}
			if page.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, page.Limit)
			}
			if page.Total != 50 {
				t.Errorf("expected total 50, got %d", page.Total)
			}
		})
	}
}

func TestDatasetService_Classify(t *testing.T) {
	s := newTestService(t, nil)

	m := s.Classify("Lucky Me! Pancit Canton")
	if m.Category != "Noodles" || m.Stage != classifier.StageExact {
		t.Errorf("unexpected match %+v", m)
	}
}

func TestDatasetService_WriteJSON(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	if err := s.WriteJSON(path); !errors.Is(err, errors.CodeServiceUnavail) {
		t.Errorf("expected service unavailable before generation, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("no file should be created before generation, stat error = %v", err)
	}

	if err := s.SetCatalog(ctx, testRecords); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Regenerate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, []byte("\n  \"transaction_trends\": [")) {
		t.Error("expected two-space indented output")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload) != len(models.Sections) {
		t.Errorf("expected %d top-level keys, got %d", len(models.Sections), len(payload))
	}
	for _, key := range models.Sections {
		if _, ok := payload[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestDatasetService_RestoreLatestFromNopStore(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	if err := s.RestoreLatest(ctx); !errors.Is(err, errors.CodeInput) {
		t.Errorf("expected input error without a catalog, got %v", err)
	}

	if err := s.SetCatalog(ctx, testRecords); err != nil {
		t.Fatal(err)
	}
	if err := s.RestoreLatest(ctx); !IsNotFound(err) {
		t.Errorf("expected not found from a NopStore, got %v", err)
	}
}

func TestDatasetService_RestoreLatestRejectsOtherCatalog(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "datagen.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	writer := newTestService(t, st)
	if err := writer.SetCatalog(ctx, testRecords); err != nil {
		t.Fatal(err)
	}
	if _, err := writer.Regenerate(ctx); err != nil {
		t.Fatal(err)
	}

	reader := newTestService(t, st)
	if err := reader.SetCatalog(ctx, []models.BrandRecord{{Brand: "New Brand Soap", Value: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := reader.RestoreLatest(ctx); !stderrors.Is(err, ErrCatalogMismatch) {
		t.Fatalf("expected ErrCatalogMismatch, got %v", err)
	}
	if reader.Dataset() != nil {
		t.Error("a snapshot from another catalog should not become current")
	}

	// The same records in another order describe the same catalog.
	reordered := []models.BrandRecord{testRecords[4], testRecords[2], testRecords[0], testRecords[3], testRecords[1]}
	same := newTestService(t, st)
	if err := same.SetCatalog(ctx, reordered); err != nil {
		t.Fatal(err)
	}
	if err := same.RestoreLatest(ctx); err != nil {
		t.Fatalf("RestoreLatest() error = %v", err)
	}
	for _, trend := range same.BrandTrends() {
		if !same.catalog.Contains(trend.Brand) {
			t.Errorf("restored brand %q is not in the loaded catalog", trend.Brand)
		}
	}
}

func TestDatasetService_GeneratedAt(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	if !s.GeneratedAt().IsZero() {
		t.Error("GeneratedAt should be zero before the first generation")
	}
	if err := s.SetCatalog(ctx, testRecords); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Regenerate(ctx); err != nil {
		t.Fatal(err)
	}
	if got := s.GeneratedAt(); got.IsZero() || !got.Equal(s.Stats()["last_generated"].(time.Time)) {
		t.Errorf("GeneratedAt %v should match the stats", got)
	}
}

func TestDatasetService_PersistAndRestore(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "datagen.db")}

	first, err := store.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	writer := newTestService(t, first)
	if err := writer.SetCatalog(ctx, testRecords); err != nil {
		t.Fatal(err)
	}
	generated, err := writer.Regenerate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := store.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	reader := newTestService(t, second)
	if err := reader.LoadCatalogFromStore(ctx); err != nil {
		t.Fatalf("LoadCatalogFromStore() error = %v", err)
	}
	if err := reader.RestoreLatest(ctx); err != nil {
		t.Fatalf("RestoreLatest() error = %v", err)
	}

	restored := reader.Dataset()
	if len(restored.BrandTrends) != len(generated.BrandTrends) {
		t.Errorf("expected %d brand trends, got %d", len(generated.BrandTrends), len(restored.BrandTrends))
	}
	if restored.BasketAnalysis[0] != generated.BasketAnalysis[0] {
		t.Errorf("restored basket %+v differs from generated %+v", restored.BasketAnalysis[0], generated.BasketAnalysis[0])
	}
	if reader.Stats()["records"] != len(testRecords) {
		t.Errorf("expected %d catalog records, got %v", len(testRecords), reader.Stats()["records"])
	}
}
