// Package generator synthesizes the dashboard dataset from a brand catalog.
//
// Each collection is produced by an independent generator with its own
// random stream, so the five generators can run in any order or in
// parallel. With a seed every stream is derived from it and a run is fully
// reproducible; without one every call draws fresh entropy.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"dashboard-datagen/internal/models"
)

const DateLayout = "2006-01-02"

// Source is the read-only catalog view the generators sample from.
type Source interface {
	Brands() []string
	Records() []models.BrandRecord
	RecordsFor(brand string) []models.BrandRecord
	Frequency(brand string) int
}

type Classifier interface {
	Classify(brand string) string
}

type Sampling string

const (
	SamplingUniform  Sampling = "uniform"
	SamplingWeighted Sampling = "weighted"
)

type Params struct {
	RecordCount      int
	AnchorDate       time.Time
	WindowDays       int
	MaxSubstitutions int
	Sampling         Sampling
	Genders          []string
	Locations        []string
	Reasons          []string
}

func DefaultParams() Params {
	return Params{
		RecordCount:      500,
		AnchorDate:       time.Date(2025, 4, 24, 0, 0, 0, 0, time.UTC),
		WindowDays:       30,
		MaxSubstitutions: 40,
		Sampling:         SamplingUniform,
		Genders:          []string{"Male", "Female"},
		Locations: []string{
			"Manila", "Cebu", "Davao", "Bacolod", "Makati",
			"Taguig", "Quezon City", "Iloilo", "Cagayan de Oro", "Zamboanga",
		},
		Reasons: []string{"Out of stock", "Price", "Promo", "Taste", "Availability"},
	}
}

func (p Params) validate() error {
	if p.RecordCount < 0 {
		return fmt.Errorf("record count cannot be negative, got %d", p.RecordCount)
	}
	if p.WindowDays < 1 {
		return fmt.Errorf("window days must be positive, got %d", p.WindowDays)
	}
	if p.MaxSubstitutions < 0 {
		return fmt.Errorf("max substitutions cannot be negative, got %d", p.MaxSubstitutions)
	}
	if p.Sampling != SamplingUniform && p.Sampling != SamplingWeighted {
		return fmt.Errorf("unknown sampling %q", p.Sampling)
	}
	if len(p.Genders) == 0 || len(p.Locations) == 0 || len(p.Reasons) == 0 {
		return fmt.Errorf("gender, location and reason vocabularies must be non-empty")
	}
	return nil
}

// Random stream identifiers, one per generator.
const (
	streamTransactions uint64 = iota + 1
	streamConsumers
	streamBaskets
	streamSubstitutions
	streamBrandTrends
)

type Generator struct {
	classifier Classifier
	params     Params
	seed       uint64
	seeded     bool
	logger     *slog.Logger
}

type Option func(*Generator)

func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
		g.seeded = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func New(classifier Classifier, params Params, opts ...Option) (*Generator, error) {
	if classifier == nil {
		return nil, fmt.Errorf("generator: classifier is required")
	}
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	g := &Generator{
		classifier: classifier,
		params:     params,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Params() Params {
	return g.params
}

// Seed reports the configured seed and whether one was set.
func (g *Generator) Seed() (uint64, bool) {
	return g.seed, g.seeded
}

func (g *Generator) rand(stream uint64) *rand.Rand {
	if g.seeded {
		return rand.New(rand.NewPCG(g.seed, stream))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Generate runs the five generators concurrently and assembles their output.
// Any failure aborts the whole run; no partial dataset is returned.
func (g *Generator) Generate(ctx context.Context, src Source) (*models.Dataset, error) {
	start := time.Now()
	grp, ctx := errgroup.WithContext(ctx)

	var ds models.Dataset

	grp.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := g.TransactionTrends(src)
		if err != nil {
			return fmt.Errorf("transaction trends: %w", err)
		}
		ds.TransactionTrends = out
		return nil
	})

	grp.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ds.ConsumerProfiling = g.ConsumerProfiles()
		return nil
	})

	grp.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := g.Baskets(src)
		if err != nil {
			return fmt.Errorf("basket analysis: %w", err)
		}
		ds.BasketAnalysis = out
		return nil
	})

	grp.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ds.SubstitutionPatterns = g.Substitutions(src)
		return nil
	})

	grp.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ds.BrandTrends = g.BrandTrends(src)
		return nil
	})

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	g.logger.Debug("dataset generated",
		"brands", len(src.Brands()),
		"records", g.params.RecordCount,
		"substitutions", len(ds.SubstitutionPatterns),
		"duration", time.Since(start),
	)

	return &ds, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
