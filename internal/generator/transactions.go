package generator

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"dashboard-datagen/internal/errors"
	"dashboard-datagen/internal/models"
)

const (
	minVolume      = 500
	maxVolume      = 2500
	minDuration    = 30
	maxDuration    = 300
	minUnits       = 1
	maxUnits       = 10
	minAge         = 18
	maxAge         = 65
	minItems       = 1
	maxItems       = 7
	minBasketValue = 50.0
	maxBasketValue = 1800.0
)

// TransactionTrends draws RecordCount transactions, each from a uniformly
// chosen catalog record. The peso value is the record's observed value.
func (g *Generator) TransactionTrends(src Source) ([]models.TransactionTrend, error) {
	records := src.Records()
	if len(records) == 0 {
		return nil, errors.Input("no brand records to sample transactions from")
	}

	rng := g.rand(streamTransactions)
	out := make([]models.TransactionTrend, 0, g.params.RecordCount)

	for range g.params.RecordCount {
		rec := pick(rng, records)
		date := g.params.AnchorDate.AddDate(0, 0, rng.IntN(g.params.WindowDays))

		out = append(out, models.TransactionTrend{
			Date:      date.Format(DateLayout),
			Volume:    between(rng, minVolume, maxVolume),
			PesoValue: round(rec.Value, 2),
			Duration:  between(rng, minDuration, maxDuration),
			Units:     between(rng, minUnits, maxUnits),
			Brand:     rec.Brand,
			Category:  g.classifier.Classify(rec.Brand),
		})
	}

	return out, nil
}

// ConsumerProfiles does not depend on the catalog.
func (g *Generator) ConsumerProfiles() []models.ConsumerProfile {
	rng := g.rand(streamConsumers)
	out := make([]models.ConsumerProfile, 0, g.params.RecordCount)

	for range g.params.RecordCount {
		out = append(out, models.ConsumerProfile{
			Gender:   pick(rng, g.params.Genders),
			Age:      between(rng, minAge, maxAge),
			Location: pick(rng, g.params.Locations),
		})
	}

	return out
}

// Baskets draws RecordCount baskets over the distinct brands. Basket IDs are
// positional (BASKET0001, BASKET0002, ...) and do not depend on the draw.
func (g *Generator) Baskets(src Source) ([]models.BasketRecord, error) {
	brands := src.Brands()
	if len(brands) == 0 {
		return nil, errors.Input("no brands to sample baskets from")
	}

	rng := g.rand(streamBaskets)
	next := g.brandSampler(rng, src)
	out := make([]models.BasketRecord, 0, g.params.RecordCount)

	for i := range g.params.RecordCount {
		out = append(out, models.BasketRecord{
			BasketID:   BasketID(i),
			Brand:      next(),
			ItemCount:  between(rng, minItems, maxItems),
			TotalValue: round(uniform(rng, minBasketValue, maxBasketValue), 2),
		})
	}

	return out, nil
}

// BasketID returns the identifier of the basket at zero-based position i.
func BasketID(i int) string {
	return fmt.Sprintf("BASKET%04d", i+1)
}

// brandSampler draws distinct brands uniformly, or proportionally to their
// catalog frequency when weighted sampling is configured.
func (g *Generator) brandSampler(rng *rand.Rand, src Source) func() string {
	brands := src.Brands()
	if g.params.Sampling != SamplingWeighted {
		return func() string {
			return pick(rng, brands)
		}
	}

	cumulative := make([]int, len(brands))
	total := 0
	for i, b := range brands {
		total += max(src.Frequency(b), 1)
		cumulative[i] = total
	}

	return func() string {
		n := rng.IntN(total) + 1
		i, _ := slices.BinarySearch(cumulative, n)
		return brands[i]
	}
}
