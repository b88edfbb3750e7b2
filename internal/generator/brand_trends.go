package generator

import "dashboard-datagen/internal/models"

// Synthetic ranges used when a brand has no observed record.
const (
	minSyntheticValue     = 300000.0
	maxSyntheticValue     = 3000000.0
	minSyntheticPctChange = -0.08
	maxSyntheticPctChange = 0.25
)

// BrandTrends emits exactly one entry per distinct brand, in catalog order.
// Observed figures are reused verbatim; brands without a record get
// synthetic ones.
func (g *Generator) BrandTrends(src Source) []models.BrandTrend {
	rng := g.rand(streamBrandTrends)
	brands := src.Brands()
	out := make([]models.BrandTrend, 0, len(brands))

	for _, brand := range brands {
		trend := models.BrandTrend{
			Brand:    brand,
			Category: g.classifier.Classify(brand),
		}

		if recs := src.RecordsFor(brand); len(recs) > 0 {
			rec := pick(rng, recs)
			trend.Value = rec.Value
			trend.PctChange = rec.PctChange
		} else {
			trend.Value = round(uniform(rng, minSyntheticValue, maxSyntheticValue), 2)
			trend.PctChange = round(uniform(rng, minSyntheticPctChange, maxSyntheticPctChange), 3)
		}

		out = append(out, trend)
	}

	return out
}
