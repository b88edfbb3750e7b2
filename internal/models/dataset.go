package models

import "time"

// Section keys of the dashboard payload. The naming is inherited from the
// dashboard prototype and must not be normalized.
const (
	SectionTransactionTrends    = "transaction_trends"
	SectionConsumerProfiling    = "consumer_profiling"
	SectionBasketAnalysis       = "basket_analysis"
	SectionSubstitutionPatterns = "substitution_patterns"
	SectionBrandTrends          = "brand_trends"
)

var Sections = []string{
	SectionTransactionTrends,
	SectionConsumerProfiling,
	SectionBasketAnalysis,
	SectionSubstitutionPatterns,
	SectionBrandTrends,
}

type Dataset struct {
	TransactionTrends    []TransactionTrend `json:"transaction_trends"`
	ConsumerProfiling    []ConsumerProfile  `json:"consumer_profiling"`
	BasketAnalysis       []BasketRecord     `json:"basket_analysis"`
	SubstitutionPatterns []SubstitutionPair `json:"substitution_patterns"`
	BrandTrends          []BrandTrend       `json:"brand_trends"`
}

// Section returns the named collection as a generic slice.
func (d *Dataset) Section(name string) ([]any, bool) {
	switch name {
	case SectionTransactionTrends:
		return toAny(d.TransactionTrends), true
	case SectionConsumerProfiling:
		return toAny(d.ConsumerProfiling), true
	case SectionBasketAnalysis:
		return toAny(d.BasketAnalysis), true
	case SectionSubstitutionPatterns:
		return toAny(d.SubstitutionPatterns), true
	case SectionBrandTrends:
		return toAny(d.BrandTrends), true
	default:
		return nil, false
	}
}

// Counts reports the length of every collection keyed by section name.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		SectionTransactionTrends:    len(d.TransactionTrends),
		SectionConsumerProfiling:    len(d.ConsumerProfiling),
		SectionBasketAnalysis:       len(d.BasketAnalysis),
		SectionSubstitutionPatterns: len(d.SubstitutionPatterns),
		SectionBrandTrends:          len(d.BrandTrends),
	}
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

// Snapshot is a persisted dataset together with its generation metadata.
// CatalogFingerprint identifies the brand catalog the dataset came from.
type Snapshot struct {
	ID                 int64     `json:"id"`
	GeneratedAt        time.Time `json:"generated_at"`
	Seed               uint64    `json:"seed,omitempty"`
	CatalogFingerprint string    `json:"catalog_fingerprint,omitempty"`
	Dataset            *Dataset  `json:"dataset"`
}

type Page struct {
	Data    []any `json:"data"`
	Total   int   `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}
