package generator

import (
	"slices"

	"dashboard-datagen/internal/models"
)

const (
	minSubstitutionCount = 10
	maxSubstitutionCount = 300
)

// Substitutions samples up to MaxSubstitutions distinct brands without
// replacement and pairs the i-th brand of the sample with the i-th brand
// from its end. An odd middle element stays unpaired, so the result always
// holds floor(len(sample)/2) pairs of two different brands.
func (g *Generator) Substitutions(src Source) []models.SubstitutionPair {
	rng := g.rand(streamSubstitutions)

	brands := slices.Clone(src.Brands())
	k := min(g.params.MaxSubstitutions, len(brands))

	// Partial Fisher-Yates: brands[:k] becomes a uniform sample.
	for i := range k {
		j := i + rng.IntN(len(brands)-i)
		brands[i], brands[j] = brands[j], brands[i]
	}
	sample := brands[:k]

	out := make([]models.SubstitutionPair, 0, k/2)
	for i := range k / 2 {
		out = append(out, models.SubstitutionPair{
			Original:     sample[i],
			Substitution: sample[k-1-i],
			Count:        between(rng, minSubstitutionCount, maxSubstitutionCount),
			Reason:       pick(rng, g.params.Reasons),
		})
	}

	return out
}
