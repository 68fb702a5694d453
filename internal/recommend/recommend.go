// Package recommend ranks catalog products for a risk profile. It is the
// deterministic path used whether or not a text generator is available.
package recommend

import (
	"sort"

	"yieldvest/internal/models"
)

// Rank returns at most topN active products matching riskProfile, highest
// annual yield first. Equal yields keep their input order. A non-positive
// topN yields an empty result.
func Rank(riskProfile models.RiskLevel, products []models.Product, topN int) []models.Product {
	if topN <= 0 {
		return []models.Product{}
	}

	matches := make([]models.Product, 0, len(products))
	for i := range products {
		if products[i].IsActive && products[i].RiskLevel == riskProfile {
			matches = append(matches, products[i])
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AnnualYield.GreaterThan(matches[j].AnnualYield)
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
