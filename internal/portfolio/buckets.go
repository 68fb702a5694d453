package portfolio

import (
	"github.com/shopspring/decimal"

	"yieldvest/internal/models"
	"yieldvest/internal/valuation"
)

// Tenure ranges used to bucket holdings by product tenure.
const (
	TenureUpTo12  = "0-12m"
	Tenure13To24  = "13-24m"
	Tenure25To36  = "25-36m"
	TenureOver36  = "37m+"
	maxTypeCount  = 5
	maxRiskCount  = 3
	typeWeight    = 60.0
	riskWeight    = 40.0
	percentPlaces = 2
)

// TenureRanges lists tenure buckets in ascending order.
var TenureRanges = []string{TenureUpTo12, Tenure13To24, Tenure25To36, TenureOver36}

// TenureRange returns the bucket a tenure of months falls in.
func TenureRange(months int) string {
	switch {
	case months <= 12:
		return TenureUpTo12
	case months <= 24:
		return Tenure13To24
	case months <= 36:
		return Tenure25To36
	default:
		return TenureOver36
	}
}

// Bucket is one group of holdings within a breakdown axis.
type Bucket struct {
	Key          string          `json:"key"`
	Count        int             `json:"count"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"current_value"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// Breakdown groups holdings by product type, risk level and tenure range.
// Only non-empty buckets are listed, in fixed display order.
type Breakdown struct {
	ByType   []Bucket `json:"by_type"`
	ByRisk   []Bucket `json:"by_risk"`
	ByTenure []Bucket `json:"by_tenure"`
}

// axis accumulates one breakdown dimension over a fixed, ordered key set.
type axis struct {
	keys    []string
	buckets map[string]*Bucket
}

func newAxis(keys []string) *axis {
	a := &axis{keys: keys, buckets: make(map[string]*Bucket, len(keys))}
	for _, k := range keys {
		a.buckets[k] = &Bucket{Key: k}
	}
	return a
}

func (a *axis) add(key string, invested, value decimal.Decimal) {
	b, ok := a.buckets[key]
	if !ok {
		// Unknown keys are appended so no value is dropped from the totals.
		b = &Bucket{Key: key}
		a.buckets[key] = b
		a.keys = append(a.keys, key)
	}
	b.Count++
	b.Invested = b.Invested.Add(invested)
	b.CurrentValue = b.CurrentValue.Add(value)
}

// finish returns the non-empty buckets with their share of total.
func (a *axis) finish(total decimal.Decimal) []Bucket {
	out := make([]Bucket, 0, len(a.keys))
	for _, k := range a.keys {
		b := a.buckets[k]
		if b.Count == 0 {
			continue
		}
		b.Percentage = percentOf(b.CurrentValue, total)
		out = append(out, *b)
	}
	return out
}

type breakdownBuilder struct {
	types, risks, tenures *axis
}

func newBreakdownBuilder() *breakdownBuilder {
	types := make([]string, len(models.ProductTypes))
	for i, t := range models.ProductTypes {
		types[i] = string(t)
	}
	risks := make([]string, len(models.RiskLevels))
	for i, r := range models.RiskLevels {
		risks[i] = string(r)
	}
	return &breakdownBuilder{
		types:   newAxis(types),
		risks:   newAxis(risks),
		tenures: newAxis(append([]string(nil), TenureRanges...)),
	}
}

func (b *breakdownBuilder) add(p *models.Product, invested, value decimal.Decimal) {
	b.types.add(string(p.Type), invested, value)
	b.risks.add(string(p.RiskLevel), invested, value)
	b.tenures.add(TenureRange(p.TenureMonths), invested, value)
}

func (b *breakdownBuilder) finish(total decimal.Decimal) Breakdown {
	return Breakdown{
		ByType:   b.types.finish(total),
		ByRisk:   b.risks.finish(total),
		ByTenure: b.tenures.finish(total),
	}
}

// percentOf returns part as a percentage of total, or 0 when total is 0.
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(percentPlaces)
}

// lookup resolves the product an investment was priced against.
func lookup(inv *models.Investment, products map[string]*models.Product) (*models.Product, error) {
	p := products[inv.ProductID]
	if err := valuation.CheckSnapshot(inv, p); err != nil {
		return nil, err
	}
	return p, nil
}
