// Package portfolio rolls many valued investments up into portfolio-level
// views: totals, allocation, diversification, performance over time and
// upcoming maturities.
//
// Every function makes a single pass over its input and performs no I/O. The
// products map must hold, for each investment, the product version it was
// priced against; a missing entry is reported as
// valuation.ErrInconsistentSnapshot.
package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"yieldvest/internal/models"
	"yieldvest/internal/valuation"
)

// Snapshot is the derived, unpersisted summary of a set of investments.
type Snapshot struct {
	TotalInvested       decimal.Decimal `json:"total_invested"`
	TotalCurrentValue   decimal.Decimal `json:"total_current_value"`
	TotalGain           decimal.Decimal `json:"total_gain"`
	TotalGainPercentage decimal.Decimal `json:"total_gain_percentage"`
	InvestmentCount     int             `json:"investment_count"`
	Breakdown
}

// Allocation is the breakdown of active holdings by current value.
type Allocation struct {
	TotalValue           decimal.Decimal `json:"total_value"`
	DiversificationScore int             `json:"diversification_score"`
	Breakdown
}

// PerformancePoint is one calendar month of investing activity.
type PerformancePoint struct {
	Month              string          `json:"month"`
	Count              int             `json:"count"`
	Invested           decimal.Decimal `json:"invested"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	CumulativeInvested decimal.Decimal `json:"cumulative_invested"`
	CumulativeValue    decimal.Decimal `json:"cumulative_value"`
	CumulativeGain     decimal.Decimal `json:"cumulative_gain"`
}

// FilterByStatus returns the investments whose status is one of statuses.
func FilterByStatus(investments []models.Investment, statuses ...models.InvestmentStatus) []models.Investment {
	out := make([]models.Investment, 0, len(investments))
	for i := range investments {
		for _, s := range statuses {
			if investments[i].Status == s {
				out = append(out, investments[i])
				break
			}
		}
	}
	return out
}

// Summarize totals every investment given, whatever its status. Callers that
// want an active-only view filter before calling.
func Summarize(investments []models.Investment, products map[string]*models.Product, now time.Time) (Snapshot, error) {
	var snap Snapshot
	builder := newBreakdownBuilder()

	for i := range investments {
		inv := &investments[i]
		p, err := lookup(inv, products)
		if err != nil {
			return Snapshot{}, err
		}
		value := valuation.CurrentValue(inv, now)
		snap.TotalInvested = snap.TotalInvested.Add(inv.Amount)
		snap.TotalCurrentValue = snap.TotalCurrentValue.Add(value)
		snap.InvestmentCount++
		builder.add(p, inv.Amount, value)
	}

	snap.TotalGain = snap.TotalCurrentValue.Sub(snap.TotalInvested)
	snap.TotalGainPercentage = percentOf(snap.TotalGain, snap.TotalInvested)
	snap.Breakdown = builder.finish(snap.TotalCurrentValue)
	return snap, nil
}

// Allocate breaks active investments down by current value. Matured and
// cancelled investments are ignored.
func Allocate(investments []models.Investment, products map[string]*models.Product, now time.Time) (Allocation, error) {
	var alloc Allocation
	builder := newBreakdownBuilder()

	for i := range investments {
		inv := &investments[i]
		if inv.Status != models.InvestmentStatusActive {
			continue
		}
		p, err := lookup(inv, products)
		if err != nil {
			return Allocation{}, err
		}
		value := valuation.CurrentValue(inv, now)
		alloc.TotalValue = alloc.TotalValue.Add(value)
		builder.add(p, inv.Amount, value)
	}

	alloc.Breakdown = builder.finish(alloc.TotalValue)
	alloc.DiversificationScore = DiversificationScore(alloc.ByType, alloc.ByRisk)
	return alloc, nil
}

// DiversificationScore rates spread across product types (60 points, full at
// 5 types) and risk levels (40 points, full at 3 levels) on a 0-100 scale.
// Only non-empty buckets count.
func DiversificationScore(typeBuckets, riskBuckets []Bucket) int {
	types := float64(nonEmpty(typeBuckets))
	risks := float64(nonEmpty(riskBuckets))
	score := math.Min(types/maxTypeCount, 1)*typeWeight + math.Min(risks/maxRiskCount, 1)*riskWeight
	return int(math.Round(score))
}

func nonEmpty(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		if b.Count > 0 {
			n++
		}
	}
	return n
}

// monthKey truncates t to the first instant of its calendar month, in UTC.
func monthKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Performance groups investments made within [from, to] by the calendar
// month of InvestedAt, ordered by month, with running totals from the first
// month. Months without investments are omitted.
func Performance(investments []models.Investment, products map[string]*models.Product, from, to, now time.Time) ([]PerformancePoint, error) {
	byMonth := make(map[time.Time]*PerformancePoint)
	var months []time.Time

	for i := range investments {
		inv := &investments[i]
		if inv.InvestedAt.Before(from) || inv.InvestedAt.After(to) {
			continue
		}
		if _, err := lookup(inv, products); err != nil {
			return nil, err
		}
		key := monthKey(inv.InvestedAt)
		point, ok := byMonth[key]
		if !ok {
			point = &PerformancePoint{Month: key.Format("2006-01")}
			byMonth[key] = point
			months = append(months, key)
		}
		point.Count++
		point.Invested = point.Invested.Add(inv.Amount)
		point.CurrentValue = point.CurrentValue.Add(valuation.CurrentValue(inv, now))
	}

	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	series := make([]PerformancePoint, 0, len(months))
	var cumInvested, cumValue decimal.Decimal
	for _, m := range months {
		point := byMonth[m]
		cumInvested = cumInvested.Add(point.Invested)
		cumValue = cumValue.Add(point.CurrentValue)
		point.CumulativeInvested = cumInvested
		point.CumulativeValue = cumValue
		point.CumulativeGain = cumValue.Sub(cumInvested)
		series = append(series, *point)
	}
	return series, nil
}

// UpcomingMaturities returns active investments maturing on or before
// now + horizonDays, soonest first, each valued at now.
func UpcomingMaturities(investments []models.Investment, products map[string]*models.Product, now time.Time, horizonDays int) ([]models.Investment, error) {
	cutoff := now.Add(time.Duration(horizonDays) * valuation.Day)

	out := make([]models.Investment, 0)
	for i := range investments {
		inv := investments[i]
		if inv.Status != models.InvestmentStatusActive || inv.MaturityDate.After(cutoff) {
			continue
		}
		p, err := lookup(&inv, products)
		if err != nil {
			return nil, err
		}
		inv.Product = p
		if err := valuation.Attach(&inv, now); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].MaturityDate.Before(out[j].MaturityDate) })
	return out, nil
}

// ProductIndex maps product IDs to products for the aggregation functions.
func ProductIndex(products []models.Product) map[string]*models.Product {
	index := make(map[string]*models.Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index
}

// ProductsOf indexes the products preloaded on investments.
func ProductsOf(investments []models.Investment) map[string]*models.Product {
	index := make(map[string]*models.Product, len(investments))
	for i := range investments {
		if p := investments[i].Product; p != nil {
			index[p.ID] = p
		}
	}
	return index
}
