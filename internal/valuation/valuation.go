// Package valuation prices a single fixed-tenure investment: the projected
// maturity value at purchase, and the time-interpolated value at any instant
// between purchase and maturity.
//
// Every function is pure. Callers supply "now" and are responsible for
// rejecting out-of-range inputs (non-positive amounts, zero tenure) before
// calling in; the engine does not re-validate them.
package valuation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"yieldvest/internal/models"
)

// ErrInconsistentSnapshot is returned when an investment is evaluated against
// a product that cannot have priced it. It signals broken referential
// integrity in the caller's data, never a user error.
var ErrInconsistentSnapshot = errors.New("valuation: inconsistent investment/product snapshot")

// Day is the unit days-to-maturity is counted in.
const Day = 24 * time.Hour

// CurrencyPlaces is the number of decimal places monetary results are rounded to.
const CurrencyPlaces = 2

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// ExpectedReturn projects amount to maturity with monthly compounding:
// amount * (1 + annualYieldPct/100/12) ^ tenureMonths, rounded to currency precision.
func ExpectedReturn(amount, annualYieldPct decimal.Decimal, tenureMonths int) decimal.Decimal {
	monthlyRate := annualYieldPct.Div(hundred).Div(twelve)
	growth := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(tenureMonths)))
	return amount.Mul(growth).Round(CurrencyPlaces)
}

// MaturityDate returns investedAt advanced by tenureMonths calendar months.
func MaturityDate(investedAt time.Time, tenureMonths int) time.Time {
	return investedAt.AddDate(0, tenureMonths, 0)
}

// CurrentValue returns the value of inv at now.
//
// A matured investment with a settled actual return is worth exactly that.
// Otherwise the value moves linearly from Amount at InvestedAt to
// ExpectedReturn at MaturityDate, and is clamped at both ends: there is no
// extrapolation past maturity without a settlement.
func CurrentValue(inv *models.Investment, now time.Time) decimal.Decimal {
	if inv.Status == models.InvestmentStatusMatured && inv.ActualReturn.Valid {
		return inv.ActualReturn.Decimal
	}
	if !now.After(inv.InvestedAt) {
		return inv.Amount
	}
	if !now.Before(inv.MaturityDate) {
		return inv.ExpectedReturn
	}

	elapsed := decimal.NewFromInt(int64(now.Sub(inv.InvestedAt)))
	total := decimal.NewFromInt(int64(inv.MaturityDate.Sub(inv.InvestedAt)))
	progress := elapsed.Div(total)

	growth := inv.ExpectedReturn.Sub(inv.Amount)
	return inv.Amount.Add(growth.Mul(progress)).Round(CurrencyPlaces)
}

// GainLoss compares the current value of inv against the amount invested.
// Amount is guaranteed positive by the investment invariants.
func GainLoss(inv *models.Investment, now time.Time) models.GainLoss {
	absolute := CurrentValue(inv, now).Sub(inv.Amount)
	return models.GainLoss{
		Absolute:   absolute,
		Percentage: absolute.Div(inv.Amount).Mul(hundred).Round(CurrencyPlaces),
	}
}

// DaysToMaturity counts whole days, rounded up, until inv matures.
// Matured investments and past maturity dates yield 0.
func DaysToMaturity(inv *models.Investment, now time.Time) int {
	if inv.Status == models.InvestmentStatusMatured {
		return 0
	}
	remaining := inv.MaturityDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / Day)
	if remaining%Day != 0 {
		days++
	}
	return days
}

// Valuation holds the derived, read-time fields of an investment.
type Valuation struct {
	CurrentValue   decimal.Decimal `json:"current_value"`
	GainLoss       models.GainLoss `json:"gain_loss"`
	DaysToMaturity int             `json:"days_to_maturity"`
}

// CheckSnapshot verifies product is the product inv was priced against and
// carries usable terms.
func CheckSnapshot(inv *models.Investment, product *models.Product) error {
	if product == nil {
		return fmt.Errorf("%w: investment %s has no product", ErrInconsistentSnapshot, inv.ID)
	}
	if inv.ProductID != "" && product.ID != inv.ProductID {
		return fmt.Errorf("%w: investment %s references product %s, got %s",
			ErrInconsistentSnapshot, inv.ID, inv.ProductID, product.ID)
	}
	if product.TenureMonths < 1 {
		return fmt.Errorf("%w: product %s has tenure %d", ErrInconsistentSnapshot, product.ID, product.TenureMonths)
	}
	if product.AnnualYield.IsNegative() {
		return fmt.Errorf("%w: product %s has negative yield", ErrInconsistentSnapshot, product.ID)
	}
	return nil
}

// Evaluate computes every derived field of inv at now.
func Evaluate(inv *models.Investment, product *models.Product, now time.Time) (Valuation, error) {
	if err := CheckSnapshot(inv, product); err != nil {
		return Valuation{}, err
	}
	return Valuation{
		CurrentValue:   CurrentValue(inv, now),
		GainLoss:       GainLoss(inv, now),
		DaysToMaturity: DaysToMaturity(inv, now),
	}, nil
}

// Attach evaluates inv against its preloaded Product and stores the derived
// fields on the record for the response.
func Attach(inv *models.Investment, now time.Time) error {
	v, err := Evaluate(inv, inv.Product, now)
	if err != nil {
		return err
	}
	inv.CurrentValue = &v.CurrentValue
	inv.GainLoss = &v.GainLoss
	inv.DaysToMaturity = &v.DaysToMaturity
	return nil
}
