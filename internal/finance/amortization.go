// Package finance implements fixed-rate mortgage math.
// Functions are pure; they never read clocks, config or storage.
package finance

import (
	"errors"
	"fmt"
	"math"

	"broker_portal_backend/platform/apperr"

	"github.com/shopspring/decimal"
)

const (
	// MaxAnnualRatePercent bounds accepted interest rates.
	MaxAnnualRatePercent = 100.0
	monthsPerYear        = 12
)

// ErrInvalidInput marks loan parameters the payment formula cannot use.
var ErrInvalidInput = errors.New("invalid loan input")

// LoanSummary is the full cost of a fixed-rate loan.
type LoanSummary struct {
	Principal       float64 `json:"principal"`
	AnnualRate      float64 `json:"annualRate"`
	TermYears       int     `json:"termYears"`
	MonthlyPayment  float64 `json:"monthlyPayment"`
	TotalPaid       float64 `json:"totalPaid"`
	TotalInterest   float64 `json:"totalInterest"`
	NumberOfPayment int     `json:"numberOfPayments"`
}

// MonthlyPayment returns the level monthly payment for principal borrowed at
// annualRatePercent over termYears:
//
//	M = P * r(1+r)^n / ((1+r)^n - 1), r = rate/100/12, n = years*12
//
// A zero rate degenerates to P/n.
func MonthlyPayment(principal, annualRatePercent float64, termYears int) (float64, error) {
	if err := validate(principal, annualRatePercent, termYears); err != nil {
		return 0, err
	}

	n := float64(termYears * monthsPerYear)
	r := annualRatePercent / 100 / monthsPerYear
	if r == 0 {
		return principal / n, nil
	}

	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1), nil
}

// MonthlySavings is payment(currentRate) - payment(newRate), never negative.
func MonthlySavings(principal, currentRate, newRate float64, termYears int) (float64, error) {
	current, err := MonthlyPayment(principal, currentRate, termYears)
	if err != nil {
		return 0, err
	}
	next, err := MonthlyPayment(principal, newRate, termYears)
	if err != nil {
		return 0, err
	}
	if newRate >= currentRate {
		return 0, nil
	}
	return math.Max(current-next, 0), nil
}

// Summarize computes payment, total paid and total interest, rounded to cents.
func Summarize(principal, annualRatePercent float64, termYears int) (LoanSummary, error) {
	payment, err := MonthlyPayment(principal, annualRatePercent, termYears)
	if err != nil {
		return LoanSummary{}, err
	}

	months := termYears * monthsPerYear
	total := decimal.NewFromFloat(payment).Mul(decimal.NewFromInt(int64(months)))
	interest := total.Sub(decimal.NewFromFloat(principal))

	return LoanSummary{
		Principal:       RoundCents(principal),
		AnnualRate:      annualRatePercent,
		TermYears:       termYears,
		MonthlyPayment:  RoundCents(payment),
		TotalPaid:       total.Round(2).InexactFloat64(),
		TotalInterest:   interest.Round(2).InexactFloat64(),
		NumberOfPayment: months,
	}, nil
}

// RoundCents rounds a money amount half away from zero to two decimals.
func RoundCents(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

func validate(principal, rate float64, termYears int) error {
	switch {
	case math.IsNaN(principal) || math.IsInf(principal, 0):
		return invalid("principal must be a finite number")
	case principal < 0:
		return invalid(fmt.Sprintf("principal must not be negative, got %.2f", principal))
	case termYears <= 0:
		return invalid(fmt.Sprintf("term must be at least one year, got %d", termYears))
	case math.IsNaN(rate) || math.IsInf(rate, 0):
		return invalid("rate must be a finite number")
	case rate < 0 || rate > MaxAnnualRatePercent:
		return invalid(fmt.Sprintf("rate must be between 0 and %.0f percent, got %.3f", MaxAnnualRatePercent, rate))
	}
	return nil
}

func invalid(message string) error {
	return apperr.Wrap(apperr.KindValidation, message, ErrInvalidInput).WithOp("finance")
}
