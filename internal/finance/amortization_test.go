package finance

import (
	"errors"
	"math"
	"testing"

	"broker_portal_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPaymentStandardThirtyYear(t *testing.T) {
	payment, err := MonthlyPayment(200000, 6, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1199.10, payment, 0.005)
}

func TestMonthlyPaymentZeroRateIsStraightLine(t *testing.T) {
	cases := []struct {
		principal float64
		years     int
	}{
		{120000, 10},
		{360000, 30},
		{1, 1},
	}
	for _, tc := range cases {
		payment, err := MonthlyPayment(tc.principal, 0, tc.years)
		require.NoError(t, err)
		assert.InDelta(t, tc.principal/float64(tc.years*12), payment, 1e-9)
	}
}

func TestMonthlyPaymentZeroPrincipal(t *testing.T) {
	payment, err := MonthlyPayment(0, 6.5, 30)
	require.NoError(t, err)
	assert.Zero(t, payment)
}

func TestMonthlyPaymentRejectsInvalidInput(t *testing.T) {
	cases := map[string]struct {
		principal float64
		rate      float64
		years     int
	}{
		"negative principal": {-1, 6, 30},
		"zero term":          {200000, 6, 0},
		"negative term":      {200000, 6, -5},
		"negative rate":      {200000, -0.5, 30},
		"rate above 100":     {200000, 100.5, 30},
		"nan principal":      {math.NaN(), 6, 30},
		"infinite rate":      {200000, math.Inf(1), 30},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := MonthlyPayment(tc.principal, tc.rate, tc.years)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestMonthlySavingsMatchesPaymentDifference(t *testing.T) {
	current, err := MonthlyPayment(400000, 7, 30)
	require.NoError(t, err)
	target, err := MonthlyPayment(400000, 6, 30)
	require.NoError(t, err)

	savings, err := MonthlySavings(400000, 7, 6, 30)
	require.NoError(t, err)
	assert.Greater(t, savings, 0.0)
	assert.InDelta(t, current-target, savings, 1e-9)
}

func TestMonthlySavingsClampsWhenRateNotBetter(t *testing.T) {
	same, err := MonthlySavings(400000, 6, 6, 30)
	require.NoError(t, err)
	assert.Zero(t, same)

	worse, err := MonthlySavings(400000, 6, 7.25, 30)
	require.NoError(t, err)
	assert.Zero(t, worse)
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(200000, 6, 30)
	require.NoError(t, err)

	assert.Equal(t, 1199.10, summary.MonthlyPayment)
	assert.Equal(t, 360, summary.NumberOfPayment)
	assert.InDelta(t, 431676.38, summary.TotalPaid, 0.01)
	assert.InDelta(t, summary.TotalPaid-200000, summary.TotalInterest, 0.01)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 1199.1, RoundCents(1199.101))
	assert.Equal(t, 10.13, RoundCents(10.125))
	assert.Equal(t, -2.5, RoundCents(-2.499))
}
