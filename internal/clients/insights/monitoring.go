package insights

import (
	"time"

	"broker_portal_backend/internal/clients/domain"
)

// MarketRateFor returns the record's own market rate, or fallback when it has none.
func MarketRateFor(m domain.MortgageRecord, fallback float64) float64 {
	if m.MarketRate != nil {
		return *m.MarketRate
	}
	return fallback
}

// IsTargetHit reports whether the market has reached the client's target.
func (t Thresholds) IsTargetHit(m domain.MortgageRecord, marketRate float64) bool {
	return MarketRateFor(m, marketRate) <= m.TargetRate
}

// IsCloseToTarget reports a market rate above target by at most CloseToTargetSpread.
func (t Thresholds) IsCloseToTarget(m domain.MortgageRecord, marketRate float64) bool {
	rate := MarketRateFor(m, marketRate)
	return rate > m.TargetRate && rate <= m.TargetRate+t.CloseToTargetSpread
}

// IsStaleMonitoring reports that neither a person nor the dialer has reached
// the client recently. Missing timestamps count as never.
func (t Thresholds) IsStaleMonitoring(m domain.MortgageRecord, now time.Time) bool {
	manual := domain.DaysSince(m.LastManualContact, now)
	automated := domain.DaysSince(m.LastAutomatedCall, now)
	return min(manual, automated) >= t.StaleMonitoringDays
}

// Monitoring evaluates every mortgage bucket. marketRate is used for records
// that carry no market rate of their own.
func (t Thresholds) Monitoring(mortgages []domain.MortgageRecord, marketRate float64, now time.Time) domain.MonitoringInsights {
	out := domain.MonitoringInsights{
		TargetHit:       []domain.MortgageRecord{},
		CloseToTarget:   []domain.MortgageRecord{},
		StaleMonitoring: []domain.MortgageRecord{},
	}

	for _, m := range mortgages {
		out.MonitoredVolume += m.LoanAmount
		if t.IsTargetHit(m, marketRate) {
			out.TargetHit = append(out.TargetHit, m)
		}
		if t.IsCloseToTarget(m, marketRate) {
			out.CloseToTarget = append(out.CloseToTarget, m)
		}
		if t.IsStaleMonitoring(m, now) {
			out.StaleMonitoring = append(out.StaleMonitoring, m)
		}
	}
	return out
}
