// Package insights partitions client and mortgage lists into the buckets
// shown on the broker dashboard. Each bucket is an independent predicate, so
// a record can land in several buckets or in none.
package insights

import (
	"time"

	"broker_portal_backend/internal/clients/domain"
)

// Thresholds are the day and rate cut-offs behind each bucket.
type Thresholds struct {
	StaleDays          int
	ReadyToAdvanceDays int
	FollowUpDays       int
	HotDays            int
	ColdDays           int

	CloseToTargetSpread float64
	StaleMonitoringDays int
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StaleDays:           14,
		ReadyToAdvanceDays:  7,
		FollowUpDays:        7,
		HotDays:             7,
		ColdDays:            30,
		CloseToTargetSpread: 0.25,
		StaleMonitoringDays: 60,
	}
}

var (
	staleStages = []domain.Stage{domain.StageNew, domain.StageProspect}
	hotStages   = []domain.Stage{domain.StageQualified, domain.StageApplication, domain.StageClosing}
)

// IsStale reports whether an early-funnel client has been left alone too long.
func (t Thresholds) IsStale(c domain.ClientRecord, now time.Time) bool {
	return c.Stage.In(staleStages...) && c.DaysSinceContact(now) >= t.StaleDays
}

// IsReadyToAdvance reports whether a qualified client was contacted recently.
func (t Thresholds) IsReadyToAdvance(c domain.ClientRecord, now time.Time) bool {
	return c.Stage == domain.StageQualified && c.DaysSinceContact(now) <= t.ReadyToAdvanceDays
}

// NeedsFollowUp reports whether an application has waited on the broker too long.
func (t Thresholds) NeedsFollowUp(c domain.ClientRecord, now time.Time) bool {
	return c.Stage == domain.StageApplication && c.DaysSinceContact(now) >= t.FollowUpDays
}

// IsHot reports whether a late-funnel client was contacted recently.
func (t Thresholds) IsHot(c domain.ClientRecord, now time.Time) bool {
	return c.DaysSinceContact(now) <= t.HotDays && c.Stage.In(hotStages...)
}

// IsCold reports a long contact gap regardless of stage.
func (t Thresholds) IsCold(c domain.ClientRecord, now time.Time) bool {
	return c.DaysSinceContact(now) >= t.ColdDays
}

// Pipeline evaluates every client bucket over clients.
func (t Thresholds) Pipeline(clients []domain.ClientRecord, now time.Time) domain.PipelineInsights {
	out := domain.PipelineInsights{
		Stale:          []domain.ClientRecord{},
		ReadyToAdvance: []domain.ClientRecord{},
		NeedsFollowUp:  []domain.ClientRecord{},
		Hot:            []domain.ClientRecord{},
		Cold:           []domain.ClientRecord{},
		StageCounts:    make(map[domain.Stage]int),
	}

	for _, c := range clients {
		out.StageCounts[c.Stage]++
		if c.Stage.IsOpen() {
			out.PipelineValue += c.LoanAmount
		}
		if t.IsStale(c, now) {
			out.Stale = append(out.Stale, c)
		}
		if t.IsReadyToAdvance(c, now) {
			out.ReadyToAdvance = append(out.ReadyToAdvance, c)
		}
		if t.NeedsFollowUp(c, now) {
			out.NeedsFollowUp = append(out.NeedsFollowUp, c)
		}
		if t.IsHot(c, now) {
			out.Hot = append(out.Hot, c)
		}
		if t.IsCold(c, now) {
			out.Cold = append(out.Cold, c)
		}
	}
	return out
}
