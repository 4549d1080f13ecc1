package domain

import "github.com/google/uuid"

// UrgencyTier is the categorical priority derived from a score.
type UrgencyTier string

const (
	UrgencyCritical UrgencyTier = "critical"
	UrgencyHigh     UrgencyTier = "high"
	UrgencyMedium   UrgencyTier = "medium"
	UrgencyLow      UrgencyTier = "low"
)

// ScoreBreakdown shows how a score was assembled.
type ScoreBreakdown struct {
	Financial  int     `json:"financial"`
	Urgency    int     `json:"urgency"`
	Pipeline   int     `json:"pipeline"`
	TargetHit  int     `json:"targetHit"`
	Base       int     `json:"base"`
	Multiplier float64 `json:"multiplier"`
}

// OpportunityScore ranks how worthwhile a call to a client is right now.
// It is recomputed on every request and never stored.
type OpportunityScore struct {
	ClientID             uuid.UUID
	ClientName           string
	Score                int
	Urgency              UrgencyTier
	Breakdown            ScoreBreakdown
	SavingsMonthly       float64
	SavingsAnnual        float64
	DaysSinceContact     int
	EffectiveCurrentRate float64
	RateAssumed          bool
	Reasoning            []string
	CallRecommendation   string
}

// PipelineInsights buckets clients by stage and contact recency.
// A client can appear in any number of buckets.
type PipelineInsights struct {
	Stale          []ClientRecord
	ReadyToAdvance []ClientRecord
	NeedsFollowUp  []ClientRecord
	Hot            []ClientRecord
	Cold           []ClientRecord
	PipelineValue  float64
	StageCounts    map[Stage]int
}

// MonitoringInsights buckets monitored mortgages by rate position and contact recency.
type MonitoringInsights struct {
	TargetHit       []MortgageRecord
	CloseToTarget   []MortgageRecord
	StaleMonitoring []MortgageRecord
	MonitoredVolume float64
}
