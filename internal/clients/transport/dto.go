package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListOpportunitiesRequest holds query parameters for the ranked list.
type ListOpportunitiesRequest struct {
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Product string `form:"product" validate:"omitempty,max=50"`
}

// ScoreRequest scores clients supplied in the body without touching storage.
type ScoreRequest struct {
	MarketRate float64              `json:"marketRate" validate:"gt=0,lte=100"`
	Limit      int                  `json:"limit" validate:"omitempty,min=1,max=500"`
	AsOf       *time.Time           `json:"asOf,omitempty"`
	Clients    []ScoreClientPayload `json:"clients" validate:"required,min=1,max=1000,dive"`
}

// ScoreClientPayload is one client in an ad-hoc scoring request.
type ScoreClientPayload struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	FirstName   string     `json:"firstName" validate:"max=100"`
	LastName    string     `json:"lastName" validate:"max=100"`
	LoanAmount  float64    `json:"loanAmount" validate:"gte=0"`
	TargetRate  float64    `json:"targetRate" validate:"gte=0,lte=100"`
	CurrentRate *float64   `json:"currentRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TermYears   *int       `json:"termYears,omitempty" validate:"omitempty,min=1,max=50"`
	Stage       string     `json:"stage" validate:"omitempty,stage"`
	LastContact *time.Time `json:"lastContact,omitempty"`
}

// ScoreBreakdownResponse explains a score.
type ScoreBreakdownResponse struct {
	Financial  int     `json:"financial"`
	Urgency    int     `json:"urgency"`
	Pipeline   int     `json:"pipeline"`
	TargetHit  int     `json:"targetHit"`
	Base       int     `json:"base"`
	Multiplier float64 `json:"multiplier"`
}

// OpportunityResponse is one scored client.
type OpportunityResponse struct {
	ClientID             uuid.UUID              `json:"clientId"`
	ClientName           string                 `json:"clientName"`
	Score                int                    `json:"score"`
	Urgency              string                 `json:"urgency"`
	Breakdown            ScoreBreakdownResponse `json:"breakdown"`
	SavingsMonthly       float64                `json:"savingsMonthly"`
	SavingsAnnual        float64                `json:"savingsAnnual"`
	DaysSinceContact     int                    `json:"daysSinceContact"`
	EffectiveCurrentRate float64                `json:"effectiveCurrentRate"`
	RateAssumed          bool                   `json:"rateAssumed"`
	Reasoning            []string               `json:"reasoning"`
	CallRecommendation   string                 `json:"callRecommendation"`
}

// SkippedClientResponse names a client that could not be scored.
type SkippedClientResponse struct {
	ClientID   uuid.UUID `json:"clientId"`
	ClientName string    `json:"clientName"`
	Reason     string    `json:"reason"`
}

// OpportunityListResponse is the ranked list for a broker.
type OpportunityListResponse struct {
	MarketRate    float64                 `json:"marketRate"`
	Product       string                  `json:"product,omitempty"`
	GeneratedAt   time.Time               `json:"generatedAt"`
	Total         int                     `json:"total"`
	Opportunities []OpportunityResponse   `json:"opportunities"`
	Skipped       []SkippedClientResponse `json:"skipped"`
}

// ClientSummary is the dashboard view of a client inside an insight bucket.
type ClientSummary struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Stage            string     `json:"stage"`
	LoanAmount       float64    `json:"loanAmount"`
	LastContact      *time.Time `json:"lastContact,omitempty"`
	DaysSinceContact int        `json:"daysSinceContact"`
}

// PipelineInsightsResponse is the pipeline board summary.
type PipelineInsightsResponse struct {
	Stale          []ClientSummary `json:"stale"`
	ReadyToAdvance []ClientSummary `json:"readyToAdvance"`
	NeedsFollowUp  []ClientSummary `json:"needsFollowUp"`
	Hot            []ClientSummary `json:"hot"`
	Cold           []ClientSummary `json:"cold"`
	PipelineValue  float64         `json:"pipelineValue"`
	StageCounts    map[string]int  `json:"stageCounts"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}

// MortgageSummary is the monitoring view of a mortgage.
type MortgageSummary struct {
	ID                uuid.UUID  `json:"id"`
	ClientID          uuid.UUID  `json:"clientId"`
	ClientName        string     `json:"clientName"`
	LoanAmount        float64    `json:"loanAmount"`
	LoanProduct       string     `json:"loanProduct"`
	CurrentRate       float64    `json:"currentRate"`
	TargetRate        float64    `json:"targetRate"`
	MarketRate        float64    `json:"marketRate"`
	LastManualContact *time.Time `json:"lastManualContact,omitempty"`
	LastAutomatedCall *time.Time `json:"lastAutomatedCall,omitempty"`
}

// MonitoringInsightsResponse is the rate monitoring summary.
type MonitoringInsightsResponse struct {
	MarketRate      float64           `json:"marketRate"`
	Product         string            `json:"product"`
	TargetHit       []MortgageSummary `json:"targetHit"`
	CloseToTarget   []MortgageSummary `json:"closeToTarget"`
	StaleMonitoring []MortgageSummary `json:"staleMonitoring"`
	MonitoredVolume float64           `json:"monitoredVolume"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}

// PaymentRequest asks for the cost of a loan, optionally compared to a new rate.
type PaymentRequest struct {
	Principal  float64  `json:"principal" validate:"gte=0"`
	AnnualRate float64  `json:"annualRate" validate:"gte=0,lte=100"`
	TermYears  int      `json:"termYears" validate:"required,min=1,max=50"`
	TargetRate *float64 `json:"targetRate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// PaymentResponse is the loan summary with optional savings.
type PaymentResponse struct {
	MonthlyPayment   float64  `json:"monthlyPayment"`
	TotalPaid        float64  `json:"totalPaid"`
	TotalInterest    float64  `json:"totalInterest"`
	NumberOfPayments int      `json:"numberOfPayments"`
	TargetPayment    *float64 `json:"targetPayment,omitempty"`
	SavingsMonthly   *float64 `json:"savingsMonthly,omitempty"`
	SavingsAnnual    *float64 `json:"savingsAnnual,omitempty"`
}
