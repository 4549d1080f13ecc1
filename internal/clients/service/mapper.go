package service

import (
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/insights"
	"broker_portal_backend/internal/clients/scoring"
	"broker_portal_backend/internal/clients/transport"
	"broker_portal_backend/internal/finance"
)

// ToOpportunityResponse converts a score for the API, rounding money to cents.
func ToOpportunityResponse(score domain.OpportunityScore) transport.OpportunityResponse {
	return transport.OpportunityResponse{
		ClientID:   score.ClientID,
		ClientName: score.ClientName,
		Score:      score.Score,
		Urgency:    string(score.Urgency),
		Breakdown: transport.ScoreBreakdownResponse{
			Financial:  score.Breakdown.Financial,
			Urgency:    score.Breakdown.Urgency,
			Pipeline:   score.Breakdown.Pipeline,
			TargetHit:  score.Breakdown.TargetHit,
			Base:       score.Breakdown.Base,
			Multiplier: score.Breakdown.Multiplier,
		},
		SavingsMonthly:       finance.RoundCents(score.SavingsMonthly),
		SavingsAnnual:        finance.RoundCents(score.SavingsAnnual),
		DaysSinceContact:     score.DaysSinceContact,
		EffectiveCurrentRate: score.EffectiveCurrentRate,
		RateAssumed:          score.RateAssumed,
		Reasoning:            score.Reasoning,
		CallRecommendation:   score.CallRecommendation,
	}
}

// ToOpportunityListResponse converts a scored batch.
func ToOpportunityListResponse(batch scoring.BatchResult, marketRate float64, product string, generatedAt time.Time) transport.OpportunityListResponse {
	out := transport.OpportunityListResponse{
		MarketRate:    marketRate,
		Product:       product,
		GeneratedAt:   generatedAt,
		Total:         batch.Total,
		Opportunities: make([]transport.OpportunityResponse, 0, len(batch.Scores)),
		Skipped:       make([]transport.SkippedClientResponse, 0, len(batch.Skipped)),
	}
	for _, score := range batch.Scores {
		out.Opportunities = append(out.Opportunities, ToOpportunityResponse(score))
	}
	for _, skipped := range batch.Skipped {
		out.Skipped = append(out.Skipped, transport.SkippedClientResponse{
			ClientID:   skipped.ClientID,
			ClientName: skipped.ClientName,
			Reason:     skipped.Err.Error(),
		})
	}
	return out
}

// ToPipelineResponse converts pipeline buckets.
func ToPipelineResponse(in domain.PipelineInsights, now time.Time) transport.PipelineInsightsResponse {
	counts := make(map[string]int, len(in.StageCounts))
	for stage, n := range in.StageCounts {
		counts[stage.String()] = n
	}
	return transport.PipelineInsightsResponse{
		Stale:          toClientSummaries(in.Stale, now),
		ReadyToAdvance: toClientSummaries(in.ReadyToAdvance, now),
		NeedsFollowUp:  toClientSummaries(in.NeedsFollowUp, now),
		Hot:            toClientSummaries(in.Hot, now),
		Cold:           toClientSummaries(in.Cold, now),
		PipelineValue:  finance.RoundCents(in.PipelineValue),
		StageCounts:    counts,
		GeneratedAt:    now,
	}
}

// ToMonitoringResponse converts monitoring buckets.
func ToMonitoringResponse(in domain.MonitoringInsights, marketRate float64, product string, now time.Time) transport.MonitoringInsightsResponse {
	return transport.MonitoringInsightsResponse{
		MarketRate:      marketRate,
		Product:         product,
		TargetHit:       toMortgageSummaries(in.TargetHit, marketRate),
		CloseToTarget:   toMortgageSummaries(in.CloseToTarget, marketRate),
		StaleMonitoring: toMortgageSummaries(in.StaleMonitoring, marketRate),
		MonitoredVolume: finance.RoundCents(in.MonitoredVolume),
		GeneratedAt:     now,
	}
}

func toClientSummaries(clients []domain.ClientRecord, now time.Time) []transport.ClientSummary {
	out := make([]transport.ClientSummary, 0, len(clients))
	for _, c := range clients {
		out = append(out, transport.ClientSummary{
			ID:               c.ID,
			Name:             c.FullName(),
			Stage:            c.Stage.String(),
			LoanAmount:       c.LoanAmount,
			LastContact:      c.LastContact,
			DaysSinceContact: c.DaysSinceContact(now),
		})
	}
	return out
}

func toMortgageSummaries(mortgages []domain.MortgageRecord, marketRate float64) []transport.MortgageSummary {
	out := make([]transport.MortgageSummary, 0, len(mortgages))
	for _, m := range mortgages {
		out = append(out, transport.MortgageSummary{
			ID:                m.ID,
			ClientID:          m.ClientID,
			ClientName:        m.FullName(),
			LoanAmount:        m.LoanAmount,
			LoanProduct:       m.LoanProduct,
			CurrentRate:       m.CurrentRate,
			TargetRate:        m.TargetRate,
			MarketRate:        insights.MarketRateFor(m, marketRate),
			LastManualContact: m.LastManualContact,
			LastAutomatedCall: m.LastAutomatedCall,
		})
	}
	return out
}
