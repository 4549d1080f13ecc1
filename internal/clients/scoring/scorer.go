package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/finance"
	"broker_portal_backend/platform/apperr"
)

// ErrMissingRate is returned when a client has no current rate on file and
// Options.RequireCurrentRate is set.
var ErrMissingRate = errors.New("client has no current rate")

// Options control how incomplete records are scored.
type Options struct {
	// AssumedRateSpreadWhenMissing is added to the target rate to stand in
	// for a missing current rate.
	AssumedRateSpreadWhenMissing float64
	// RequireCurrentRate rejects clients without a current rate instead.
	RequireCurrentRate bool
	// DefaultTermYears is used when the client has no term on file.
	DefaultTermYears int
}

// DefaultOptions returns the defaults used in production.
func DefaultOptions() Options {
	return Options{
		AssumedRateSpreadWhenMissing: 1.0,
		DefaultTermYears:             30,
	}
}

// Scorer computes opportunity scores from a Profile.
type Scorer struct {
	profile Profile
	opts    Options
}

// NewScorer validates profile and opts.
func NewScorer(profile Profile, opts Options) (*Scorer, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if opts.DefaultTermYears <= 0 {
		return nil, fmt.Errorf("scoring: default term must be positive, got %d", opts.DefaultTermYears)
	}
	if opts.AssumedRateSpreadWhenMissing < 0 || math.IsNaN(opts.AssumedRateSpreadWhenMissing) {
		return nil, fmt.Errorf("scoring: assumed rate spread must not be negative")
	}
	return &Scorer{profile: profile, opts: opts}, nil
}

// NewDefaultScorer is NewScorer(DefaultProfile(), DefaultOptions()).
func NewDefaultScorer() *Scorer {
	return &Scorer{profile: DefaultProfile(), opts: DefaultOptions()}
}

// Profile returns the tables the scorer was built with.
func (s *Scorer) Profile() Profile {
	return s.profile
}

// ScoreClient scores one client against marketRate as of now.
func (s *Scorer) ScoreClient(client domain.ClientRecord, marketRate float64, now time.Time) (domain.OpportunityScore, error) {
	effectiveRate, assumed, err := s.effectiveRate(client)
	if err != nil {
		return domain.OpportunityScore{}, err
	}

	term := s.opts.DefaultTermYears
	if client.TermYears != nil {
		term = *client.TermYears
	}

	savingsMonthly, err := finance.MonthlySavings(client.LoanAmount, effectiveRate, marketRate, term)
	if err != nil {
		return domain.OpportunityScore{}, err
	}

	days := client.DaysSinceContact(now)
	breakdown := domain.ScoreBreakdown{
		Financial:  s.financialPoints(savingsMonthly),
		Urgency:    s.urgencyPoints(days),
		Pipeline:   s.stagePoints(client.Stage),
		TargetHit:  s.targetBonus(marketRate, client.TargetRate),
		Multiplier: s.loanMultiplier(client.LoanAmount),
	}
	breakdown.Base = breakdown.Financial + breakdown.Urgency + breakdown.Pipeline + breakdown.TargetHit

	score := int(math.Round(float64(breakdown.Base) * breakdown.Multiplier))

	result := domain.OpportunityScore{
		ClientID:             client.ID,
		ClientName:           client.FullName(),
		Score:                score,
		Urgency:              s.Tier(score),
		Breakdown:            breakdown,
		SavingsMonthly:       savingsMonthly,
		SavingsAnnual:        savingsMonthly * 12,
		DaysSinceContact:     days,
		EffectiveCurrentRate: effectiveRate,
		RateAssumed:          assumed,
	}
	result.Reasoning = s.reasoning(client, marketRate, result)
	result.CallRecommendation = s.callRecommendation(client, marketRate, result)

	return result, nil
}

// Tier maps a score to its urgency tier.
func (s *Scorer) Tier(score int) domain.UrgencyTier {
	switch {
	case score >= s.profile.Tiers.Critical:
		return domain.UrgencyCritical
	case score >= s.profile.Tiers.High:
		return domain.UrgencyHigh
	case score >= s.profile.Tiers.Medium:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func (s *Scorer) effectiveRate(client domain.ClientRecord) (float64, bool, error) {
	if client.CurrentRate != nil {
		return *client.CurrentRate, false, nil
	}
	if s.opts.RequireCurrentRate {
		msg := fmt.Sprintf("client %s has no current rate on file", client.ID)
		return 0, false, apperr.Wrap(apperr.KindValidation, msg, ErrMissingRate).WithOp("scoring")
	}
	return client.TargetRate + s.opts.AssumedRateSpreadWhenMissing, true, nil
}

func (s *Scorer) financialPoints(savingsMonthly float64) int {
	if points, ok := pointsFor(s.profile.FinancialSteps, savingsMonthly); ok {
		return points
	}
	return max(int(math.Floor(savingsMonthly/s.profile.FinancialDivisor)), 0)
}

func (s *Scorer) urgencyPoints(days int) int {
	points, _ := pointsFor(s.profile.UrgencySteps, float64(days))
	return points
}

func (s *Scorer) stagePoints(stage domain.Stage) int {
	if points, ok := s.profile.StagePoints[stage]; ok {
		return points
	}
	return s.profile.DefaultStagePoints
}

func (s *Scorer) targetBonus(marketRate, targetRate float64) int {
	switch {
	case marketRate <= targetRate:
		return s.profile.TargetBonus.HitPoints
	case marketRate <= targetRate+s.profile.TargetBonus.NearSpread:
		return s.profile.TargetBonus.NearPoints
	default:
		return 0
	}
}

func (s *Scorer) loanMultiplier(loanAmount float64) float64 {
	for _, m := range s.profile.LoanMultipliers {
		if loanAmount >= m.MinLoan {
			return m.Factor
		}
	}
	return 1.0
}
