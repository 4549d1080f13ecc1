// Package calls prepares brokers for client calls. The deterministic
// opportunity score supplies the facts; an optional language model turns
// them into talking points.
package calls

import (
	"context"
	"fmt"
	"strings"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/scoring"
	clientservice "broker_portal_backend/internal/clients/service"
	"broker_portal_backend/internal/clients/transport"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	maxNotesRunes = 1000
	generateLimit = 30 * time.Second

	systemPrompt = `You help a mortgage broker prepare for a short phone call.
Use only the facts provided. Do not invent rates, fees or programs.
Reply with at most five short bullet points the broker can say, then one line starting with "Ask:" containing the closing question.`
)

// Scorer scores a single client of a broker.
type Scorer interface {
	ScoreOne(ctx context.Context, brokerID, clientID uuid.UUID, product string) (domain.OpportunityScore, marketrate.Rate, error)
}

// Briefing is the score plus generated talking points.
type Briefing struct {
	Opportunity   transport.OpportunityResponse `json:"opportunity"`
	MarketRate    float64                       `json:"marketRate"`
	Product       string                        `json:"product"`
	TalkingPoints string                        `json:"talkingPoints"`
	Model         string                        `json:"model"`
	GeneratedAt   time.Time                     `json:"generatedAt"`
}

// BriefingService builds call briefings.
type BriefingService struct {
	scorer Scorer
	gen    Generator
	log    *logger.Logger
}

// NewBriefingService creates a briefing service. A nil generator disables briefings.
func NewBriefingService(scorer Scorer, gen Generator, log *logger.Logger) *BriefingService {
	return &BriefingService{scorer: scorer, gen: gen, log: log}
}

// Brief scores the client and asks the generator for talking points.
func (s *BriefingService) Brief(ctx context.Context, brokerID, clientID uuid.UUID, product, notes string) (Briefing, error) {
	if s.gen == nil {
		return Briefing{}, apperr.Unavailable("call briefings are not configured")
	}

	score, rate, err := s.scorer.ScoreOne(ctx, brokerID, clientID, product)
	if err != nil {
		return Briefing{}, err
	}

	genCtx, cancel := context.WithTimeout(ctx, generateLimit)
	defer cancel()

	text, err := s.gen.Generate(genCtx, systemPrompt, BuildPrompt(score, rate, notes))
	if err != nil {
		s.log.WithContext(ctx).Error("briefing generation failed", "client_id", clientID, "error", err)
		return Briefing{}, apperr.Wrap(apperr.KindUnavailable, "briefing generation failed", err)
	}

	return Briefing{
		Opportunity:   clientservice.ToOpportunityResponse(score),
		MarketRate:    rate.Rate,
		Product:       rate.Product,
		TalkingPoints: text,
		Model:         s.gen.Model(),
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// BuildPrompt lists the facts behind a score for the language model.
func BuildPrompt(score domain.OpportunityScore, rate marketrate.Rate, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", score.ClientName)
	fmt.Fprintf(&b, "Market rate (%s): %.3f%%\n", rate.Product, rate.Rate)
	if score.RateAssumed {
		fmt.Fprintf(&b, "Current rate: unknown, assumed %.3f%%\n", score.EffectiveCurrentRate)
	} else {
		fmt.Fprintf(&b, "Current rate: %.3f%%\n", score.EffectiveCurrentRate)
	}
	fmt.Fprintf(&b, "Monthly savings: %s\n", scoring.FormatMoney(score.SavingsMonthly))
	fmt.Fprintf(&b, "Annual savings: %s\n", scoring.FormatMoney(score.SavingsAnnual))
	fmt.Fprintf(&b, "Priority: %s (score %d)\n", score.Urgency, score.Score)
	if len(score.Reasoning) > 0 {
		b.WriteString("Why now:\n")
		for _, reason := range score.Reasoning {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}
	fmt.Fprintf(&b, "Suggested opener: %s\n", score.CallRecommendation)

	if cleaned := sanitize.Truncate(sanitize.Text(notes), maxNotesRunes); cleaned != "" {
		fmt.Fprintf(&b, "Broker notes: %s\n", cleaned)
	}
	return b.String()
}
