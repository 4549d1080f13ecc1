package service

import (
	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/transport"
	"broker_portal_backend/internal/finance"

	"github.com/google/uuid"
)

// CalculatePayment summarises a loan and, when a target rate is given, the
// monthly savings of moving to it.
func CalculatePayment(req transport.PaymentRequest) (transport.PaymentResponse, error) {
	summary, err := finance.Summarize(req.Principal, req.AnnualRate, req.TermYears)
	if err != nil {
		return transport.PaymentResponse{}, err
	}

	resp := transport.PaymentResponse{
		MonthlyPayment:   summary.MonthlyPayment,
		TotalPaid:        summary.TotalPaid,
		TotalInterest:    summary.TotalInterest,
		NumberOfPayments: summary.NumberOfPayment,
	}
	if req.TargetRate == nil {
		return resp, nil
	}

	target, err := finance.MonthlyPayment(req.Principal, *req.TargetRate, req.TermYears)
	if err != nil {
		return transport.PaymentResponse{}, err
	}
	savings, err := finance.MonthlySavings(req.Principal, req.AnnualRate, *req.TargetRate, req.TermYears)
	if err != nil {
		return transport.PaymentResponse{}, err
	}

	targetPayment := finance.RoundCents(target)
	monthly := finance.RoundCents(savings)
	annual := finance.RoundCents(savings * 12)
	resp.TargetPayment = &targetPayment
	resp.SavingsMonthly = &monthly
	resp.SavingsAnnual = &annual
	return resp, nil
}

// RecordsFromPayload converts an ad-hoc scoring payload. Clients without an
// ID get a fresh one so they can be told apart in the response.
func RecordsFromPayload(req transport.ScoreRequest) ([]domain.ClientRecord, error) {
	records := make([]domain.ClientRecord, 0, len(req.Clients))
	for _, p := range req.Clients {
		stage := domain.StageUnknown
		if p.Stage != "" {
			parsed, err := domain.ParseStage(p.Stage)
			if err != nil {
				return nil, err
			}
			stage = parsed
		}

		id := uuid.New()
		if p.ID != nil {
			id = *p.ID
		}

		records = append(records, domain.ClientRecord{
			ID:          id,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			LoanAmount:  p.LoanAmount,
			TargetRate:  p.TargetRate,
			CurrentRate: p.CurrentRate,
			TermYears:   p.TermYears,
			Stage:       stage,
			LastContact: p.LastContact,
		})
	}
	return records, nil
}
