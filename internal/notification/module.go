// Package notification turns domain events into broker emails. Domain
// modules publish events and never talk to the mail provider directly.
package notification

import (
	"context"
	"fmt"

	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/email"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// BrokerDirectory resolves the recipient of a notification.
type BrokerDirectory interface {
	GetBroker(ctx context.Context, brokerID uuid.UUID) (repository.Broker, error)
}

// Module handles notification events.
type Module struct {
	sender  email.Sender
	brokers BrokerDirectory
	region  string
	log     *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, brokers BrokerDirectory, region string, log *logger.Logger) *Module {
	return &Module{sender: sender, brokers: brokers, region: region, log: log}
}

// RegisterHandlers subscribes the module to the events it handles.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.RateTargetHit{}.EventName(), events.HandlerFunc(m.handleRateTargetHit))
	bus.Subscribe(events.OpportunityDigestReady{}.EventName(), events.HandlerFunc(m.handleDigestReady))
	bus.Subscribe(events.CallListExported{}.EventName(), events.HandlerFunc(m.handleCallListExported))
}

func (m *Module) handleRateTargetHit(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RateTargetHit)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	broker, err := m.brokers.GetBroker(ctx, e.BrokerID)
	if err != nil {
		return fmt.Errorf("resolve broker %s: %w", e.BrokerID, err)
	}

	err = m.sender.SendRateAlertEmail(ctx, broker.Email, email.RateAlert{
		BrokerName:     broker.FullName,
		ClientName:     e.ClientName,
		ClientPhone:    phone.Display(e.ClientPhone, m.region),
		LoanProduct:    e.LoanProduct,
		MarketRate:     e.MarketRate,
		TargetRate:     e.TargetRate,
		SavingsMonthly: e.SavingsMonthly,
	})
	if err != nil {
		return fmt.Errorf("send rate alert for mortgage %s: %w", e.MortgageID, err)
	}

	m.log.Info("rate alert email sent", "event_id", e.EventID(), "broker_id", e.BrokerID, "mortgage_id", e.MortgageID)
	return nil
}

func (m *Module) handleDigestReady(ctx context.Context, event events.Event) error {
	e, ok := event.(events.OpportunityDigestReady)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if len(e.TopClients) == 0 {
		return nil
	}

	broker, err := m.brokers.GetBroker(ctx, e.BrokerID)
	if err != nil {
		return fmt.Errorf("resolve broker %s: %w", e.BrokerID, err)
	}

	lines := make([]email.DigestLine, 0, len(e.TopClients))
	for _, entry := range e.TopClients {
		lines = append(lines, email.DigestLine{
			ClientName:     entry.ClientName,
			Score:          entry.Score,
			Urgency:        entry.Urgency,
			SavingsMonthly: entry.SavingsMonthly,
		})
	}

	err = m.sender.SendDigestEmail(ctx, broker.Email, email.Digest{
		BrokerName:    broker.FullName,
		MarketRate:    e.MarketRate,
		ScoredClients: e.ScoredClients,
		Top:           lines,
		DownloadURL:   e.DownloadURL,
		URLExpiresAt:  e.URLExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("send digest to broker %s: %w", e.BrokerID, err)
	}

	m.log.Info("opportunity digest sent", "event_id", e.EventID(), "broker_id", e.BrokerID, "clients", len(lines))
	return nil
}

func (m *Module) handleCallListExported(_ context.Context, event events.Event) error {
	e, ok := event.(events.CallListExported)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	m.log.Debug("call list exported", "event_id", e.EventID(), "broker_id", e.BrokerID, "object_key", e.ObjectKey, "rows", e.Rows, "trigger", e.Trigger)
	return nil
}
