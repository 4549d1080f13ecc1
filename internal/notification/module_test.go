package notification

import (
	"context"
	"testing"

	"broker_portal_backend/internal/clients/repository"
	"broker_portal_backend/internal/email"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSender struct {
	alerts  []email.RateAlert
	digests []email.Digest
	to      []string
}

func (s *testSender) SendRateAlertEmail(_ context.Context, to string, alert email.RateAlert) error {
	s.to = append(s.to, to)
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *testSender) SendDigestEmail(_ context.Context, to string, digest email.Digest) error {
	s.to = append(s.to, to)
	s.digests = append(s.digests, digest)
	return nil
}

type testBrokers map[uuid.UUID]repository.Broker

func (b testBrokers) GetBroker(_ context.Context, id uuid.UUID) (repository.Broker, error) {
	broker, ok := b[id]
	if !ok {
		return repository.Broker{}, apperr.NotFound("broker not found")
	}
	return broker, nil
}

const testBrokerEmail = "sam@example.com"

func setup(t *testing.T) (*events.InMemoryBus, *testSender, uuid.UUID) {
	t.Helper()
	brokerID := uuid.New()
	sender := &testSender{}
	module := New(sender, testBrokers{brokerID: {ID: brokerID, Email: testBrokerEmail, FullName: "Sam Ortiz"}}, "US", logger.Nop())

	bus := events.NewInMemoryBus(logger.Nop())
	module.RegisterHandlers(bus)
	return bus, sender, brokerID
}

func TestRateTargetHitEmailsBroker(t *testing.T) {
	bus, sender, brokerID := setup(t)

	err := bus.PublishSync(context.Background(), events.RateTargetHit{
		BaseEvent:      events.NewBaseEvent(),
		MortgageID:     uuid.New(),
		BrokerID:       brokerID,
		ClientName:     "Dana Whitfield",
		ClientPhone:    "+14155552671",
		LoanProduct:    "30yr_fixed",
		MarketRate:     5.9,
		TargetRate:     6.0,
		SavingsMonthly: 300,
	})
	require.NoError(t, err)

	require.Len(t, sender.alerts, 1)
	assert.Equal(t, []string{testBrokerEmail}, sender.to)
	assert.Equal(t, "Sam Ortiz", sender.alerts[0].BrokerName)
	assert.Equal(t, "(415) 555-2671", sender.alerts[0].ClientPhone)
}

func TestRateTargetHitUnknownBroker(t *testing.T) {
	bus, sender, _ := setup(t)

	err := bus.PublishSync(context.Background(), events.RateTargetHit{BrokerID: uuid.New()})
	assert.Error(t, err)
	assert.Empty(t, sender.alerts)
}

func TestDigestReadyEmailsTopClients(t *testing.T) {
	bus, sender, brokerID := setup(t)

	err := bus.PublishSync(context.Background(), events.OpportunityDigestReady{
		BaseEvent:     events.NewBaseEvent(),
		BrokerID:      brokerID,
		MarketRate:    6.25,
		ScoredClients: 8,
		TopClients: []events.DigestEntry{
			{ClientName: "Dana Whitfield", Score: 110, Urgency: "critical", SavingsMonthly: 481},
		},
		DownloadURL: "https://files.example.com/list.csv",
	})
	require.NoError(t, err)

	require.Len(t, sender.digests, 1)
	assert.Equal(t, 8, sender.digests[0].ScoredClients)
	require.Len(t, sender.digests[0].Top, 1)
	assert.Equal(t, "Dana Whitfield", sender.digests[0].Top[0].ClientName)
}

func TestEmptyDigestIsNotSent(t *testing.T) {
	bus, sender, brokerID := setup(t)

	require.NoError(t, bus.PublishSync(context.Background(), events.OpportunityDigestReady{BrokerID: brokerID}))
	assert.Empty(t, sender.digests)
}
