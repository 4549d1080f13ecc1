// Package events declares the domain events exchanged between the broker
// portal modules. The bus itself lives in platform/events.
package events

import (
	"time"

	"broker_portal_backend/platform/events"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus shared by the API and scheduler.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// RateTargetHit is published when the market reaches a monitored client's target rate.
type RateTargetHit struct {
	BaseEvent
	MortgageID     uuid.UUID `json:"mortgageId"`
	ClientID       uuid.UUID `json:"clientId"`
	BrokerID       uuid.UUID `json:"brokerId"`
	ClientName     string    `json:"clientName"`
	ClientPhone    string    `json:"clientPhone"`
	LoanProduct    string    `json:"loanProduct"`
	MarketRate     float64   `json:"marketRate"`
	TargetRate     float64   `json:"targetRate"`
	SavingsMonthly float64   `json:"savingsMonthly"`
}

func (e RateTargetHit) EventName() string { return "monitoring.rate.target_hit" }

// OpportunityDigestReady is published when a broker's daily call list has been exported.
type OpportunityDigestReady struct {
	BaseEvent
	BrokerID      uuid.UUID     `json:"brokerId"`
	MarketRate    float64       `json:"marketRate"`
	TopClients    []DigestEntry `json:"topClients"`
	DownloadURL   string        `json:"downloadUrl"`
	URLExpiresAt  time.Time     `json:"urlExpiresAt"`
	ScoredClients int           `json:"scoredClients"`
}

// DigestEntry is one line of the digest email.
type DigestEntry struct {
	ClientName     string  `json:"clientName"`
	Score          int     `json:"score"`
	Urgency        string  `json:"urgency"`
	SavingsMonthly float64 `json:"savingsMonthly"`
}

func (e OpportunityDigestReady) EventName() string { return "opportunities.digest.ready" }

// CallListExported is published whenever a call list lands in object storage.
type CallListExported struct {
	BaseEvent
	BrokerID  uuid.UUID `json:"brokerId"`
	ObjectKey string    `json:"objectKey"`
	Rows      int       `json:"rows"`
	Trigger   string    `json:"trigger"`
}

func (e CallListExported) EventName() string { return "exports.call_list.exported" }
