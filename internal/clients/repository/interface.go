package repository

import (
	"context"

	"broker_portal_backend/internal/clients/domain"

	"github.com/google/uuid"
)

// Broker is the owner of a client book.
type Broker struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

// ClientReader loads clients for one broker.
type ClientReader interface {
	ListClients(ctx context.Context, brokerID uuid.UUID) ([]domain.ClientRecord, error)
	GetClient(ctx context.Context, brokerID, clientID uuid.UUID) (domain.ClientRecord, error)
}

// MortgageReader loads monitored mortgages for one broker. An empty product
// returns every product.
type MortgageReader interface {
	ListMortgages(ctx context.Context, brokerID uuid.UUID, product string) ([]domain.MortgageRecord, error)
}

// BrokerReader lists brokers for background jobs.
type BrokerReader interface {
	ListBrokers(ctx context.Context) ([]Broker, error)
	GetBroker(ctx context.Context, brokerID uuid.UUID) (Broker, error)
}

// Repository combines all read operations of the clients context.
type Repository interface {
	ClientReader
	MortgageReader
	BrokerReader
}
