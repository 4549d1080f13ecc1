package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	clientNotFoundMessage = "client not found"
	brokerNotFoundMessage = "broker not found"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const clientColumns = `
	id, broker_id, first_name, last_name, COALESCE(email, ''), COALESCE(phone, ''),
	loan_amount::float8, target_rate::float8, current_rate::float8, term_years,
	current_stage, last_contact, created_at`

// ListClients returns the broker's active clients, newest first.
func (r *Repo) ListClients(ctx context.Context, brokerID uuid.UUID) ([]domain.ClientRecord, error) {
	query := `SELECT` + clientColumns + `
		FROM clients
		WHERE broker_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, brokerID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.ClientRecord, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

// GetClient returns one of the broker's clients.
func (r *Repo) GetClient(ctx context.Context, brokerID, clientID uuid.UUID) (domain.ClientRecord, error) {
	query := `SELECT` + clientColumns + `
		FROM clients
		WHERE id = $1 AND broker_id = $2 AND deleted_at IS NULL`

	c, err := scanClient(r.pool.QueryRow(ctx, query, clientID, brokerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ClientRecord{}, apperr.NotFound(clientNotFoundMessage)
		}
		return domain.ClientRecord{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ListMortgages returns the broker's monitored mortgages joined with client
// contact details. The client's last_contact is the manual contact date.
func (r *Repo) ListMortgages(ctx context.Context, brokerID uuid.UUID, product string) ([]domain.MortgageRecord, error) {
	query := `
		SELECT m.id, m.client_id, m.broker_id,
			c.first_name, c.last_name, COALESCE(c.email, ''), COALESCE(c.phone, ''),
			m.loan_amount::float8, m.current_rate::float8, m.target_rate::float8, m.term_years,
			m.loan_product, m.market_rate::float8, c.last_contact, m.last_automated_call
		FROM mortgages m
		JOIN clients c ON c.id = m.client_id AND c.deleted_at IS NULL
		WHERE m.broker_id = $1
			AND ($2::text = '' OR m.loan_product = $2)
		ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, query, brokerID, product)
	if err != nil {
		return nil, fmt.Errorf("list mortgages: %w", err)
	}
	defer rows.Close()

	mortgages := make([]domain.MortgageRecord, 0)
	for rows.Next() {
		var m domain.MortgageRecord
		if err := rows.Scan(
			&m.ID, &m.ClientID, &m.BrokerID,
			&m.FirstName, &m.LastName, &m.Email, &m.Phone,
			&m.LoanAmount, &m.CurrentRate, &m.TargetRate, &m.TermYears,
			&m.LoanProduct, &m.MarketRate, &m.LastManualContact, &m.LastAutomatedCall,
		); err != nil {
			return nil, fmt.Errorf("scan mortgage: %w", err)
		}
		mortgages = append(mortgages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mortgages: %w", err)
	}
	return mortgages, nil
}

// ListBrokers returns every broker.
func (r *Repo) ListBrokers(ctx context.Context) ([]Broker, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name FROM brokers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list brokers: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Broker, error) {
		var b Broker
		err := row.Scan(&b.ID, &b.Email, &b.FullName)
		return b, err
	})
}

// GetBroker returns one broker.
func (r *Repo) GetBroker(ctx context.Context, brokerID uuid.UUID) (Broker, error) {
	var b Broker
	err := r.pool.QueryRow(ctx, `SELECT id, email, full_name FROM brokers WHERE id = $1`, brokerID).
		Scan(&b.ID, &b.Email, &b.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Broker{}, apperr.NotFound(brokerNotFoundMessage)
		}
		return Broker{}, fmt.Errorf("get broker: %w", err)
	}
	return b, nil
}

func scanClient(row pgx.Row) (domain.ClientRecord, error) {
	var (
		c         domain.ClientRecord
		stage     string
		termYears *int32
		createdAt time.Time
	)
	err := row.Scan(
		&c.ID, &c.BrokerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.LoanAmount, &c.TargetRate, &c.CurrentRate, &termYears,
		&stage, &c.LastContact, &createdAt,
	)
	if err != nil {
		return domain.ClientRecord{}, err
	}

	c.Stage = domain.StageFromStored(stage)
	c.CreatedAt = createdAt
	if termYears != nil {
		years := int(*termYears)
		c.TermYears = &years
	}
	return c, nil
}
