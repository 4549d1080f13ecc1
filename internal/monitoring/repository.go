package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Alert is a raised rate alert.
type Alert struct {
	MortgageID uuid.UUID
	BrokerID   uuid.UUID
	Kind       string
	MarketRate float64
	TargetRate float64
}

// AlertLog remembers raised alerts so they can be throttled.
type AlertLog interface {
	LastAlertAt(ctx context.Context, mortgageID uuid.UUID, kind string) (*time.Time, error)
	RecordAlert(ctx context.Context, alert Alert) error
}

// Repository stores rate alerts in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a rate alert repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LastAlertAt returns when the newest alert of kind was raised for the mortgage, or nil.
func (r *Repository) LastAlertAt(ctx context.Context, mortgageID uuid.UUID, kind string) (*time.Time, error) {
	var at time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT created_at FROM rate_alerts
		WHERE mortgage_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1`, mortgageID, kind).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// RecordAlert inserts an alert row.
func (r *Repository) RecordAlert(ctx context.Context, alert Alert) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rate_alerts (mortgage_id, broker_id, kind, market_rate, target_rate)
		VALUES ($1, $2, $3, $4, $5)`,
		alert.MortgageID, alert.BrokerID, alert.Kind, alert.MarketRate, alert.TargetRate)
	return err
}

var _ AlertLog = (*Repository)(nil)
