package marketrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"broker_portal_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Rate is one published benchmark rate.
type Rate struct {
	Product    string    `json:"product"`
	Rate       float64   `json:"rate"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observedAt"`
}

// Store persists observed market rates.
type Store interface {
	Latest(ctx context.Context, product string) (Rate, error)
	Insert(ctx context.Context, rate Rate) (Rate, error)
}

// Repo implements Store with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a market rate repository.
func NewRepository(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Store = (*Repo)(nil)

// Latest returns the most recent observation for product.
func (r *Repo) Latest(ctx context.Context, product string) (Rate, error) {
	query := `
		SELECT product, rate::float8, source, observed_at
		FROM market_rates
		WHERE product = $1
		ORDER BY observed_at DESC
		LIMIT 1`

	var rate Rate
	err := r.pool.QueryRow(ctx, query, product).Scan(&rate.Product, &rate.Rate, &rate.Source, &rate.ObservedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, apperr.NotFound(fmt.Sprintf("no market rate published for %s", product))
		}
		return Rate{}, fmt.Errorf("latest market rate: %w", err)
	}
	return rate, nil
}

// Insert records a new observation.
func (r *Repo) Insert(ctx context.Context, rate Rate) (Rate, error) {
	query := `
		INSERT INTO market_rates (product, rate, source, observed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING product, rate::float8, source, observed_at`

	var out Rate
	err := r.pool.QueryRow(ctx, query, rate.Product, rate.Rate, rate.Source, rate.ObservedAt).
		Scan(&out.Product, &out.Rate, &out.Source, &out.ObservedAt)
	if err != nil {
		return Rate{}, fmt.Errorf("insert market rate: %w", err)
	}
	return out, nil
}
