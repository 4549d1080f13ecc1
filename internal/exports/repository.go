package exports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is a logged call-list export.
type Record struct {
	ID         uuid.UUID
	BrokerID   uuid.UUID
	ObjectKey  string
	Product    string
	MarketRate float64
	Rows       int
	Trigger    string
	CreatedAt  time.Time
}

// Log stores and lists export records.
type Log interface {
	Record(ctx context.Context, rec Record) (Record, error)
	ListRecent(ctx context.Context, brokerID uuid.UUID, limit int) ([]Record, error)
}

// Repository provides data access for export history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an export history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts an export record.
func (r *Repository) Record(ctx context.Context, rec Record) (Record, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO call_list_exports (broker_id, object_key, product, market_rate, row_count, trigger_kind)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		rec.BrokerID, rec.ObjectKey, rec.Product, rec.MarketRate, rec.Rows, rec.Trigger,
	).Scan(&rec.ID, &rec.CreatedAt)
	return rec, err
}

// ListRecent returns the newest exports of a broker.
func (r *Repository) ListRecent(ctx context.Context, brokerID uuid.UUID, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, broker_id, object_key, product, market_rate::float8, row_count, trigger_kind, created_at
		FROM call_list_exports
		WHERE broker_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, brokerID, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(&rec.ID, &rec.BrokerID, &rec.ObjectKey, &rec.Product, &rec.MarketRate, &rec.Rows, &rec.Trigger, &rec.CreatedAt)
		return rec, err
	})
}

var _ Log = (*Repository)(nil)
