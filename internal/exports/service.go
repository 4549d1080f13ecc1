// Package exports writes ranked call lists to object storage and keeps
// a history of what was exported.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"broker_portal_backend/internal/adapters/storage"
	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/internal/clients/scoring"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRows is the call list length when the caller gives none.
	DefaultRows = 50
	// MaxRows caps one export.
	MaxRows = 500

	TriggerManual = "manual"
	TriggerDigest = "digest"

	csvContentType = "text/csv; charset=utf-8"
)

// ClientLister loads a broker's clients.
type ClientLister interface {
	ListClients(ctx context.Context, brokerID uuid.UUID) ([]domain.ClientRecord, error)
}

// RecordScorer ranks already loaded records.
type RecordScorer interface {
	ScoreRecords(clients []domain.ClientRecord, marketRate float64, asOf time.Time, limit int) scoring.BatchResult
}

// Request selects what goes into a call list.
type Request struct {
	Product string
	Limit   int
	Trigger string
}

// Result describes a finished export.
type Result struct {
	Record      Record
	DownloadURL string
	ExpiresAt   time.Time
	Rate        marketrate.Rate
	Batch       scoring.BatchResult
}

// Service builds and stores call lists.
type Service struct {
	clients ClientLister
	rates   marketrate.Provider
	scorer  RecordScorer
	store   storage.StorageService
	bucket  string
	log     Log
	bus     events.Bus
	region  string
	logger  *logger.Logger
	now     func() time.Time
}

// NewService creates an export service. A nil store disables exports.
func NewService(clients ClientLister, rates marketrate.Provider, scorer RecordScorer, store storage.StorageService, bucket string, history Log, bus events.Bus, region string, log *logger.Logger) *Service {
	return &Service{
		clients: clients,
		rates:   rates,
		scorer:  scorer,
		store:   store,
		bucket:  bucket,
		log:     history,
		bus:     bus,
		region:  region,
		logger:  log,
		now:     time.Now,
	}
}

// Enabled reports whether object storage is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// ExportCallList ranks the broker's clients, uploads the list as CSV and
// records the export.
func (s *Service) ExportCallList(ctx context.Context, brokerID uuid.UUID, req Request) (Result, error) {
	if s.store == nil {
		return Result{}, apperr.Unavailable("call-list exports are not configured")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultRows
	}
	if limit > MaxRows {
		return Result{}, apperr.Validation(fmt.Sprintf("limit cannot exceed %d", MaxRows))
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	var (
		clients []domain.ClientRecord
		rate    marketrate.Rate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.clients.ListClients(gctx, brokerID)
		return err
	})
	g.Go(func() error {
		var err error
		rate, err = s.rates.Current(gctx, req.Product)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	now := s.now()
	batch := s.scorer.ScoreRecords(clients, rate.Rate, now, limit)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, BuildRows(batch.Scores, clients, s.region)); err != nil {
		return Result{}, fmt.Errorf("write call list: %w", err)
	}

	folder := fmt.Sprintf("%s/%s", brokerID, now.UTC().Format("2006/01"))
	key, err := s.store.UploadFile(ctx, s.bucket, folder, FileName(now), csvContentType, &buf, int64(buf.Len()))
	if err != nil {
		return Result{}, fmt.Errorf("upload call list: %w", err)
	}

	link, err := s.store.GenerateDownloadURL(ctx, s.bucket, key)
	if err != nil {
		return Result{}, err
	}

	rec, err := s.log.Record(ctx, Record{
		BrokerID:   brokerID,
		ObjectKey:  key,
		Product:    rate.Product,
		MarketRate: rate.Rate,
		Rows:       len(batch.Scores),
		Trigger:    trigger,
	})
	if err != nil {
		return Result{}, fmt.Errorf("record export: %w", err)
	}

	s.bus.Publish(ctx, events.CallListExported{
		BaseEvent: events.NewBaseEvent(),
		BrokerID:  brokerID,
		ObjectKey: key,
		Rows:      rec.Rows,
		Trigger:   trigger,
	})
	s.logger.WithContext(ctx).Info("call list exported",
		"broker_id", brokerID, "object_key", key, "rows", rec.Rows, "trigger", trigger)

	return Result{
		Record:      rec,
		DownloadURL: link.URL,
		ExpiresAt:   link.ExpiresAt,
		Rate:        rate,
		Batch:       batch,
	}, nil
}

// History lists the broker's recent exports with fresh download links.
func (s *Service) History(ctx context.Context, brokerID uuid.UUID, limit int) ([]HistoryItem, error) {
	records, err := s.log.ListRecent(ctx, brokerID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(records))
	for _, rec := range records {
		item := HistoryItem{Record: rec}
		if s.store != nil {
			link, err := s.store.GenerateDownloadURL(ctx, s.bucket, rec.ObjectKey)
			if err != nil {
				return nil, err
			}
			item.DownloadURL = link.URL
			item.ExpiresAt = link.ExpiresAt
		}
		items = append(items, item)
	}
	return items, nil
}

// HistoryItem is an export record with a download link when storage is enabled.
type HistoryItem struct {
	Record      Record
	DownloadURL string
	ExpiresAt   time.Time
}
