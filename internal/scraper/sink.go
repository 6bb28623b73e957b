package scraper

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

// IngestSink writes extracted records to the store. Failed writes are
// logged and dropped; the crawl never stops or retries because of them.
type IngestSink struct {
	store   RecordStore
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewIngestSink(store RecordStore, m *monitoring.Metrics, l *zap.Logger) *IngestSink {
	return &IngestSink{store: store, metrics: m, logger: l}
}

// Ingest stores rec and reports whether it was written.
func (s *IngestSink) Ingest(ctx context.Context, rec *domain.TransactionRecord) bool {
	err := s.store.Insert(ctx, rec)
	switch {
	case err == nil:
		s.metrics.RecordsIngested.Inc()
		s.logger.Info("record stored",
			zap.String("url", rec.URL),
			zap.String("name", rec.Name),
			zap.String("region", rec.Region),
			zap.String("subdistrict", rec.Subdistrict))
		return true
	case errors.Is(err, domain.ErrDuplicateRecord):
		s.metrics.IncIngestFailures("duplicate")
		s.logger.Debug("record already stored, discarding", zap.String("url", rec.URL))
	default:
		s.metrics.IncIngestFailures("error")
		s.logger.Error("insert into store failed", zap.String("url", rec.URL), zap.Error(err))
	}
	return false
}
