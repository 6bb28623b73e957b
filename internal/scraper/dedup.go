package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

// RecordStore is the part of the record store the crawl touches. Both
// methods must be safe for concurrent use. Insert returns
// domain.ErrDuplicateRecord when the URL is already stored.
type RecordStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, rec *domain.TransactionRecord) error
}

// DedupGate admits detail URLs that are not yet in the record store.
//
// A failed existence check admits the URL (fail open). The insert that
// follows is rejected by the store's unique constraint if the record turns
// out to exist, and IngestSink discards that conflict.
type DedupGate struct {
	store   RecordStore
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewDedupGate(store RecordStore, m *monitoring.Metrics, l *zap.Logger) *DedupGate {
	return &DedupGate{store: store, metrics: m, logger: l}
}

// IsNew reports whether url should be crawled.
func (g *DedupGate) IsNew(ctx context.Context, url string) bool {
	exists, err := g.store.Exists(ctx, url)
	if err != nil {
		g.logger.Warn("existence check failed, crawling anyway", zap.String("url", url), zap.Error(err))
		g.metrics.DedupCheckErrors.Inc()
		return true
	}
	if exists {
		g.metrics.DedupSkipped.Inc()
		return false
	}
	return true
}
