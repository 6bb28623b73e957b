package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

// Submitter queues a visit with the crawl engine.
type Submitter interface {
	Submit(ctx context.Context, v domain.Visit) error
}

// Dispatcher handles one fetched page end to end: extraction, dedup of
// proposed detail pages, submission of follow-up visits and ingestion of
// the extracted record. Re-handling the same page is harmless.
type Dispatcher struct {
	extractor *Extractor
	gate      *DedupGate
	sink      *IngestSink
	submitter Submitter
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewDispatcher(e *Extractor, g *DedupGate, s *IngestSink, sub Submitter, m *monitoring.Metrics, l *zap.Logger) *Dispatcher {
	return &Dispatcher{
		extractor: e,
		gate:      g,
		sink:      s,
		submitter: sub,
		metrics:   m,
		logger:    l,
	}
}

// Handle implements the crawl engine's page handler.
func (d *Dispatcher) Handle(ctx context.Context, page domain.Page) {
	res := d.extractor.Extract(page.Doc, page.URL, page.State)

	for _, v := range res.Visits {
		if _, ok := v.State.(domain.Detail); ok && !d.gate.IsNew(ctx, v.URL) {
			d.logger.Debug("skipping stored detail page", zap.String("url", v.URL))
			continue
		}
		if err := d.submitter.Submit(ctx, v); err != nil {
			d.logger.Error("failed to submit visit", zap.Stringer("visit", v), zap.Error(err))
			continue
		}
		d.metrics.IncVisitsSubmitted(v.State.Kind())
		d.logger.Debug("visit submitted", zap.Stringer("visit", v))
	}

	if res.Record != nil {
		d.sink.Ingest(ctx, res.Record)
	}
}
