package scraper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/scraper"
)

func TestDedupGate_StoredURLIsSkipped(t *testing.T) {
	t.Parallel()

	const stored = "https://sh.lianjia.com/chengjiao/107.html"
	m := newMetrics()
	gate := scraper.NewDedupGate(newFakeStore(stored), m, zaptest.NewLogger(t))

	assert.False(t, gate.IsNew(context.Background(), stored))
	assert.True(t, gate.IsNew(context.Background(), "https://sh.lianjia.com/chengjiao/108.html"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupSkipped))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DedupCheckErrors))
}

func TestDedupGate_StoreFailureAdmits(t *testing.T) {
	t.Parallel()

	const stored = "https://sh.lianjia.com/chengjiao/107.html"
	store := newFakeStore(stored)
	store.existsErr = errors.New("connection refused")
	m := newMetrics()
	gate := scraper.NewDedupGate(store, m, zaptest.NewLogger(t))

	// Fail open, even for a URL that is in fact stored.
	assert.True(t, gate.IsNew(context.Background(), stored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupCheckErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DedupSkipped))
}

func TestIngestSink(t *testing.T) {
	t.Parallel()

	rec := &domain.TransactionRecord{URL: "https://sh.lianjia.com/chengjiao/107.html", Name: "东方城市花园"}

	t.Run("stores new record", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		m := newMetrics()
		sink := scraper.NewIngestSink(store, m, zaptest.NewLogger(t))

		assert.True(t, sink.Ingest(context.Background(), rec))
		assert.Len(t, store.inserted, 1)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsIngested))
	})

	t.Run("discards duplicate", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(rec.URL)
		m := newMetrics()
		sink := scraper.NewIngestSink(store, m, zaptest.NewLogger(t))

		assert.False(t, sink.Ingest(context.Background(), rec))
		assert.Empty(t, store.inserted)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("duplicate")))
	})

	t.Run("discards on store error", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.insertErr = errors.New("disk full")
		m := newMetrics()
		sink := scraper.NewIngestSink(store, m, zaptest.NewLogger(t))

		assert.False(t, sink.Ingest(context.Background(), rec))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("error")))
		assert.Equal(t, 0.0, testutil.ToFloat64(m.RecordsIngested))
	})
}
