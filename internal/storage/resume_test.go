package storage

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/chengjiao-crawler/internal/crawler"
	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

// recordingFetcher returns an empty page and remembers every URL asked for.
type recordingFetcher struct {
	mu   sync.Mutex
	urls []string
}

func (f *recordingFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader("<html></html>"))
}

func (f *recordingFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// cancellingFetcher stops the crawl while a fetch is in flight.
type cancellingFetcher struct {
	cancel context.CancelFunc
}

func (f cancellingFetcher) Fetch(ctx context.Context, _ string) (*goquery.Document, error) {
	f.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

type nopHandler struct{}

func (nopHandler) Handle(context.Context, domain.Page) {}

func newRedisCrawler(t *testing.T, store *RedisStore, f crawler.Fetcher, m *monitoring.Metrics) *crawler.Crawler {
	t.Helper()
	return crawler.NewCrawler(store.Frontier(), store.SeenSet(), store.RetryCounter(), f,
		crawler.Options{Workers: 2, PollInterval: 5 * time.Millisecond}, m, zaptest.NewLogger(t))
}

func connect(t *testing.T, mr *miniredis.Miniredis) *RedisStore {
	t.Helper()
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var (
	seedVisit    = domain.Visit{URL: "https://sh.lianjia.com/chengjiao/", State: domain.Root{}}
	listingVisit = domain.Visit{
		URL:   "https://sh.lianjia.com/chengjiao/beicai/",
		State: domain.Listing{Region: "浦东", Subdistrict: "北蔡"},
	}
)

func TestResumeRefetchesVisitInFlightAtCrash(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	// First process: queue a listing, take it off the frontier, then die.
	first := connect(t, mr)
	c := newRedisCrawler(t, first, &recordingFetcher{}, monitoring.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, c.Submit(ctx, listingVisit))
	popped, err := first.Frontier().Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, listingVisit, popped)

	n, err := first.Frontier().Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	// Second process resumes.
	second := connect(t, mr)
	moved, err := second.Requeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	f := &recordingFetcher{}
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, newRedisCrawler(t, second, f, monitoring.NewMetrics(prometheus.NewRegistry())).Run(runCtx, seedVisit, nopHandler{}))

	assert.ElementsMatch(t, []string{listingVisit.URL, seedVisit.URL}, f.fetched())
	assert.False(t, mr.Exists(processingKey), "handled visits are acknowledged")
}

func TestCancelledFetchStaysInFlight(t *testing.T) {
	mr := miniredis.RunT(t)
	store := connect(t, mr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newRedisCrawler(t, store, cancellingFetcher{cancel: cancel}, monitoring.NewMetrics(prometheus.NewRegistry()))
	require.ErrorIs(t, c.Run(ctx, seedVisit, nopHandler{}), context.Canceled)

	n, err := store.Frontier().Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	inFlight, err := mr.List(processingKey)
	require.NoError(t, err)
	assert.Len(t, inFlight, 1)

	moved, err := store.Requeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	v, err := store.Frontier().Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seedVisit, v)
}

func TestRunSkipsCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := connect(t, mr)

	_, err := mr.Lpush(frontierKey, `{"url":"https://x","state":{"kind":"town"}}`)
	require.NoError(t, err)

	m := monitoring.NewMetrics(prometheus.NewRegistry())
	f := &recordingFetcher{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, newRedisCrawler(t, store, f, m).Run(ctx, seedVisit, nopHandler{}))

	assert.Equal(t, []string{seedVisit.URL}, f.fetched())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CorruptVisits))
	assert.False(t, mr.Exists(processingKey))
}
