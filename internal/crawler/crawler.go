package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	// handleGrace bounds how long a fetched page may still be handled
	// after the crawl is cancelled.
	handleGrace = 30 * time.Second
)

// Handler receives every successfully fetched page together with the state
// it was submitted with.
type Handler interface {
	Handle(ctx context.Context, page domain.Page)
}

// Options tunes the worker pool.
type Options struct {
	Workers      int
	MaxRetries   int
	PollInterval time.Duration
}

// Crawler is a worker pool draining a shared frontier. A run ends when no
// visit is queued or in flight.
type Crawler struct {
	frontier Frontier
	seen     SeenSet
	retries  RetryCounter
	fetcher  Fetcher
	opts     Options
	metrics  *monitoring.Metrics
	logger   *zap.Logger

	pending   atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	wake      chan struct{}
}

func NewCrawler(f Frontier, s SeenSet, r RetryCounter, fetcher Fetcher, opts Options, m *monitoring.Metrics, l *zap.Logger) *Crawler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Crawler{
		frontier: f,
		seen:     s,
		retries:  r,
		fetcher:  fetcher,
		opts:     opts,
		metrics:  m,
		logger:   l,
		wake:     make(chan struct{}, 1),
	}
}

// Submit queues v unless its URL was already queued in this crawl. The
// pending count is raised before the push so a worker finishing v cannot
// see the crawl as exhausted while the submitter is still running.
func (c *Crawler) Submit(ctx context.Context, v domain.Visit) error {
	first, err := c.seen.MarkSeen(ctx, v.URL)
	if err != nil {
		return fmt.Errorf("mark %s seen: %w", v.URL, err)
	}
	if !first {
		c.logger.Debug("already queued", zap.String("url", v.URL))
		return nil
	}

	c.addPending(1)
	if err := c.frontier.Push(ctx, v); err != nil {
		c.addPending(-1)
		if ferr := c.seen.Forget(ctx, v.URL); ferr != nil {
			c.logger.Error("failed to unmark unqueued url", zap.String("url", v.URL), zap.Error(ferr))
		}
		return fmt.Errorf("push %s: %w", v.URL, err)
	}
	c.signal()
	return nil
}

// Run submits seed and processes visits with opts.Workers workers until the
// frontier is exhausted. Visits left in a persistent frontier by an earlier
// run are picked up as well.
func (c *Crawler) Run(ctx context.Context, seed domain.Visit, h Handler) error {
	queued, err := c.frontier.Len(ctx)
	if err != nil {
		return fmt.Errorf("frontier length: %w", err)
	}
	c.addPending(queued)
	if queued > 0 {
		c.logger.Info("resuming crawl", zap.Int64("queued", queued))
	}

	if err := c.Submit(ctx, seed); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.opts.Workers; i++ {
		g.Go(func() error {
			return c.worker(gctx, h)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.logger.Info("frontier exhausted",
		zap.Int64("processed", c.processed.Load()),
		zap.Int64("failed", c.failed.Load()))
	return nil
}

// Stats returns a snapshot of the run counters.
func (c *Crawler) Stats() domain.CrawlStats {
	return domain.CrawlStats{
		Processed: c.processed.Load(),
		Failed:    c.failed.Load(),
		Pending:   c.pending.Load(),
	}
}

func (c *Crawler) worker(ctx context.Context, h Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := c.frontier.Pop(ctx)
		if errors.Is(err, ErrFrontierEmpty) {
			if c.pending.Load() == 0 {
				c.signal() // let the next idle worker notice too
				return nil
			}
			c.idle(ctx)
			continue
		}
		if errors.Is(err, ErrCorruptVisit) {
			c.metrics.CorruptVisits.Inc()
			c.logger.Error("dropping corrupt frontier entry", zap.Error(err))
			c.addPending(-1)
			continue
		}
		if err != nil {
			return fmt.Errorf("pop frontier: %w", err)
		}

		c.process(ctx, v, h)
	}
}

// process fetches one visit. The pending count is released only once the
// handler has submitted the page's children, so it never drops to zero
// while work can still appear.
//
// A fetch interrupted by cancellation is left unacknowledged, so a
// persistent frontier hands it out again on resume. A fetched page is
// always handled to the end, on a context that survives cancellation for
// at most handleGrace.
func (c *Crawler) process(ctx context.Context, v domain.Visit, h Handler) {
	doc, err := c.fetcher.Fetch(ctx, v.URL)
	if err != nil {
		if ctx.Err() != nil {
			c.addPending(-1)
			return
		}
		if !c.requeue(ctx, v, err) {
			c.ack(ctx, v)
			c.addPending(-1)
		}
		return
	}

	c.processed.Add(1)
	c.metrics.PagesFetched.Inc()
	c.logger.Debug("page fetched", zap.Stringer("visit", v))

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleGrace)
	defer cancel()
	h.Handle(hctx, domain.Page{URL: v.URL, State: v.State, Doc: doc})
	c.ack(hctx, v)
	c.addPending(-1)
}

func (c *Crawler) ack(ctx context.Context, v domain.Visit) {
	if err := c.frontier.Ack(ctx, v); err != nil {
		c.logger.Error("failed to acknowledge visit", zap.Stringer("visit", v), zap.Error(err))
	}
}

// requeue puts a failed visit back on the frontier while it has attempts
// left. It reports whether the visit is still pending.
func (c *Crawler) requeue(ctx context.Context, v domain.Visit, fetchErr error) bool {
	attempts, err := c.retries.Incr(ctx, v.URL)
	if err != nil {
		c.logger.Error("failed to increment retry count", zap.String("url", v.URL), zap.Error(err))
	} else if attempts <= int64(c.opts.MaxRetries) {
		if err := c.frontier.Push(ctx, v); err != nil {
			c.logger.Error("failed to requeue visit", zap.String("url", v.URL), zap.Error(err))
		} else {
			c.ack(ctx, v)
			c.metrics.IncFetchErrors("retry")
			c.logger.Warn("fetch failed, will retry",
				zap.String("url", v.URL),
				zap.Int64("attempt", attempts),
				zap.Error(fetchErr))
			return true
		}
	}

	c.failed.Add(1)
	c.metrics.IncFetchErrors("gave_up")
	c.logger.Error("fetch permanently failed", zap.Stringer("visit", v), zap.Error(fetchErr))
	return false
}

func (c *Crawler) addPending(n int64) {
	p := c.pending.Add(n)
	c.metrics.FrontierSize.Set(float64(p))
	if p == 0 {
		c.signal()
	}
}

func (c *Crawler) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Crawler) idle(ctx context.Context) {
	t := time.NewTimer(c.opts.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-c.wake:
	case <-t.C:
	}
}
