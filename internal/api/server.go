package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

// StatsSource reports the counters of the running crawl.
type StatsSource interface {
	Stats() domain.CrawlStats
}

// RecordReader looks up stored records.
type RecordReader interface {
	FindByURL(ctx context.Context, url string) (*domain.TransactionRecord, error)
	Count(ctx context.Context) (int64, error)
}

// Pinger is a backend whose reachability is reported by /api/health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	router     http.Handler
	httpServer *http.Server
	stats      StatsSource
	records    RecordReader
	backends   map[string]Pinger
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(port string, stats StatsSource, records RecordReader, backends map[string]Pinger, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		stats:    stats,
		records:  records,
		backends: backends,
		metrics:  m,
		logger:   l,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
