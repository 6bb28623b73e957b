package crawler

import (
	"context"
	"errors"
	"sync"

	"github.com/user/chengjiao-crawler/internal/domain"
)

var (
	// ErrFrontierEmpty is returned by Frontier.Pop when no visit is queued.
	ErrFrontierEmpty = errors.New("frontier is empty")
	// ErrCorruptVisit is returned by Frontier.Pop for an entry that cannot
	// be decoded. The entry is no longer queued.
	ErrCorruptVisit = errors.New("corrupt frontier entry")
)

// Frontier is the FIFO queue of visits waiting to be fetched.
type Frontier interface {
	Push(ctx context.Context, v domain.Visit) error
	// Pop returns ErrFrontierEmpty when nothing is queued. A persistent
	// frontier keeps the popped visit as in flight until Ack.
	Pop(ctx context.Context) (domain.Visit, error)
	// Ack releases a popped visit once it is fully handled or dropped.
	Ack(ctx context.Context, v domain.Visit) error
	Len(ctx context.Context) (int64, error)
}

// SeenSet remembers which URLs were already queued in this crawl.
type SeenSet interface {
	// MarkSeen records url and reports whether it was not seen before.
	MarkSeen(ctx context.Context, url string) (bool, error)
	// Forget undoes MarkSeen for a URL that could not be queued.
	Forget(ctx context.Context, url string) error
}

// RetryCounter counts fetch attempts per URL.
type RetryCounter interface {
	Incr(ctx context.Context, url string) (int64, error)
}

// MemoryFrontier is a Frontier backed by a slice.
type MemoryFrontier struct {
	mu    sync.Mutex
	items []domain.Visit
}

func NewMemoryFrontier() *MemoryFrontier {
	return &MemoryFrontier{}
}

func (f *MemoryFrontier) Push(_ context.Context, v domain.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, v)
	return nil
}

func (f *MemoryFrontier) Pop(_ context.Context) (domain.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return domain.Visit{}, ErrFrontierEmpty
	}
	v := f.items[0]
	f.items[0] = domain.Visit{}
	f.items = f.items[1:]
	return v, nil
}

// Ack is a no-op: an in-process frontier does not outlive the process, so
// there is nothing to recover.
func (f *MemoryFrontier) Ack(context.Context, domain.Visit) error { return nil }

func (f *MemoryFrontier) Len(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

// MemorySeenSet is a SeenSet backed by a map.
type MemorySeenSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemorySeenSet() *MemorySeenSet {
	return &MemorySeenSet{seen: make(map[string]struct{})}
}

func (s *MemorySeenSet) MarkSeen(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[url]; ok {
		return false, nil
	}
	s.seen[url] = struct{}{}
	return true, nil
}

func (s *MemorySeenSet) Forget(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, url)
	return nil
}

// MemoryRetryCounter is a RetryCounter backed by a map.
type MemoryRetryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryRetryCounter() *MemoryRetryCounter {
	return &MemoryRetryCounter{counts: make(map[string]int64)}
}

func (c *MemoryRetryCounter) Incr(_ context.Context, url string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[url]++
	return c.counts[url], nil
}
