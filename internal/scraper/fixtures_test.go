package scraper_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
)

const testBaseURL = "https://sh.lianjia.com"

const rootHTML = `<html><body>
<div class="m-filter">
  <div data-role="ershoufang">
    <div><a href="/chengjiao/pudong/">浦东</a><a href="/chengjiao/minhang/"> 闵行 </a><a>无链接</a></div>
  </div>
</div>
</body></html>`

const regionHTML = `<html><body>
<div class="m-filter">
  <div data-role="ershoufang">
    <div><a href="/chengjiao/pudong/">浦东</a><a href="/chengjiao/minhang/">闵行</a></div>
    <div><a href="/chengjiao/beicai/">北蔡</a><a href="/chengjiao/biyun/">碧云</a></div>
  </div>
</div>
</body></html>`

func listingHTML(pageData string) string {
	return `<html><body>
<ul class="listContent">
  <li><div class="info"><div class="title"><a href="https://sh.lianjia.com/chengjiao/107.html">东方城市花园 2室1厅</a></div></div></li>
  <li><div class="info"><div class="title"><a href="/chengjiao/108.html">金桥新城 1室1厅</a></div></div></li>
</ul>
<div class="page-box" comp-module="page" page-url="/chengjiao/beicai/page/{page}/" page-data='` + pageData + `'></div>
</body></html>`
}

// detailHTML renders a detail page with the given attribute table values.
// Transaction values are rendered behind a label span, as on the site.
func detailHTML(base, transaction []string) string {
	var b strings.Builder
	b.WriteString(`<html><body>
<div class="wrapper"><h1 class="index_h1"> 东方城市花园 2室1厅 89.5平米 </h1></div>
<div class="info">
  <div class="price"><span class="dealTotalPrice"><i>520</i>万</span><b>58101</b>元/平</div>
  <div class="msg">
    <span><label>538</label>挂牌价格（万）</span>
    <span><label>46</label>成交周期（天）</span>
    <span><label>1</label>调价（次）</span>
  </div>
</div>
<div class="base"><div class="content"><ul>`)
	for _, v := range base {
		fmt.Fprintf(&b, "<li>%s</li>", v)
	}
	b.WriteString(`</ul></div></div>
<div class="transaction"><div class="content"><ul><li>交易属性</li>`)
	for _, v := range transaction {
		fmt.Fprintf(&b, `<li><span class="label">标签</span>%s</li>`, v)
	}
	b.WriteString(`</ul></div></div>
</body></html>`)
	return b.String()
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newMetrics() *monitoring.Metrics {
	return monitoring.NewMetrics(prometheus.NewRegistry())
}

// fakeStore is a RecordStore whose failures can be switched on.
type fakeStore struct {
	mu        sync.Mutex
	urls      map[string]bool
	inserted  []domain.TransactionRecord
	existsErr error
	insertErr error
}

func newFakeStore(urls ...string) *fakeStore {
	s := &fakeStore{urls: make(map[string]bool)}
	for _, u := range urls {
		s.urls[u] = true
	}
	return s
}

func (s *fakeStore) Exists(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.urls[url], nil
}

func (s *fakeStore) Insert(_ context.Context, rec *domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.urls[rec.URL] {
		return domain.ErrDuplicateRecord
	}
	s.urls[rec.URL] = true
	s.inserted = append(s.inserted, *rec)
	return nil
}

// recordingSubmitter collects submitted visits.
type recordingSubmitter struct {
	mu     sync.Mutex
	visits []domain.Visit
	failOn string
}

func (s *recordingSubmitter) Submit(_ context.Context, v domain.Visit) error {
	if v.URL == s.failOn {
		return fmt.Errorf("queue unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, v)
	return nil
}
