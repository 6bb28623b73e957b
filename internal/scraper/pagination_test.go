package scraper_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/scraper"
)

func TestParsePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		html   string
		want   scraper.PageDescriptor
		wantOK bool
	}{
		{
			name:   "valid block",
			html:   `<div comp-module="page" page-url="/chengjiao/pg{page}/" page-data='{"totalPage":100,"curPage":7}'></div>`,
			want:   scraper.PageDescriptor{Current: 7, Total: 100, Template: "/chengjiao/pg{page}/"},
			wantOK: true,
		},
		{
			name: "block absent",
			html: `<div class="page-box"></div>`,
		},
		{
			name: "page-data missing",
			html: `<div comp-module="page" page-url="/chengjiao/pg{page}/"></div>`,
		},
		{
			name: "page-url missing",
			html: `<div comp-module="page" page-data='{"totalPage":2,"curPage":1}'></div>`,
		},
		{
			name: "template without placeholder",
			html: `<div comp-module="page" page-url="/chengjiao/" page-data='{"totalPage":2,"curPage":1}'></div>`,
		},
		{
			name: "unparsable page-data",
			html: `<div comp-module="page" page-url="/chengjiao/pg{page}/" page-data="total=2"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := scraper.ParsePagination(mustDoc(t, tt.html))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextPage(t *testing.T) {
	t.Parallel()

	base, err := url.Parse(testBaseURL)
	require.NoError(t, err)
	state := domain.Listing{Region: "浦东", Subdistrict: "北蔡"}

	v, ok := scraper.NextPage(base, scraper.PageDescriptor{Current: 2, Total: 5, Template: "/chengjiao/beicai/page/{page}"}, state)
	require.True(t, ok)
	assert.Equal(t, "https://sh.lianjia.com/chengjiao/beicai/page/3", v.URL)
	assert.Equal(t, state, v.State)

	_, ok = scraper.NextPage(base, scraper.PageDescriptor{Current: 5, Total: 5, Template: "/pg{page}"}, state)
	assert.False(t, ok)

	_, ok = scraper.NextPage(base, scraper.PageDescriptor{Current: 6, Total: 5, Template: "/pg{page}"}, state)
	assert.False(t, ok)

	// Zero-valued metadata means an empty result list.
	_, ok = scraper.NextPage(base, scraper.PageDescriptor{Template: "/pg{page}"}, state)
	assert.False(t, ok)
}
