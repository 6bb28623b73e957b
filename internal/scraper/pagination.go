package scraper

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/pkg/utils"
)

const (
	paginationSelector = `[comp-module="page"]`
	pageDataAttr       = "page-data"
	pageURLAttr        = "page-url"
	pagePlaceholder    = "{page}"
)

// PageDescriptor is the pagination metadata of a list page.
type PageDescriptor struct {
	Current  int
	Total    int
	Template string
}

type pageData struct {
	TotalPage int `json:"totalPage"`
	CurPage   int `json:"curPage"`
}

// ParsePagination reads the pagination block of a list page. It reports
// false when the block is absent or its attributes cannot be parsed.
func ParsePagination(doc *goquery.Document) (PageDescriptor, bool) {
	sel := doc.Find(paginationSelector).First()
	if sel.Length() == 0 {
		return PageDescriptor{}, false
	}
	raw, ok := sel.Attr(pageDataAttr)
	if !ok {
		return PageDescriptor{}, false
	}
	tmpl, ok := sel.Attr(pageURLAttr)
	if !ok || !strings.Contains(tmpl, pagePlaceholder) {
		return PageDescriptor{}, false
	}

	var data pageData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return PageDescriptor{}, false
	}
	return PageDescriptor{Current: data.CurPage, Total: data.TotalPage, Template: tmpl}, true
}

// NextPage returns the visit for the page after desc.Current, carrying the
// same listing context, or false on the last page.
func NextPage(base *url.URL, desc PageDescriptor, state domain.Listing) (domain.Visit, bool) {
	if desc.Current >= desc.Total {
		return domain.Visit{}, false
	}
	next := strings.ReplaceAll(desc.Template, pagePlaceholder, strconv.Itoa(desc.Current+1))
	abs, err := utils.ToAbsoluteURL(base, next)
	if err != nil {
		return domain.Visit{}, false
	}
	return domain.Visit{URL: abs, State: state.Next()}, true
}
