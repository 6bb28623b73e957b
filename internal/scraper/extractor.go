package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/pkg/utils"
)

// Site selectors. Any markup change on the site turns into empty fields.
const (
	regionSelector      = `.m-filter [data-role="ershoufang"] a`
	subdistrictSelector = `.m-filter [data-role="ershoufang"] div:nth-child(2) a`
	listItemSelector    = `.listContent .title a`

	nameSelector             = ".index_h1"
	listPriceSelector        = ".info .msg span:nth-child(1) label"
	dealCycleSelector        = ".info .msg span:nth-child(2) label"
	priceAdjustmentsSelector = ".info .msg span:nth-child(3) label"
	dealPriceSelector        = ".info .dealTotalPrice i"
	unitPriceSelector        = ".info .price b"
)

// Result is what one page contributes to the crawl.
type Result struct {
	Visits []domain.Visit
	Record *domain.TransactionRecord
}

// Extractor turns fetched pages into follow-up visits and records. It holds
// no mutable state and is safe for concurrent use.
type Extractor struct {
	base *url.URL
}

// NewExtractor returns an extractor resolving links against baseURL.
func NewExtractor(baseURL string) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	return &Extractor{base: base}, nil
}

// Extract dispatches on the page's state. It never fails: selectors that
// do not match produce no visits or empty fields.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string, state domain.State) Result {
	switch s := state.(type) {
	case domain.Root:
		return Result{Visits: e.regions(doc, s)}
	case domain.Region:
		return Result{Visits: e.subdistricts(doc, s)}
	case domain.Listing:
		return Result{Visits: e.listing(doc, s)}
	case domain.Detail:
		return Result{Record: detailRecord(doc, pageURL, s)}
	default:
		return Result{}
	}
}

func (e *Extractor) regions(doc *goquery.Document, s domain.Root) []domain.Visit {
	var visits []domain.Visit
	e.eachLink(doc, regionSelector, func(abs, text string) {
		visits = append(visits, domain.Visit{URL: abs, State: s.Child(text)})
	})
	return visits
}

func (e *Extractor) subdistricts(doc *goquery.Document, s domain.Region) []domain.Visit {
	var visits []domain.Visit
	e.eachLink(doc, subdistrictSelector, func(abs, text string) {
		visits = append(visits, domain.Visit{URL: abs, State: s.Child(text)})
	})
	return visits
}

// listing proposes a Detail visit per list item, in document order, then
// the next page if there is one. Admission of details is the caller's job.
func (e *Extractor) listing(doc *goquery.Document, s domain.Listing) []domain.Visit {
	var visits []domain.Visit
	e.eachLink(doc, listItemSelector, func(abs, _ string) {
		visits = append(visits, domain.Visit{URL: abs, State: s.Child()})
	})

	if desc, ok := ParsePagination(doc); ok {
		if next, ok := NextPage(e.base, desc, s); ok {
			visits = append(visits, next)
		}
	}
	return visits
}

// eachLink calls fn with the resolved href and trimmed text of every
// matching anchor. Anchors without a usable href are skipped.
func (e *Extractor) eachLink(doc *goquery.Document, selector string, fn func(abs, text string)) {
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		abs, err := utils.ToAbsoluteURL(e.base, strings.TrimSpace(href))
		if err != nil {
			return
		}
		fn(abs, strings.TrimSpace(a.Text()))
	})
}

func baseAttr(doc *goquery.Document, n int) string {
	return innerText(doc, fmt.Sprintf(".base .content li:nth-child(%d)", n))
}

func transactionAttr(doc *goquery.Document, n int) string {
	return labelledText(doc, fmt.Sprintf(".transaction .content li:nth-child(%d)", n))
}

// detailRecord reads a transaction page. Attribute tables are addressed by
// list position because the site exposes no field names.
func detailRecord(doc *goquery.Document, pageURL string, s domain.Detail) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		Region:      s.Region,
		Subdistrict: s.Subdistrict,
		URL:         pageURL,

		Name: innerText(doc, nameSelector),

		ListPrice:        innerText(doc, listPriceSelector),
		DealCycle:        innerText(doc, dealCycleSelector),
		PriceAdjustments: innerText(doc, priceAdjustmentsSelector),
		DealPrice:        innerText(doc, dealPriceSelector),
		UnitPrice:        innerText(doc, unitPriceSelector),

		Layout:            baseAttr(doc, 1),
		Floor:             baseAttr(doc, 2),
		GrossArea:         baseAttr(doc, 3),
		LayoutStructure:   baseAttr(doc, 4),
		InnerArea:         baseAttr(doc, 5),
		BuildingType:      baseAttr(doc, 6),
		Orientation:       baseAttr(doc, 7),
		BuildYear:         baseAttr(doc, 8),
		Decoration:        baseAttr(doc, 9),
		BuildingStructure: baseAttr(doc, 10),
		Heating:           baseAttr(doc, 11),
		ElevatorRatio:     baseAttr(doc, 12),
		Elevator:          baseAttr(doc, 13),

		// li:nth-child(1) of the transaction table is a heading.
		Ownership:     transactionAttr(doc, 2),
		ListedAt:      transactionAttr(doc, 3),
		Usage:         transactionAttr(doc, 4),
		OwnershipTerm: transactionAttr(doc, 5),
		TitleType:     transactionAttr(doc, 6),
	}
}
