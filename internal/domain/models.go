package domain

// TransactionRecord holds the fields scraped from one detail page. It is
// built once per Detail visit and never mutated afterwards.
type TransactionRecord struct {
	Region      string `json:"region"`
	Subdistrict string `json:"subdistrict"`
	URL         string `json:"url"` // canonical URL, unique per listing

	Name string `json:"name"`

	// Header info box
	ListPrice        string `json:"list_price"`
	DealCycle        string `json:"deal_cycle"`
	PriceAdjustments string `json:"price_adjustments"`
	DealPrice        string `json:"deal_price"`
	UnitPrice        string `json:"unit_price"`

	// Basic attributes table
	Layout            string `json:"layout"`
	Floor             string `json:"floor"`
	GrossArea         string `json:"gross_area"`
	LayoutStructure   string `json:"layout_structure"`
	InnerArea         string `json:"inner_area"`
	BuildingType      string `json:"building_type"`
	Orientation       string `json:"orientation"`
	BuildYear         string `json:"build_year"`
	Decoration        string `json:"decoration"`
	BuildingStructure string `json:"building_structure"`
	Heating           string `json:"heating"`
	ElevatorRatio     string `json:"elevator_ratio"`
	Elevator          string `json:"elevator"`

	// Transaction attributes table
	Ownership     string `json:"ownership"`
	ListedAt      string `json:"listed_at"`
	Usage         string `json:"usage"`
	OwnershipTerm string `json:"ownership_term"`
	TitleType     string `json:"title_type"`
}

var recordColumns = []string{
	"region", "subdistrict", "url", "name",
	"list_price", "deal_cycle", "price_adjustments", "deal_price", "unit_price",
	"layout", "floor", "gross_area", "layout_structure", "inner_area",
	"building_type", "orientation", "build_year", "decoration",
	"building_structure", "heating", "elevator_ratio", "elevator",
	"ownership", "listed_at", "usage", "ownership_term", "title_type",
}

// Columns returns the store column names in the order of Values.
func (r *TransactionRecord) Columns() []string {
	cols := make([]string, len(recordColumns))
	copy(cols, recordColumns)
	return cols
}

// Values returns the field values in column order.
func (r *TransactionRecord) Values() []any {
	return []any{
		r.Region, r.Subdistrict, r.URL, r.Name,
		r.ListPrice, r.DealCycle, r.PriceAdjustments, r.DealPrice, r.UnitPrice,
		r.Layout, r.Floor, r.GrossArea, r.LayoutStructure, r.InnerArea,
		r.BuildingType, r.Orientation, r.BuildYear, r.Decoration,
		r.BuildingStructure, r.Heating, r.ElevatorRatio, r.Elevator,
		r.Ownership, r.ListedAt, r.Usage, r.OwnershipTerm, r.TitleType,
	}
}

// Pointers returns scan destinations in column order.
func (r *TransactionRecord) Pointers() []any {
	return []any{
		&r.Region, &r.Subdistrict, &r.URL, &r.Name,
		&r.ListPrice, &r.DealCycle, &r.PriceAdjustments, &r.DealPrice, &r.UnitPrice,
		&r.Layout, &r.Floor, &r.GrossArea, &r.LayoutStructure, &r.InnerArea,
		&r.BuildingType, &r.Orientation, &r.BuildYear, &r.Decoration,
		&r.BuildingStructure, &r.Heating, &r.ElevatorRatio, &r.Elevator,
		&r.Ownership, &r.ListedAt, &r.Usage, &r.OwnershipTerm, &r.TitleType,
	}
}

// CrawlStats is the API response for the running crawl.
type CrawlStats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Pending   int64 `json:"pending"`
	Records   int64 `json:"records"`
}
