package domain

import "fmt"

// State records where in the site hierarchy a visit belongs. The set of
// implementations is closed: Root, Region, Listing and Detail.
type State interface {
	// Kind returns the stable wire name of the state.
	Kind() string
	fmt.Stringer
	isState()
}

// State kinds as they appear on the wire.
const (
	KindRoot    = "root"
	KindRegion  = "region"
	KindListing = "listing"
	KindDetail  = "detail"
)

// Root is the state of the single seed visit.
type Root struct{}

// Region is a region index page.
type Region struct {
	Region string
}

// Listing is a paginated transaction list for one region/subdistrict pair.
// Every page continuation shares the same context.
type Listing struct {
	Region      string
	Subdistrict string
}

// Detail is a single transaction page.
type Detail struct {
	Region      string
	Subdistrict string
}

func (Root) isState()    {}
func (Region) isState()  {}
func (Listing) isState() {}
func (Detail) isState()  {}

func (Root) Kind() string    { return KindRoot }
func (Region) Kind() string  { return KindRegion }
func (Listing) Kind() string { return KindListing }
func (Detail) Kind() string  { return KindDetail }

func (Root) String() string { return "Root" }

func (s Region) String() string { return fmt.Sprintf("Region(%q)", s.Region) }

func (s Listing) String() string {
	return fmt.Sprintf("Listing(%q, %q)", s.Region, s.Subdistrict)
}

func (s Detail) String() string {
	return fmt.Sprintf("Detail(%q, %q)", s.Region, s.Subdistrict)
}

// Child returns the state of a region discovered from the seed page.
func (Root) Child(region string) Region {
	return Region{Region: region}
}

// Child returns the listing state of a subdistrict within the region.
func (s Region) Child(subdistrict string) Listing {
	return Listing{Region: s.Region, Subdistrict: subdistrict}
}

// Next returns the state of the following list page.
func (s Listing) Next() Listing {
	return Listing{Region: s.Region, Subdistrict: s.Subdistrict}
}

// Child returns the state of a detail page linked from the list.
func (s Listing) Child() Detail {
	return Detail{Region: s.Region, Subdistrict: s.Subdistrict}
}
