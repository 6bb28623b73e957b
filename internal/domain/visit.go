package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownState is returned when decoding a visit whose state kind is not
// one of the four known kinds.
var ErrUnknownState = errors.New("unknown crawl state")

// Visit is one absolute URL paired with the state it will be handled in.
type Visit struct {
	URL   string
	State State
}

func (v Visit) String() string {
	return fmt.Sprintf("%s %s", v.State, v.URL)
}

type stateJSON struct {
	Kind        string `json:"kind"`
	Region      string `json:"region,omitempty"`
	Subdistrict string `json:"subdistrict,omitempty"`
}

type visitJSON struct {
	URL   string    `json:"url"`
	State stateJSON `json:"state"`
}

// EncodeVisit serialises a visit for external queues.
func EncodeVisit(v Visit) ([]byte, error) {
	if v.State == nil {
		return nil, fmt.Errorf("encode visit %s: %w", v.URL, ErrUnknownState)
	}
	out := visitJSON{URL: v.URL, State: stateJSON{Kind: v.State.Kind()}}
	switch s := v.State.(type) {
	case Root:
	case Region:
		out.State.Region = s.Region
	case Listing:
		out.State.Region, out.State.Subdistrict = s.Region, s.Subdistrict
	case Detail:
		out.State.Region, out.State.Subdistrict = s.Region, s.Subdistrict
	default:
		return nil, fmt.Errorf("encode visit %s: %w", v.URL, ErrUnknownState)
	}
	return json.Marshal(out)
}

// DecodeVisit is the inverse of EncodeVisit.
func DecodeVisit(data []byte) (Visit, error) {
	var in visitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return Visit{}, fmt.Errorf("decode visit: %w", err)
	}

	var state State
	switch in.State.Kind {
	case KindRoot:
		state = Root{}
	case KindRegion:
		state = Region{Region: in.State.Region}
	case KindListing:
		state = Listing{Region: in.State.Region, Subdistrict: in.State.Subdistrict}
	case KindDetail:
		state = Detail{Region: in.State.Region, Subdistrict: in.State.Subdistrict}
	default:
		return Visit{}, fmt.Errorf("decode visit %s: %w: %q", in.URL, ErrUnknownState, in.State.Kind)
	}
	return Visit{URL: in.URL, State: state}, nil
}
