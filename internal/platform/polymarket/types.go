package polymarket

import (
	"encoding/json"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as delivered by the Polymarket Gamma API.
// Several numeric fields arrive string-encoded, and the outcome price and
// token-id lists are JSON encoded inside strings; Normalize parses all of
// them into the canonical domain form.
type APIMarket struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	Active      flexBool `json:"active"` // API may send bool or "true"/"false" string
	Closed      bool     `json:"closed"`

	Outcomes      string `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	ClobTokenIDs  string `json:"clobTokenIds"`  // JSON-encoded: e.g. "[\"123\",\"456\"]"

	// The API has flip-flopped between carrying reliable numbers in the *Num
	// fields and in the string fields across its own revisions; the
	// normalizer tolerates both.
	Volume       string  `json:"volume"`
	VolumeNum    float64 `json:"volumeNum"`
	Liquidity    string  `json:"liquidity"`
	LiquidityNum float64 `json:"liquidityNum"`

	Events []APIEventRef `json:"events"`
}

// APIEventRef is the abbreviated parent-event record nested inside a market
// response.
type APIEventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// APIEvent represents an event as returned by the Gamma API. An event groups
// one or more related markets under a shared id/title/slug.
type APIEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Active      flexBool    `json:"active"`
	Closed      bool        `json:"closed"`
	Markets     []APIMarket `json:"markets"`
}

// apiPricePoint is one entry of the CLOB prices-history response.
type apiPricePoint struct {
	T int64   `json:"t"` // unix seconds
	P float64 `json:"p"` // probability
}

// apiPriceHistory is the envelope of the CLOB prices-history response.
type apiPriceHistory struct {
	History []apiPricePoint `json:"history"`
}
