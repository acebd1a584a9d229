package domain

import "time"

// Market is the canonical in-memory form of an upstream prediction market
// after normalization: string-encoded numeric fields parsed, parent event
// metadata resolved, and documented defaults substituted for anything
// malformed.
type Market struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`

	// Parent event metadata. EventSlug falls back to the market's own slug
	// when there is no parent event, so it is always usable for building the
	// outside-world URL.
	EventID    string `json:"eventId,omitempty"`
	EventTitle string `json:"eventTitle,omitempty"`
	EventSlug  string `json:"eventSlug"`

	// OutcomePrices holds the parsed outcome probabilities. By upstream
	// convention the first entry is "Yes" and the second "No". Defaults to
	// [0,0] when the string-encoded field cannot be parsed. Values are
	// assumed to be in [0,1] but are not clamped or validated here.
	OutcomePrices []float64 `json:"outcomePrices"`

	// TokenIDs are the tradable-outcome identifiers used to fetch probability
	// history. Defaults to an empty list when unparseable.
	TokenIDs []string `json:"tokenIds"`

	Volume    float64 `json:"volume"`
	Liquidity float64 `json:"liquidity"`
	Active    bool    `json:"active"`
	Closed    bool    `json:"closed"`
}

// YesPrice returns the first outcome probability, or 0 when absent.
func (m Market) YesPrice() float64 {
	if len(m.OutcomePrices) > 0 {
		return m.OutcomePrices[0]
	}
	return 0
}

// NoPrice returns the second outcome probability, or 0 when absent.
func (m Market) NoPrice() float64 {
	if len(m.OutcomePrices) > 1 {
		return m.OutcomePrices[1]
	}
	return 0
}

// ClassifyText is the text the classifier runs over: parent event title,
// question, then description, space-joined.
func (m Market) ClassifyText() string {
	return m.EventTitle + " " + m.Question + " " + m.Description
}

// Snapshot is one fetch cycle's aggregated, classified result set. It is
// recomputed from scratch every cycle and never mutated afterwards.
type Snapshot struct {
	CycleID   string                `json:"cycleId"`
	Buckets   map[Retailer][]Market `json:"retailerBuckets"`
	FetchedAt time.Time             `json:"timestamp"`
}

// Total returns the number of markets across all buckets.
func (s Snapshot) Total() int {
	n := 0
	for _, ms := range s.Buckets {
		n += len(ms)
	}
	return n
}
