package polymarket

import (
	"encoding/json"
	"strconv"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// Normalize converts a raw Gamma market into the canonical domain form. It
// never fails: malformed JSON in the outcome-price or token-id fields is
// replaced by the documented defaults ([0,0] prices, no tokens) instead of
// propagating an error. parent may be nil for markets fetched outside an
// event listing.
func Normalize(raw APIMarket, parent *APIEventRef) domain.Market {
	m := domain.Market{
		ID:          raw.ID,
		Question:    raw.Question,
		Description: raw.Description,
		Slug:        raw.Slug,
		Category:    raw.Category,
		Active:      bool(raw.Active),
		Closed:      raw.Closed,
	}

	m.OutcomePrices = parsePriceList(raw.OutcomePrices)
	m.TokenIDs = parseTokenList(raw.ClobTokenIDs)
	m.Volume = coerceNumeric(raw.VolumeNum, raw.Volume)
	m.Liquidity = coerceNumeric(raw.LiquidityNum, raw.Liquidity)

	// Resolve parent event metadata: explicit parent beats the nested events
	// list; the market's own slug is the last resort for URL construction.
	if parent == nil && len(raw.Events) > 0 {
		parent = &raw.Events[0]
	}
	if parent != nil {
		m.EventID = parent.ID
		m.EventTitle = parent.Title
		m.EventSlug = parent.Slug
	}
	if m.EventSlug == "" {
		m.EventSlug = raw.Slug
	}

	return m
}

// NormalizeEvent normalizes every market nested under an event, attaching the
// event as the parent.
func NormalizeEvent(ev APIEvent) []domain.Market {
	ref := APIEventRef{ID: ev.ID, Title: ev.Title, Slug: ev.Slug}
	out := make([]domain.Market, 0, len(ev.Markets))
	for i := range ev.Markets {
		out = append(out, Normalize(ev.Markets[i], &ref))
	}
	return out
}

// NormalizeAll normalizes a flat market listing (no parent events).
func NormalizeAll(raw []APIMarket) []domain.Market {
	out := make([]domain.Market, 0, len(raw))
	for i := range raw {
		out = append(out, Normalize(raw[i], nil))
	}
	return out
}

// parsePriceList parses the string-encoded outcome price array. The API has
// delivered both `["0.62","0.38"]` and `[0.62,0.38]`; anything unparseable
// yields the [0,0] default.
func parsePriceList(encoded string) []float64 {
	fallback := []float64{0, 0}
	if encoded == "" {
		return fallback
	}

	var asStrings []string
	if err := json.Unmarshal([]byte(encoded), &asStrings); err == nil {
		out := make([]float64, len(asStrings))
		for i, s := range asStrings {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fallback
			}
			out[i] = f
		}
		return out
	}

	var asFloats []float64
	if err := json.Unmarshal([]byte(encoded), &asFloats); err == nil {
		return asFloats
	}

	return fallback
}

// parseTokenList parses the string-encoded token-id array, yielding an empty
// list on any failure.
func parseTokenList(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	var tokens []string
	if err := json.Unmarshal([]byte(encoded), &tokens); err != nil {
		return []string{}
	}
	return tokens
}

// coerceNumeric implements the volume/liquidity fallback: prefer the
// pre-computed numeric field, else parse the string field, else zero.
func coerceNumeric(numField float64, strField string) float64 {
	if numField != 0 {
		return numField
	}
	if f, err := strconv.ParseFloat(strField, 64); err == nil {
		return f
	}
	return 0
}
