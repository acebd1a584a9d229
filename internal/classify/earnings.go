package classify

import (
	"regexp"
	"strings"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// earningsKeywords is the quarterly-reporting vocabulary. Matched by plain
// case-insensitive substring containment: earnings vocabulary has few
// false-positive collisions, so word-boundary strictness is not worth it here.
var earningsKeywords = []string{
	"earnings", "revenue", "eps", "quarterly",
	"q1", "q2", "q3", "q4",
	"fiscal", "beat", "guidance",
}

// overflowTickers is the fixed large-cap allow-list for the "other" bucket.
// Matched case-sensitively so the tickers don't collide with ordinary words
// ("META", not "meta").
var overflowTickers = regexp.MustCompile(
	`\b(AAPL|MSFT|GOOGL|GOOG|META|NVDA|TSLA|NFLX|JPM|BRK)\b`)

var (
	quarterMarker    = regexp.MustCompile(`(?i)\bq[1-4]\b`)
	epsOrRevenue     = regexp.MustCompile(`(?i)\b(eps|revenue)\b`)
	numericMagnitude = regexp.MustCompile(`\$?\d+(\.\d+)?\s*(billion|million|bn|b|m|%)?`)
)

// financialCategories are the upstream category labels that mark a market as
// finance-related for overflow purposes.
var financialCategories = map[string]bool{
	"finance":   true,
	"financial": true,
	"stocks":    true,
	"equities":  true,
	"economics": true,
	"economy":   true,
	"business":  true,
}

// IsEarningsRelated reports whether the market's question contains quarterly
// financial-reporting vocabulary. Used to filter a retailer bucket down to
// its earnings view.
func IsEarningsRelated(m domain.Market) bool {
	q := strings.ToLower(m.Question)
	for _, kw := range earningsKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// QualifiesForOverflow decides whether an unclassified market belongs in the
// "other" bucket. The rule is deliberately stricter than IsEarningsRelated so
// the overflow bucket is not flooded by every tangential mention of
// "earnings": the category label must be financial, AND the question must
// either pair earnings vocabulary with a quarter marker, pair an EPS/revenue
// mention with a numeric magnitude, or name a ticker from the large-cap
// allow-list.
func QualifiesForOverflow(m domain.Market) bool {
	if !financialCategories[strings.ToLower(strings.TrimSpace(m.Category))] {
		return false
	}

	if IsEarningsRelated(m) && quarterMarker.MatchString(m.Question) {
		return true
	}
	if epsOrRevenue.MatchString(m.Question) && numericMagnitude.MatchString(m.Question) {
		return true
	}
	return overflowTickers.MatchString(m.Question)
}
