// Package series joins two independently-sampled time series: a prediction
// market's probability history (sampled around the clock) and a stock's price
// history (sampled only during trading hours).
package series

import (
	"sort"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// DefaultWindowSeconds is the default nearest-neighbor tolerance: three days,
// wide enough to bridge weekend and holiday gaps in business-hours trading
// data without matching a sample from a meaningfully different period.
const DefaultWindowSeconds int64 = 259_200

// Align joins probSeries against priceSeries. For each probability point it
// finds the price point with the smallest absolute timestamp difference; if
// that difference exceeds windowSeconds the point is left unmatched
// (MatchedPrice nil) rather than paired with a stale sample. Matching is
// independent per point, so several probability points may share the same
// nearest price point. A difference of exactly windowSeconds still matches.
//
// windowSeconds <= 0 selects DefaultWindowSeconds.
func Align(probSeries, priceSeries []domain.PricePoint, windowSeconds int64) domain.AlignedSeries {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}

	aligned := make(domain.AlignedSeries, 0, len(probSeries))

	// Sort a copy of the price series so each lookup is a binary search
	// instead of a full scan. The sort is stable so price points sharing a
	// timestamp keep their input order and the matched value is deterministic.
	prices := make([]domain.PricePoint, len(priceSeries))
	copy(prices, priceSeries)
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Timestamp < prices[j].Timestamp
	})

	for _, p := range probSeries {
		pt := domain.AlignedPoint{
			Timestamp:   p.Timestamp,
			Probability: p.Value,
		}
		if match, ok := nearest(prices, p.Timestamp, windowSeconds); ok {
			v := match.Value
			pt.MatchedPrice = &v
		}
		aligned = append(aligned, pt)
	}

	return aligned
}

// nearest returns the price point closest in time to ts, provided the gap is
// within window seconds. prices must be sorted by timestamp ascending.
func nearest(prices []domain.PricePoint, ts, window int64) (domain.PricePoint, bool) {
	if len(prices) == 0 {
		return domain.PricePoint{}, false
	}

	i := sort.Search(len(prices), func(i int) bool {
		return prices[i].Timestamp >= ts
	})

	best := -1
	var bestDiff int64
	for _, cand := range []int{i - 1, i} {
		if cand < 0 || cand >= len(prices) {
			continue
		}
		diff := prices[cand].Timestamp - ts
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best = cand
			bestDiff = diff
		}
	}

	if best == -1 || bestDiff > window {
		return domain.PricePoint{}, false
	}
	return prices[best], true
}
