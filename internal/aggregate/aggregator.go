// Package aggregate merges normalized markets from multiple overlapping
// upstream queries into deduplicated, per-retailer buckets.
package aggregate

import (
	"log/slog"
	"sort"

	"github.com/alanyoungcy/retailboard/internal/classify"
	"github.com/alanyoungcy/retailboard/internal/domain"
)

// Source is one upstream query's normalized result list. Sources are merged
// in slice order, which is the dedup priority: company-specific (tag-filtered)
// sources come before general listings so the richer record, the one carrying
// parent-event metadata, wins when the same market appears twice.
type Source struct {
	Name    string
	Markets []domain.Market
}

// Aggregator classifies and buckets markets from prioritized sources.
type Aggregator struct {
	rules  *classify.RuleSet
	logger *slog.Logger
}

// New creates an Aggregator using the given rule set.
func New(rules *classify.RuleSet, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		rules:  rules,
		logger: logger,
	}
}

// Aggregate merges the sources into retailer buckets.
//
// Dedup key is the market ID, first-seen-wins across sources. Only markets
// flagged active and not closed are kept. Bucket keys are a closed set, the
// four tracked companies plus the overflow bucket; a rule classifying to any
// other retailer value falls through to the overflow check instead of
// creating a bucket the API never serves. Unclassified markets go to the
// overflow bucket when they pass the stricter earnings rule, and are dropped
// otherwise. Within each bucket markets are sorted by volume descending; the
// sort is stable, so equal-volume markets keep their input order.
func (a *Aggregator) Aggregate(sources []Source) map[domain.Retailer][]domain.Market {
	buckets := make(map[domain.Retailer][]domain.Market, len(domain.RetailerOrder)+1)
	for _, r := range domain.RetailerOrder {
		buckets[r] = []domain.Market{}
	}
	buckets[domain.RetailerOther] = []domain.Market{}

	seen := make(map[string]bool)
	dropped := 0

	for _, src := range sources {
		for _, m := range src.Markets {
			if m.ID == "" || seen[m.ID] {
				continue
			}
			seen[m.ID] = true

			if !m.Active || m.Closed {
				continue
			}

			if retailer, ok := a.rules.ClassifyMarket(m); ok && retailer.IsTracked() {
				buckets[retailer] = append(buckets[retailer], m)
				continue
			}
			if classify.QualifiesForOverflow(m) {
				buckets[domain.RetailerOther] = append(buckets[domain.RetailerOther], m)
				continue
			}
			dropped++
		}
	}

	for r := range buckets {
		ms := buckets[r]
		sort.SliceStable(ms, func(i, j int) bool {
			return ms[i].Volume > ms[j].Volume
		})
	}

	if a.logger != nil {
		a.logger.Debug("aggregated markets",
			slog.Int("unique", len(seen)),
			slog.Int("dropped_unclassified", dropped),
		)
	}

	return buckets
}

// FilterEarnings returns the subset of markets whose question carries
// quarterly-reporting vocabulary, preserving order.
func FilterEarnings(markets []domain.Market) []domain.Market {
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if classify.IsEarningsRelated(m) {
			out = append(out, m)
		}
	}
	return out
}
