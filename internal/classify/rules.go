// Package classify decides which tracked retailer, if any, a prediction
// market belongs to. Matching is keyword-based with per-company exclusion
// regexes that veto known false-positive contexts.
package classify

import (
	"regexp"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// ExclusionRule is a regex describing a context in which a company keyword is
// a known false positive. Every rule carries a short reason and a covering
// test case in rules_test.go; additions without both tend to silently regress
// existing classifications.
type ExclusionRule struct {
	Pattern *regexp.Regexp
	Reason  string
}

// CompanyRule holds the match configuration for one tracked company.
type CompanyRule struct {
	Retailer domain.Retailer

	// DisplayName, Symbol, and Color are presentation metadata passed through
	// to the dashboard (Symbol doubles as the stock-series lookup key).
	DisplayName string
	Symbol      string
	Color       string

	// Keywords are matched case-insensitively at word boundaries. A keyword
	// appearing only inside a longer word ("cost" in "costume") is not a match.
	Keywords []string

	Exclusions []ExclusionRule

	keywordRes []*regexp.Regexp
}

// RuleSet is the full classification configuration. Build it once at process
// start with DefaultRuleSet and pass it by reference; it is immutable after
// construction.
type RuleSet struct {
	// Companies in classifier evaluation order. First match wins, so this
	// order is the tie-break when a text mentions more than one company.
	Companies []CompanyRule
}

// NewRuleSet compiles the keyword patterns of the given companies and returns
// the ready-to-use rule set. Company order is preserved.
func NewRuleSet(companies []CompanyRule) *RuleSet {
	rs := &RuleSet{Companies: companies}
	for i := range rs.Companies {
		c := &rs.Companies[i]
		c.keywordRes = make([]*regexp.Regexp, len(c.Keywords))
		for j, kw := range c.Keywords {
			c.keywordRes[j] = wordPattern(kw)
		}
	}
	return rs
}

func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
}

func excl(pattern, reason string) ExclusionRule {
	return ExclusionRule{
		Pattern: regexp.MustCompile(`(?i)` + pattern),
		Reason:  reason,
	}
}

// DefaultRuleSet returns the production rule set for the four tracked
// retailers, in the fixed evaluation order walmart, amazon, costco, target.
func DefaultRuleSet() *RuleSet {
	return NewRuleSet(
		[]CompanyRule{
			{
				Retailer:    domain.RetailerWalmart,
				DisplayName: "Walmart",
				Symbol:      "WMT",
				Color:       "#0071ce",
				Keywords:    []string{"walmart", "wal-mart", "wmt", "sam's club"},
				// No exclusions so far: "walmart" has not produced false
				// positives in observed data.
			},
			{
				Retailer:    domain.RetailerAmazon,
				DisplayName: "Amazon",
				Symbol:      "AMZN",
				Color:       "#ff9900",
				Keywords:    []string{"amazon", "amzn", "prime day", "whole foods"},
				Exclusions: []ExclusionRule{
					excl(`amazon\s+(rainforest|river|basin|jungle|forest)`,
						"the river/rainforest, not the company"),
					excl(`amazon\s+(studios|mgm|prime\s+video\s+series)`,
						"film/TV subsidiary markets are entertainment, not retail"),
					excl(`amazonian`,
						"adjective almost always refers to the region"),
				},
			},
			{
				Retailer:    domain.RetailerCostco,
				DisplayName: "Costco",
				Symbol:      "COST",
				Color:       "#e31837",
				// "cost" matches the COST ticker; matching is case-insensitive
				// so the generic English noun collides and needs exclusions.
				Keywords: []string{"costco", "cost", "kirkland signature"},
				Exclusions: []ExclusionRule{
					excl(`cost\s+of\s+(living|goods|labor|shipping|college|healthcare)`,
						"generic cost-of-X phrases"),
					excl(`(production|energy|housing|borrowing)\s+costs?`,
						"macro cost discussions"),
					excl(`at\s+(all|any|no)\s+cost`,
						"idiom"),
				},
			},
			{
				Retailer:    domain.RetailerTarget,
				DisplayName: "Target",
				Symbol:      "TGT",
				Color:       "#cc0000",
				Keywords:    []string{"target", "tgt"},
				Exclusions: []ExclusionRule{
					excl(`inflation\s+target`,
						"central-bank policy targets"),
					excl(`(price|rate|revenue|emissions?|growth)\s+target`,
						"X-target phrases about goals, not the company"),
					excl(`target\s+(price|rate|date|audience|range)`,
						"target-X phrases about goals, not the company"),
					excl(`(military|strike|missile|bombing)\s+target`,
						"conflict coverage"),
					excl(`on\s+target`,
						"idiom"),
				},
			},
		},
	)
}

// Company returns the rule entry for a tracked retailer, or nil.
func (rs *RuleSet) Company(r domain.Retailer) *CompanyRule {
	for i := range rs.Companies {
		if rs.Companies[i].Retailer == r {
			return &rs.Companies[i]
		}
	}
	return nil
}
