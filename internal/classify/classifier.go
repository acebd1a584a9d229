package classify

import "github.com/alanyoungcy/retailboard/internal/domain"

// Classify decides which retailer the given free text belongs to.
//
// Companies are evaluated in the rule set's fixed order. A company matches
// when any of its keywords appears at a word boundary and none of its
// exclusion patterns match the text. An exclusion hit rejects that company
// only; evaluation continues with the next company in order. The first
// surviving match wins; there is no scoring or best-match comparison.
//
// The boolean is false when no company matches (the market is unclassified).
func (rs *RuleSet) Classify(text string) (domain.Retailer, bool) {
	for i := range rs.Companies {
		c := &rs.Companies[i]
		if !c.matchesKeyword(text) {
			continue
		}
		if c.matchesExclusion(text) != nil {
			continue
		}
		return c.Retailer, true
	}
	return "", false
}

// ClassifyMarket runs Classify over the market's combined text (parent event
// title, question, description).
func (rs *RuleSet) ClassifyMarket(m domain.Market) (domain.Retailer, bool) {
	return rs.Classify(m.ClassifyText())
}

func (c *CompanyRule) matchesKeyword(text string) bool {
	for _, re := range c.keywordRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// matchesExclusion returns the first exclusion rule matching text, or nil.
func (c *CompanyRule) matchesExclusion(text string) *ExclusionRule {
	for i := range c.Exclusions {
		if c.Exclusions[i].Pattern.MatchString(text) {
			return &c.Exclusions[i]
		}
	}
	return nil
}
