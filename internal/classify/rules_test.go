package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

func TestDefaultRuleSet_EvaluationOrder(t *testing.T) {
	rs := DefaultRuleSet()

	got := make([]domain.Retailer, 0, len(rs.Companies))
	for _, c := range rs.Companies {
		got = append(got, c.Retailer)
	}

	assert.Equal(t, domain.RetailerOrder, got,
		"rule set order must match the documented fixed evaluation order")
}

func TestDefaultRuleSet_EveryExclusionHasReason(t *testing.T) {
	rs := DefaultRuleSet()

	for _, c := range rs.Companies {
		for _, ex := range c.Exclusions {
			assert.NotNil(t, ex.Pattern, "%s: exclusion pattern must be compiled", c.Retailer)
			assert.NotEmpty(t, ex.Reason, "%s: exclusion %q needs a rationale", c.Retailer, ex.Pattern)
		}
	}
}

func TestDefaultRuleSet_CompanyMetadata(t *testing.T) {
	rs := DefaultRuleSet()

	symbols := map[domain.Retailer]string{
		domain.RetailerWalmart: "WMT",
		domain.RetailerAmazon:  "AMZN",
		domain.RetailerCostco:  "COST",
		domain.RetailerTarget:  "TGT",
	}

	for retailer, symbol := range symbols {
		c := rs.Company(retailer)
		if assert.NotNil(t, c, "missing rule entry for %s", retailer) {
			assert.Equal(t, symbol, c.Symbol)
			assert.NotEmpty(t, c.DisplayName)
			assert.NotEmpty(t, c.Color)
			assert.NotEmpty(t, c.Keywords)
		}
	}

	assert.Nil(t, rs.Company(domain.RetailerOther), "overflow bucket has no match rule")
}

// Every exclusion rule gets a text that trips it, so a future edit that
// loosens a pattern is caught here rather than in production data.
func TestDefaultRuleSet_ExclusionCoverage(t *testing.T) {
	rs := DefaultRuleSet()

	trips := map[domain.Retailer][]string{
		domain.RetailerAmazon: {
			"Deforestation in the Amazon rainforest accelerates",
			"Amazon Studios greenlights a new series",
			"An Amazonian species discovered",
		},
		domain.RetailerCostco: {
			"The cost of living crisis deepens",
			"Rising production costs squeeze margins",
			"Victory at any cost",
		},
		domain.RetailerTarget: {
			"The central bank's inflation target",
			"A new price target from analysts",
			"The missile struck a military target",
			"Raising the target price for the stock",
			"The campaign is right on target",
		},
	}

	for retailer, texts := range trips {
		c := rs.Company(retailer)
		if !assert.NotNil(t, c, "missing rule entry for %s", retailer) {
			continue
		}
		matched := make(map[string]bool, len(c.Exclusions))
		for _, text := range texts {
			ex := c.matchesExclusion(text)
			if assert.NotNil(t, ex, "%s: no exclusion matched %q", retailer, text) {
				matched[ex.Pattern.String()] = true
			}
		}
		assert.Len(t, matched, len(c.Exclusions),
			"%s: every exclusion rule should be exercised by at least one text", retailer)
	}
}
