package classify

import (
	"testing"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

func TestClassify_BasicMatches(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		name string
		text string
		want domain.Retailer
	}{
		{"walmart by name", "Will Walmart open 100 new stores this year?", domain.RetailerWalmart},
		{"walmart ticker", "Will WMT close above $100?", domain.RetailerWalmart},
		{"walmart earnings", "Will Walmart (WMT) beat Q2 earnings estimates?", domain.RetailerWalmart},
		{"amazon by name", "Will Amazon announce layoffs in 2025?", domain.RetailerAmazon},
		{"amazon ticker", "AMZN stock price above $250 by June?", domain.RetailerAmazon},
		{"costco by name", "Will Costco raise its membership fee?", domain.RetailerCostco},
		{"costco ticker phrase", "Will COST report record membership renewals?", domain.RetailerCostco},
		{"target by name", "Will Target report positive comparable sales?", domain.RetailerTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rs.Classify(tt.text)
			if !ok {
				t.Fatalf("Classify(%q) unclassified, want %s", tt.text, tt.want)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_WordBoundary(t *testing.T) {
	rs := DefaultRuleSet()

	// A keyword appearing only inside a longer word must not match.
	tests := []struct {
		name string
		text string
	}{
		{"cost inside costume", "Will costume sales break records this Halloween?"},
		{"target inside targeting", "Will ad retargeting budgets grow in 2025?"},
		{"amzn inside longer token", "Will the AMZNX index launch this year?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := rs.Classify(tt.text); ok {
				t.Errorf("Classify(%q) = %s, want unclassified", tt.text, got)
			}
		})
	}
}

func TestClassify_ExclusionPrecedence(t *testing.T) {
	rs := DefaultRuleSet()

	// Keyword matches but an exclusion pattern vetoes it: the result must not
	// be that retailer even though the keyword alone would match.
	tests := []struct {
		name string
		text string
	}{
		{"amazon rainforest", "Will the Amazon rainforest fire season be severe in 2025?"},
		{"amazon river", "Will the Amazon river reach record flood levels?"},
		{"amazon studios", "Will Amazon Studios win Best Picture?"},
		{"inflation target", "Will the Fed hit its 2% inflation target this year?"},
		{"price target", "Will analysts raise their price target for NVDA?"},
		{"military target", "Will the strike hit a military target near the border?"},
		{"cost of living", "Will the cost of living rise faster than wages?"},
		{"housing costs", "Will housing costs fall in any major metro?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := rs.Classify(tt.text); ok {
				t.Errorf("Classify(%q) = %s, want unclassified", tt.text, got)
			}
		})
	}
}

func TestClassify_ExclusionContinuesEvaluation(t *testing.T) {
	rs := DefaultRuleSet()

	// An exclusion rejects one company but must not stop the loop: a later
	// company in the fixed order can still match the same text.
	text := "Will Target beat its emissions target for 2025?"
	got, ok := rs.Classify(text)
	if ok {
		// "emissions target" vetoes the target rule and nothing else matches.
		t.Fatalf("Classify(%q) = %s, want unclassified", text, got)
	}

	text = "Will Walmart hit its revenue target this quarter?"
	got, ok = rs.Classify(text)
	if !ok || got != domain.RetailerWalmart {
		t.Fatalf("Classify(%q) = %s ok=%v, want walmart", text, got, ok)
	}
}

func TestClassify_FixedPrecedenceOrder(t *testing.T) {
	rs := DefaultRuleSet()

	// When a text names two companies, the earlier one in the fixed order
	// wins. Walmart precedes Amazon.
	text := "Will Walmart or Amazon have higher holiday sales?"
	got, ok := rs.Classify(text)
	if !ok || got != domain.RetailerWalmart {
		t.Fatalf("Classify(%q) = %s ok=%v, want walmart", text, got, ok)
	}

	// Amazon precedes Costco.
	text = "Will Amazon overtake Costco in grocery revenue?"
	got, ok = rs.Classify(text)
	if !ok || got != domain.RetailerAmazon {
		t.Fatalf("Classify(%q) = %s ok=%v, want amazon", text, got, ok)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	rs := DefaultRuleSet()

	texts := []string{
		"Will Walmart or Amazon have higher holiday sales?",
		"Will the Amazon rainforest fire season be severe in 2025?",
		"Will Costco raise its membership fee?",
		"Totally unrelated question about the weather",
	}

	// Classify is a pure function of its input: repeated and interleaved
	// calls yield identical results.
	for _, text := range texts {
		first, firstOK := rs.Classify(text)
		for i := 0; i < 3; i++ {
			for _, other := range texts {
				rs.Classify(other)
			}
			got, ok := rs.Classify(text)
			if got != first || ok != firstOK {
				t.Fatalf("Classify(%q) unstable: got (%s,%v) then (%s,%v)",
					text, first, firstOK, got, ok)
			}
		}
	}
}

func TestClassifyMarket_UsesEventTitle(t *testing.T) {
	rs := DefaultRuleSet()

	m := domain.Market{
		EventTitle:  "Walmart Q3 2025 earnings",
		Question:    "Will revenue exceed $170 billion?",
		Description: "Resolves yes if reported quarterly revenue exceeds $170B.",
	}
	got, ok := rs.ClassifyMarket(m)
	if !ok || got != domain.RetailerWalmart {
		t.Fatalf("ClassifyMarket = %s ok=%v, want walmart", got, ok)
	}
}
