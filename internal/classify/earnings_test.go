package classify

import (
	"testing"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

func TestIsEarningsRelated(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     bool
	}{
		{"beat estimates", "Will Walmart (WMT) beat Q2 earnings estimates?", true},
		{"revenue", "Will Amazon revenue exceed $170 billion?", true},
		{"eps", "Will Costco EPS come in above $4.00?", true},
		{"guidance", "Will Target raise full-year guidance?", true},
		{"fiscal", "Will fiscal 2025 profits grow?", true},
		{"plain store question", "Will Walmart open 100 new stores?", false},
		{"weather", "Will it rain in Seattle tomorrow?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsEarningsRelated(domain.Market{Question: tt.question})
			if got != tt.want {
				t.Errorf("IsEarningsRelated(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}

func TestQualifiesForOverflow(t *testing.T) {
	tests := []struct {
		name     string
		question string
		category string
		want     bool
	}{
		{
			name:     "earnings plus quarter marker",
			question: "Will Apple beat Q1 earnings expectations?",
			category: "stocks",
			want:     true,
		},
		{
			name:     "eps with numeric magnitude",
			question: "Will EPS exceed $2.50 this quarter?",
			category: "finance",
			want:     true,
		},
		{
			name:     "revenue with magnitude",
			question: "Will revenue top $90 billion?",
			category: "equities",
			want:     true,
		},
		{
			name:     "large-cap ticker alone",
			question: "Will NVDA close above $1000 this year?",
			category: "stocks",
			want:     true,
		},
		{
			name:     "financial category but vague earnings talk",
			question: "Will earnings season surprise investors?",
			category: "finance",
			want:     false,
		},
		{
			name:     "earnings vocabulary outside financial category",
			question: "Will the band Beat release a Q4 album?",
			category: "music",
			want:     false,
		},
		{
			name:     "no category",
			question: "Will AAPL beat Q3 earnings?",
			category: "",
			want:     false,
		},
		{
			name:     "lowercase ticker does not count",
			question: "Will the meta conversation continue?",
			category: "economics",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.Market{Question: tt.question, Category: tt.category}
			got := QualifiesForOverflow(m)
			if got != tt.want {
				t.Errorf("QualifiesForOverflow(%q, %q) = %v, want %v",
					tt.question, tt.category, got, tt.want)
			}
		})
	}
}
