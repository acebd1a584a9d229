package aggregate

import (
	"testing"

	"github.com/alanyoungcy/retailboard/internal/classify"
	"github.com/alanyoungcy/retailboard/internal/domain"
)

func newAggregator() *Aggregator {
	return New(classify.DefaultRuleSet(), nil)
}

func mkMarket(id, question string, volume float64) domain.Market {
	return domain.Market{
		ID:       id,
		Question: question,
		Volume:   volume,
		Active:   true,
	}
}

func TestAggregate_BucketsByRetailer(t *testing.T) {
	agg := newAggregator()

	src := Source{Name: "markets", Markets: []domain.Market{
		mkMarket("1", "Will Walmart beat Q2 earnings estimates?", 100),
		mkMarket("2", "Will Amazon announce layoffs?", 200),
		mkMarket("3", "Will Costco raise its membership fee?", 50),
		mkMarket("4", "Will Target report positive sales?", 75),
		mkMarket("5", "Will it rain in Seattle?", 500),
	}}

	buckets := agg.Aggregate([]Source{src})

	want := map[domain.Retailer]int{
		domain.RetailerWalmart: 1,
		domain.RetailerAmazon:  1,
		domain.RetailerCostco:  1,
		domain.RetailerTarget:  1,
		domain.RetailerOther:   0,
	}
	for retailer, n := range want {
		if got := len(buckets[retailer]); got != n {
			t.Errorf("bucket %s: got %d markets, want %d", retailer, got, n)
		}
	}
}

func TestAggregate_BucketKeysAreAClosedSet(t *testing.T) {
	// A rule carrying an untracked retailer must not inject a bucket key the
	// API never serves; its matches fall through to the overflow check.
	rules := classify.NewRuleSet([]classify.CompanyRule{{
		Retailer: domain.Retailer("sears"),
		Keywords: []string{"sears"},
	}})
	agg := New(rules, nil)

	buckets := agg.Aggregate([]Source{{
		Name:    "markets",
		Markets: []domain.Market{mkMarket("1", "Will Sears reopen any stores?", 10)},
	}})

	if _, ok := buckets["sears"]; ok {
		t.Error("untracked retailer created a bucket key")
	}
	if got := len(buckets); got != len(domain.RetailerOrder)+1 {
		t.Errorf("bucket key count = %d, want %d", got, len(domain.RetailerOrder)+1)
	}
	if got := len(buckets[domain.RetailerOther]); got != 0 {
		t.Errorf("overflow bucket size = %d, want 0 for a non-earnings market", got)
	}
}

func TestAggregate_DedupIdempotent(t *testing.T) {
	agg := newAggregator()

	markets := []domain.Market{
		mkMarket("1", "Will Walmart open 100 new stores?", 100),
		mkMarket("2", "Will Amazon stock hit $250?", 200),
	}
	src := Source{Name: "markets", Markets: markets}

	once := agg.Aggregate([]Source{src})
	twice := agg.Aggregate([]Source{src, src})

	for retailer := range once {
		if len(once[retailer]) != len(twice[retailer]) {
			t.Errorf("bucket %s: dedup not idempotent: %d vs %d",
				retailer, len(once[retailer]), len(twice[retailer]))
		}
	}
}

func TestAggregate_FirstSeenWins(t *testing.T) {
	agg := newAggregator()

	// The tag-filtered source carries parent-event metadata; the general
	// listing carries the same market without it. The earlier source's record
	// must survive.
	tagged := mkMarket("1", "Will revenue exceed $170 billion?", 100)
	tagged.EventTitle = "Walmart Q3 2025 earnings"
	plainDupe := mkMarket("1", "Will revenue exceed $170 billion?", 100)

	buckets := agg.Aggregate([]Source{
		{Name: "events:walmart", Markets: []domain.Market{tagged}},
		{Name: "markets", Markets: []domain.Market{plainDupe}},
	})

	wal := buckets[domain.RetailerWalmart]
	if len(wal) != 1 {
		t.Fatalf("walmart bucket: got %d markets, want 1", len(wal))
	}
	if wal[0].EventTitle != "Walmart Q3 2025 earnings" {
		t.Errorf("first-seen record was overwritten: event title %q", wal[0].EventTitle)
	}
}

func TestAggregate_SkipsInactiveAndClosed(t *testing.T) {
	agg := newAggregator()

	inactive := mkMarket("1", "Will Walmart open 100 stores?", 100)
	inactive.Active = false
	closed := mkMarket("2", "Will Walmart beat Q2 earnings?", 100)
	closed.Closed = true

	buckets := agg.Aggregate([]Source{{Name: "markets", Markets: []domain.Market{inactive, closed}}})
	if n := len(buckets[domain.RetailerWalmart]); n != 0 {
		t.Errorf("walmart bucket: got %d markets, want 0 (inactive/closed excluded)", n)
	}
}

func TestAggregate_VolumeSortStable(t *testing.T) {
	agg := newAggregator()

	src := Source{Name: "markets", Markets: []domain.Market{
		mkMarket("low", "Will Amazon do a stock split?", 10),
		mkMarket("tie-a", "Will Amazon acquire a grocery chain?", 50),
		mkMarket("high", "Will Amazon revenue beat estimates?", 500),
		mkMarket("tie-b", "Will Amazon Prime fees rise?", 50),
	}}

	buckets := agg.Aggregate([]Source{src})
	amz := buckets[domain.RetailerAmazon]

	wantOrder := []string{"high", "tie-a", "tie-b", "low"}
	if len(amz) != len(wantOrder) {
		t.Fatalf("amazon bucket: got %d markets, want %d", len(amz), len(wantOrder))
	}
	for i, id := range wantOrder {
		if amz[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, amz[i].ID, id)
		}
	}
	for i := 1; i < len(amz); i++ {
		if amz[i].Volume > amz[i-1].Volume {
			t.Errorf("bucket not non-increasing by volume at %d", i)
		}
	}
}

func TestAggregate_OverflowBucket(t *testing.T) {
	agg := newAggregator()

	overflow := mkMarket("1", "Will AAPL beat Q1 earnings expectations?", 100)
	overflow.Category = "stocks"
	vague := mkMarket("2", "Will earnings season surprise investors?", 100)
	vague.Category = "finance"

	buckets := agg.Aggregate([]Source{{Name: "markets", Markets: []domain.Market{overflow, vague}}})

	other := buckets[domain.RetailerOther]
	if len(other) != 1 || other[0].ID != "1" {
		t.Fatalf("other bucket: got %v, want exactly market 1", ids(other))
	}
}

func ids(ms []domain.Market) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
