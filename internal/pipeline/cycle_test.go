package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/retailboard/internal/aggregate"
	"github.com/alanyoungcy/retailboard/internal/classify"
	"github.com/alanyoungcy/retailboard/internal/domain"
	"github.com/alanyoungcy/retailboard/internal/platform/polymarket"
)

type fakeGamma struct {
	eventsByTag map[string][]polymarket.APIEvent
	searchRes   map[string][]polymarket.APIMarket
	eventList   []polymarket.APIEvent
	listing     []polymarket.APIMarket

	eventsErr    error
	searchErr    error
	eventListErr error
	listingErr   error
}

func (f *fakeGamma) GetEventsByTag(_ context.Context, tag string, _ int) ([]polymarket.APIEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.eventsByTag[tag], nil
}

func (f *fakeGamma) SearchMarkets(_ context.Context, query string) ([]polymarket.APIMarket, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchRes[query], nil
}

func (f *fakeGamma) GetEvents(_ context.Context, _, offset int) ([]polymarket.APIEvent, error) {
	if f.eventListErr != nil {
		return nil, f.eventListErr
	}
	if offset > 0 {
		return nil, nil
	}
	return f.eventList, nil
}

func (f *fakeGamma) GetMarkets(_ context.Context, _, offset int) ([]polymarket.APIMarket, error) {
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	if offset > 0 {
		return nil, nil
	}
	return f.listing, nil
}

type fakeSnapshotCache struct {
	latest domain.Snapshot
	set    bool
	err    error
}

func (f *fakeSnapshotCache) SetLatest(_ context.Context, snap domain.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.latest = snap
	f.set = true
	return nil
}

func (f *fakeSnapshotCache) GetLatest(context.Context) (domain.Snapshot, error) {
	if !f.set {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	return f.latest, nil
}

type fakeSignalBus struct {
	channel string
	payload []byte
}

func (f *fakeSignalBus) Publish(_ context.Context, channel string, payload []byte) error {
	f.channel = channel
	f.payload = payload
	return nil
}

func (f *fakeSignalBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

type fakeCycleStore struct {
	records []domain.CycleRecord
}

func (f *fakeCycleStore) Record(_ context.Context, rec domain.CycleRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeCycleStore) ListRecent(context.Context, domain.ListOpts) ([]domain.CycleRecord, error) {
	return f.records, nil
}

type fakeArchiver struct {
	archived []string
}

func (f *fakeArchiver) ArchiveSnapshot(_ context.Context, snap domain.Snapshot) error {
	f.archived = append(f.archived, snap.CycleID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func apiMarket(id, question string) polymarket.APIMarket {
	return polymarket.APIMarket{
		ID:       id,
		Question: question,
		Outcomes: `["Yes","No"]`,
		Active:   true,
	}
}

func newTestCycle(gamma GammaSource, snaps domain.SnapshotCache, bus domain.SignalBus, history domain.CycleStore, archiver SnapshotArchiver) *Cycle {
	deps := Deps{
		Gamma:      gamma,
		Aggregator: aggregate.New(classify.DefaultRuleSet(), testLogger()),
		Snapshots:  snaps,
		Signals:    bus,
		History:    history,
		Archiver:   archiver,
	}
	cfg := Config{
		EventTags:     []string{"walmart"},
		SearchQueries: []string{"amazon"},
	}
	return NewCycle(deps, cfg, testLogger())
}

func TestCycleRun_PublishesSnapshot(t *testing.T) {
	gamma := &fakeGamma{
		eventsByTag: map[string][]polymarket.APIEvent{
			"walmart": {{
				ID: "ev1", Title: "Walmart Q2 earnings",
				Markets: []polymarket.APIMarket{apiMarket("m1", "Will Walmart beat Q2 earnings estimates?")},
			}},
		},
		searchRes: map[string][]polymarket.APIMarket{
			"amazon": {apiMarket("m2", "Will Amazon stock close above $200?")},
		},
		listing: []polymarket.APIMarket{apiMarket("m3", "Will Costco raise membership fees this year?")},
	}
	snaps := &fakeSnapshotCache{}
	bus := &fakeSignalBus{}

	cycle := newTestCycle(gamma, snaps, bus, nil, nil)
	if err := cycle.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !snaps.set {
		t.Fatal("snapshot was not stored")
	}
	snap := snaps.latest
	if snap.CycleID == "" {
		t.Error("snapshot has no cycle ID")
	}
	if got := len(snap.Buckets[domain.RetailerWalmart]); got != 1 {
		t.Errorf("walmart bucket size = %d, want 1", got)
	}
	if got := len(snap.Buckets[domain.RetailerAmazon]); got != 1 {
		t.Errorf("amazon bucket size = %d, want 1", got)
	}
	if got := len(snap.Buckets[domain.RetailerCostco]); got != 1 {
		t.Errorf("costco bucket size = %d, want 1", got)
	}

	if bus.channel != SnapshotChannel {
		t.Errorf("published on channel %q, want %q", bus.channel, SnapshotChannel)
	}
	var published domain.Snapshot
	if err := json.Unmarshal(bus.payload, &published); err != nil {
		t.Fatalf("published payload is not a snapshot: %v", err)
	}
	if published.CycleID != snap.CycleID {
		t.Errorf("published cycle %q, stored cycle %q", published.CycleID, snap.CycleID)
	}
}

func TestCycleRun_AllSourcesFailed(t *testing.T) {
	boom := errors.New("upstream down")
	gamma := &fakeGamma{eventsErr: boom, searchErr: boom, eventListErr: boom, listingErr: boom}
	snaps := &fakeSnapshotCache{}

	cycle := newTestCycle(gamma, snaps, &fakeSignalBus{}, nil, nil)
	err := cycle.Run(context.Background())
	if !errors.Is(err, domain.ErrAllSourcesFailed) {
		t.Fatalf("Run error = %v, want ErrAllSourcesFailed", err)
	}
	if snaps.set {
		t.Error("snapshot stored despite total source failure")
	}
}

func TestCycleRun_PartialFailureStillSnapshots(t *testing.T) {
	gamma := &fakeGamma{
		eventsErr:    errors.New("events down"),
		searchErr:    errors.New("search down"),
		eventListErr: errors.New("event listing down"),
		listing:      []polymarket.APIMarket{apiMarket("m1", "Will Target report record holiday sales?")},
	}
	snaps := &fakeSnapshotCache{}
	history := &fakeCycleStore{}

	cycle := newTestCycle(gamma, snaps, &fakeSignalBus{}, history, nil)
	if err := cycle.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !snaps.set {
		t.Fatal("snapshot was not stored")
	}
	if got := len(snaps.latest.Buckets[domain.RetailerTarget]); got != 1 {
		t.Errorf("target bucket size = %d, want 1", got)
	}

	if len(history.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(history.records))
	}
	rec := history.records[0]
	if rec.SourceTotal != 4 || rec.SourceFailed != 3 {
		t.Errorf("recorded %d/%d sources failed, want 3/4", rec.SourceFailed, rec.SourceTotal)
	}
	if rec.BucketCounts[domain.RetailerTarget] != 1 {
		t.Errorf("recorded target count = %d, want 1", rec.BucketCounts[domain.RetailerTarget])
	}
}

func TestCycleRun_ArchivesSnapshot(t *testing.T) {
	gamma := &fakeGamma{
		listing: []polymarket.APIMarket{apiMarket("m1", "Will Walmart open 100 new stores?")},
	}
	snaps := &fakeSnapshotCache{}
	archiver := &fakeArchiver{}

	cycle := newTestCycle(gamma, snaps, &fakeSignalBus{}, nil, archiver)
	if err := cycle.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(archiver.archived) != 1 {
		t.Fatalf("archived %d snapshots, want 1", len(archiver.archived))
	}
	if archiver.archived[0] != snaps.latest.CycleID {
		t.Errorf("archived cycle %q, stored cycle %q", archiver.archived[0], snaps.latest.CycleID)
	}
}

func TestCycleRun_SourcePriorityOrder(t *testing.T) {
	// The same market ID appears in an event source and the listing. The
	// event copy carries the event title; it must win the dedup because tag
	// sources are fetched with higher priority.
	tagged := apiMarket("dup", "Will Walmart beat Q2 earnings estimates?")
	plain := apiMarket("dup", "Will Walmart beat Q2 earnings estimates?")

	gamma := &fakeGamma{
		eventsByTag: map[string][]polymarket.APIEvent{
			"walmart": {{ID: "ev1", Title: "Walmart earnings week", Markets: []polymarket.APIMarket{tagged}}},
		},
		listing: []polymarket.APIMarket{plain},
	}
	snaps := &fakeSnapshotCache{}

	cycle := newTestCycle(gamma, snaps, &fakeSignalBus{}, nil, nil)
	if err := cycle.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	bucket := snaps.latest.Buckets[domain.RetailerWalmart]
	if len(bucket) != 1 {
		t.Fatalf("walmart bucket size = %d, want 1", len(bucket))
	}
	if bucket[0].EventTitle != "Walmart earnings week" {
		t.Errorf("kept record has event title %q, want the tagged copy", bucket[0].EventTitle)
	}
}

func TestCycleRun_EventListingContributesMarkets(t *testing.T) {
	gamma := &fakeGamma{
		eventList: []polymarket.APIEvent{{
			ID: "ev1", Title: "Costco membership pricing",
			Markets: []polymarket.APIMarket{apiMarket("m1", "Will Costco raise membership fees this year?")},
		}},
	}
	snaps := &fakeSnapshotCache{}

	cycle := newTestCycle(gamma, snaps, &fakeSignalBus{}, nil, nil)
	if err := cycle.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	bucket := snaps.latest.Buckets[domain.RetailerCostco]
	if len(bucket) != 1 {
		t.Fatalf("costco bucket size = %d, want 1", len(bucket))
	}
	if bucket[0].EventTitle != "Costco membership pricing" {
		t.Errorf("kept record has event title %q, want the event listing's parent", bucket[0].EventTitle)
	}
}

func TestCycleRun_EventListingOutranksMarketListing(t *testing.T) {
	// The same market ID appears in the general event listing and the flat
	// market listing. The event copy carries parent metadata; it must win the
	// dedup because the event listing is fetched with higher priority.
	nested := apiMarket("dup", "Will Target report record holiday sales?")
	plain := apiMarket("dup", "Will Target report record holiday sales?")

	gamma := &fakeGamma{
		eventList: []polymarket.APIEvent{{
			ID: "ev1", Title: "Target holiday quarter", Markets: []polymarket.APIMarket{nested},
		}},
		listing: []polymarket.APIMarket{plain},
	}
	snaps := &fakeSnapshotCache{}

	cycle := newTestCycle(gamma, snaps, &fakeSignalBus{}, nil, nil)
	if err := cycle.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	bucket := snaps.latest.Buckets[domain.RetailerTarget]
	if len(bucket) != 1 {
		t.Fatalf("target bucket size = %d, want 1", len(bucket))
	}
	if bucket[0].EventTitle != "Target holiday quarter" {
		t.Errorf("kept record has event title %q, want the event listing copy", bucket[0].EventTitle)
	}
}
