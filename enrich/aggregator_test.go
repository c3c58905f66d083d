package enrich

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/source"
	"github.com/fluffy1211/moviedna/store"
)

type fakeCatalog struct {
	detailCalls atomic.Int64
	fail        bool
	delay       time.Duration
}

func (c *fakeCatalog) Query(_ context.Context, _ source.Filter) (*source.Result, error) {
	return &source.Result{}, nil
}

func (c *fakeCatalog) Details(ctx context.Context, id int64) (*core.EnrichedMovie, error) {
	c.detailCalls.Add(1)
	if c.fail {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "catalog down")
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeTimeout, "catalog timeout")
		}
	}
	e := core.NewEnrichedMovie(&core.Movie{ID: id, Title: "t", VoteAverage: 8.2, VoteCount: 5000})
	e.Runtime = 139
	e.Director = "D. Fincher"
	e.Keywords = []string{"cult film"}
	return e, nil
}

type fakeCommunity struct {
	calls atomic.Int64
	rec   *core.CommunityRecord
	fail  bool
	delay time.Duration
}

func (c *fakeCommunity) Lookup(ctx context.Context, _ string, _ int) (*core.CommunityRecord, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "community down")
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeTimeout, "community timeout")
		}
	}
	return c.rec, nil
}

type fakeStreaming struct {
	offers []core.Offer
	fail   bool
}

func (s *fakeStreaming) Availability(_ context.Context, _ int64, _ string) ([]core.Offer, error) {
	if s.fail {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "streaming down")
	}
	return s.offers, nil
}

func allOpts() Options {
	return Options{IncludeCommunity: true, IncludeStreaming: true, Country: "US", Timeout: time.Second}
}

func TestAggregator_FullEnrichment(t *testing.T) {
	rating := &core.CommunityRecord{Rating: 4.2, Watches: 500000, CultClassic: true, Themes: []string{"redemption"}}
	a := NewAggregator(
		&fakeCatalog{},
		&fakeCommunity{rec: rating},
		&fakeStreaming{offers: []core.Offer{{ProviderName: "Netflix", Type: core.OfferFlatrate}}},
		nil,
	)

	e := a.Enrich(context.Background(), &core.Movie{ID: 550, Title: "Fight Club", VoteAverage: 8.2, VoteCount: 5000}, allOpts())

	if e.CommunityRating == nil || *e.CommunityRating != 4.2 {
		t.Error("community rating not merged")
	}
	if !e.CultClassic {
		t.Error("cult flag not merged")
	}
	if !e.HasOffers() {
		t.Error("streaming offers not merged")
	}
	if e.DataQuality.Completeness != 1.0 {
		t.Errorf("completeness = %v, want 1.0 with all five factors available", e.DataQuality.Completeness)
	}
	if e.Consensus != core.ConsensusAcclaimed {
		t.Errorf("consensus = %s, want acclaimed for blended rating above 8", e.Consensus)
	}
}

func TestAggregator_PrimaryFailureFallsBackToBare(t *testing.T) {
	a := NewAggregator(&fakeCatalog{fail: true}, &fakeCommunity{}, &fakeStreaming{}, nil)

	m := &core.Movie{ID: 13, Title: "Forrest Gump", VoteAverage: 8.5, VoteCount: 25000}
	e := a.Enrich(context.Background(), m, allOpts())

	if e.Title != "Forrest Gump" {
		t.Error("bare fallback lost primary candidate fields")
	}
	if e.DataQuality.CatalogAvailable {
		t.Error("bare fallback must carry an empty DataQuality")
	}
	if e.DataQuality.Completeness != 0 {
		t.Errorf("completeness = %v, want 0 on bare fallback", e.DataQuality.Completeness)
	}
}

func TestAggregator_SecondaryTimeoutDegradesCompleteness(t *testing.T) {
	slow := &fakeCommunity{rec: &core.CommunityRecord{Rating: 4.0}, delay: 2 * time.Second}
	a := NewAggregator(&fakeCatalog{}, slow, &fakeStreaming{offers: []core.Offer{{ProviderName: "Hulu", Type: core.OfferAds}}}, nil)

	opts := allOpts()
	opts.Timeout = 100 * time.Millisecond // secondary budget = 50ms

	start := time.Now()
	e := a.Enrich(context.Background(), &core.Movie{ID: 1, Title: "t", VoteAverage: 7, VoteCount: 100}, opts)
	elapsed := time.Since(start)

	if e.CommunityRating != nil {
		t.Error("timed-out secondary result must be abandoned")
	}
	if !e.DataQuality.CatalogAvailable {
		t.Error("primary data lost on secondary timeout")
	}
	if e.DataQuality.Completeness >= 1 {
		t.Error("completeness should reflect the missing community source")
	}
	if elapsed > time.Second {
		t.Errorf("enrichment blocked %v on an abandoned secondary", elapsed)
	}
}

func TestAggregator_SecondaryFailureIsolated(t *testing.T) {
	a := NewAggregator(&fakeCatalog{}, &fakeCommunity{fail: true}, &fakeStreaming{fail: true}, nil)

	e := a.Enrich(context.Background(), &core.Movie{ID: 1, Title: "t", VoteAverage: 7, VoteCount: 100}, allOpts())

	if !e.DataQuality.CatalogAvailable {
		t.Error("secondary failures must not fail the overall enrichment")
	}
	if e.DataQuality.CommunityAvailable || e.DataQuality.StreamingAvailable {
		t.Error("failed secondaries must be recorded as unavailable")
	}
}

func TestAggregator_CommunityNoRecordIsNotFailure(t *testing.T) {
	// (nil, nil) means "no record for this title", not an outage.
	a := NewAggregator(&fakeCatalog{}, &fakeCommunity{rec: nil}, &fakeStreaming{}, nil)

	e := a.Enrich(context.Background(), &core.Movie{ID: 1, Title: "t", VoteAverage: 7, VoteCount: 100}, allOpts())
	if e.CommunityRating != nil {
		t.Error("no-record lookup must leave community fields unset")
	}
	if e.DataQuality.CommunityAvailable {
		t.Error("no-record lookup must not count as available data")
	}
}

func TestAggregator_CacheHitBypassesSources(t *testing.T) {
	catalog := &fakeCatalog{}
	community := &fakeCommunity{rec: &core.CommunityRecord{Rating: 4.0}}
	cache := store.NewMemoryStore()
	defer cache.Close()

	a := NewAggregator(catalog, community, &fakeStreaming{}, cache)
	m := &core.Movie{ID: 550, Title: "Fight Club", VoteAverage: 8.2, VoteCount: 5000}

	first := a.Enrich(context.Background(), m, allOpts())
	second := a.Enrich(context.Background(), m, allOpts())

	if catalog.detailCalls.Load() != 1 {
		t.Errorf("detail calls = %d, want 1 (second enrichment served from cache)", catalog.detailCalls.Load())
	}
	if first.ID != second.ID || second.CommunityRating == nil {
		t.Error("cached record does not round-trip")
	}

	// Different options hash to a different cache key.
	other := allOpts()
	other.IncludeStreaming = false
	a.Enrich(context.Background(), m, other)
	if catalog.detailCalls.Load() != 2 {
		t.Error("different options must not share a cache entry")
	}
}

func TestAggregator_BatchIsolationAndOrder(t *testing.T) {
	catalog := &fakeCatalog{}
	a := NewAggregator(catalog, &fakeCommunity{rec: &core.CommunityRecord{Rating: 3.5}}, &fakeStreaming{}, nil)
	a.BatchDelay = time.Millisecond

	movies := make([]*core.Movie, 12)
	for i := range movies {
		movies[i] = &core.Movie{ID: int64(i + 1), Title: "t", VoteAverage: 7, VoteCount: 100}
	}

	out := a.EnrichBatch(context.Background(), movies, allOpts())
	if len(out) != len(movies) {
		t.Fatalf("batch output size = %d, want %d", len(out), len(movies))
	}
	for i, e := range out {
		if e == nil {
			t.Fatalf("batch item %d is nil", i)
		}
		if e.ID != movies[i].ID {
			t.Errorf("batch output reordered: index %d holds id %d", i, e.ID)
		}
	}
}

func TestDeriveConsensus(t *testing.T) {
	r45 := 4.5
	r20 := 2.0
	tests := []struct {
		name string
		e    *core.EnrichedMovie
		want core.Consensus
	}{
		{
			"insufficient votes",
			&core.EnrichedMovie{Movie: core.Movie{VoteAverage: 9.0, VoteCount: 29}},
			core.ConsensusUnknown,
		},
		{
			"acclaimed on primary alone",
			&core.EnrichedMovie{Movie: core.Movie{VoteAverage: 8.4, VoteCount: 1000}},
			core.ConsensusAcclaimed,
		},
		{
			"community pulls blend up",
			&core.EnrichedMovie{Movie: core.Movie{VoteAverage: 7.0, VoteCount: 1000}, CommunityRating: &r45},
			core.ConsensusAcclaimed,
		},
		{
			"community pulls blend down",
			&core.EnrichedMovie{Movie: core.Movie{VoteAverage: 7.0, VoteCount: 1000}, CommunityRating: &r20},
			core.ConsensusPoor,
		},
		{
			"middling",
			&core.EnrichedMovie{Movie: core.Movie{VoteAverage: 6.8, VoteCount: 1000}},
			core.ConsensusMixed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deriveConsensus(tt.e)
			if tt.e.Consensus != tt.want {
				t.Errorf("consensus = %s, want %s", tt.e.Consensus, tt.want)
			}
		})
	}
}
