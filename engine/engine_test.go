package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/source"
)

// fakeCatalog serves a fixed pool for every query and full details for
// every movie in it.
type fakeCatalog struct {
	movies []*core.Movie
}

func (f *fakeCatalog) Query(ctx context.Context, _ source.Filter) (*source.Result, error) {
	return &source.Result{Results: f.movies, TotalPages: 1}, nil
}

func (f *fakeCatalog) Details(ctx context.Context, id int64) (*core.EnrichedMovie, error) {
	for _, m := range f.movies {
		if m.ID == id {
			e := core.NewEnrichedMovie(m)
			e.Runtime = 120
			e.Director = "director-" + fmt.Sprint(id)
			e.MainCast = []string{"lead"}
			e.Keywords = []string{"heist"}
			e.GenreNames = []string{"Action"}
			return e, nil
		}
	}
	return nil, core.NewDomainError(core.ModuleEnrich, core.ErrorCodeUnavailable, "unknown movie")
}

type fakeCommunity struct{}

func (fakeCommunity) Lookup(ctx context.Context, title string, year int) (*core.CommunityRecord, error) {
	return &core.CommunityRecord{Rating: 4.0, Watches: 2_000_000}, nil
}

type fakeStreaming struct{}

func (fakeStreaming) Availability(ctx context.Context, id int64, country string) ([]core.Offer, error) {
	return []core.Offer{{ProviderName: "Netflix", Type: core.OfferFlatrate}}, nil
}

func demoPool(n int) []*core.Movie {
	genres := [][]int{{28}, {35}, {18}, {27}, {878}}
	out := make([]*core.Movie, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &core.Movie{
			ID:               int64(i + 1),
			Title:            fmt.Sprintf("movie %d", i+1),
			OriginalLanguage: "en",
			ReleaseDate:      fmt.Sprintf("%d-06-01", 1980+i),
			GenreIDs:         genres[i%len(genres)],
			VoteAverage:      6.0 + float64(i%4),
			VoteCount:        500 + i*10,
			Popularity:       40 + float64(i),
		})
	}
	return out
}

func newTestEngine(movies []*core.Movie) *Engine {
	e := New(Deps{
		Catalog:   &fakeCatalog{movies: movies},
		Community: fakeCommunity{},
		Streaming: fakeStreaming{},
	})
	// one small query instead of the full default plan
	e.Collector.Queries = []source.Query{{Name: "popular", Filter: source.Filter{List: "popular"}}}
	return e
}

func TestEngine_RecommendEndToEnd(t *testing.T) {
	e := newTestEngine(demoPool(20))
	rctx := &core.RecommendContext{
		UserID: "u1",
		Preferences: core.Preferences{
			FavoriteGenres:  []int{28, 35},
			RatingThreshold: 6.0,
		},
	}

	recs, stats, err := e.Recommend(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("Recommend() returned no results")
	}
	if len(recs) > e.Ranker.MaxResults {
		t.Errorf("returned %d results, cap is %d", len(recs), e.Ranker.MaxResults)
	}

	for _, r := range recs {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("movie %d score %v out of [0,1]", r.Movie.ID, r.Score)
		}
		if r.Confidence <= 0 || r.Confidence > 1 {
			t.Errorf("movie %d confidence %v out of (0,1]", r.Movie.ID, r.Confidence)
		}
		if len(r.Reasons) == 0 {
			t.Errorf("movie %d has no reasons", r.Movie.ID)
		}
		if r.WatchPriority == "" {
			t.Errorf("movie %d has no priority", r.Movie.ID)
		}
	}

	if stats.Collect == nil || stats.Collect.Succeeded != 1 {
		t.Errorf("collect stats = %+v", stats.Collect)
	}
	if stats.CandidatesAfterFilter == 0 || stats.Scored == 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Returned != len(recs) {
		t.Errorf("stats.Returned = %d, want %d", stats.Returned, len(recs))
	}
}

func TestEngine_InvalidPreferencesPropagate(t *testing.T) {
	e := newTestEngine(demoPool(5))
	rctx := &core.RecommendContext{
		UserID:      "u1",
		Preferences: core.Preferences{RatingThreshold: 42},
	}

	_, _, err := e.Recommend(context.Background(), rctx)
	if err == nil {
		t.Fatal("want error for out-of-range threshold")
	}
	if !core.IsInvalidInput(err) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestEngine_ProfilePersistsAcrossRequests(t *testing.T) {
	e := newTestEngine(demoPool(10))
	rctx := &core.RecommendContext{
		UserID:      "u1",
		Preferences: core.Preferences{FavoriteGenres: []int{28}},
	}
	if _, _, err := e.Recommend(context.Background(), rctx); err != nil {
		t.Fatalf("first Recommend() error = %v", err)
	}
	if _, _, err := e.Recommend(context.Background(), rctx); err != nil {
		t.Fatalf("second Recommend() error = %v", err)
	}

	p := e.Profiles.GetOrCreate("u1")
	if got := p.GenreAffinity[28]; got < 0.39 {
		t.Errorf("affinity after two requests = %v, want reinforced >= 0.4", got)
	}
}

func TestEngine_RelaxedFallbackWhenEverythingFiltered(t *testing.T) {
	// All catalog details report 120-minute runtimes; a 30-minute window
	// drops every candidate after scoring, so the relaxed fallback must
	// engage rather than return an empty list.
	e := newTestEngine(demoPool(10))
	rctx := &core.RecommendContext{
		UserID:        "u1",
		Preferences:   core.Preferences{FavoriteGenres: []int{28}},
		AvailableTime: 30,
	}

	recs, stats, err := e.Recommend(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("recommendation surface returned empty instead of falling back")
	}
	if !stats.UsedRelaxedFallback {
		t.Error("stats did not flag the relaxed fallback")
	}
	for _, r := range recs {
		if len(r.Reasons) == 0 || r.Reasons[0].Type != core.ReasonFallback {
			t.Errorf("movie %d missing the generic fallback reason", r.Movie.ID)
		}
		if r.WatchPriority != core.PriorityLow {
			t.Errorf("movie %d priority = %v, want low", r.Movie.ID, r.WatchPriority)
		}
	}
	// top-K by raw rating, descending
	for i := 1; i < len(recs); i++ {
		if recs[i].Movie.VoteAverage > recs[i-1].Movie.VoteAverage {
			t.Error("fallback list not ordered by raw rating")
			break
		}
	}
}

func TestEngine_DiscoveryInference(t *testing.T) {
	tests := []struct {
		name  string
		prefs core.Preferences
		want  core.Discovery
	}{
		{"high threshold means safe", core.Preferences{RatingThreshold: 8.0}, core.DiscoverySafe},
		{"broad genres means adventurous", core.Preferences{FavoriteGenres: []int{28, 35, 18, 27, 878}}, core.DiscoveryAdventurous},
		{"excited mood means adventurous", core.Preferences{MoodPreferences: []string{"excited"}}, core.DiscoveryAdventurous},
		{"default is mixed", core.Preferences{RatingThreshold: 6.0}, core.DiscoveryMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferDiscovery(tt.prefs); got != tt.want {
				t.Errorf("inferDiscovery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_ExplicitDiscoveryNotOverridden(t *testing.T) {
	e := newTestEngine(demoPool(10))
	rctx := &core.RecommendContext{
		UserID:              "u1",
		Preferences:         core.Preferences{RatingThreshold: 8.0}, // would infer safe
		DiscoveryPreference: core.DiscoveryAdventurous,
	}
	if _, _, err := e.Recommend(context.Background(), rctx); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rctx.DiscoveryPreference != core.DiscoveryAdventurous {
		t.Errorf("discovery preference overridden to %v", rctx.DiscoveryPreference)
	}
}

func TestEngine_CountryDefault(t *testing.T) {
	e := newTestEngine(demoPool(5))
	rctx := &core.RecommendContext{UserID: "u1"}
	if _, _, err := e.Recommend(context.Background(), rctx); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rctx.Country != "US" {
		t.Errorf("country = %q, want default US", rctx.Country)
	}
}
