package rerank

import (
	"context"
	"strconv"
	"testing"

	"github.com/fluffy1211/moviedna/core"
)

func rec(id int64, genres []int, release, director string, score float64) *core.Recommendation {
	e := core.NewEnrichedMovie(&core.Movie{
		ID:          id,
		Title:       "m" + strconv.FormatInt(id, 10),
		ReleaseDate: release,
		GenreIDs:    genres,
	})
	e.Director = director
	r := core.NewRecommendation(e)
	r.Score = score
	return r
}

func TestDiversify_OnlyComedyForcedIn(t *testing.T) {
	// Pool: Action, Comedy, Action+Drama. Profile heavily favors Action,
	// mixed discovery. The lone Comedy must appear when 4+ slots exist.
	pool := []*core.Recommendation{
		rec(1, []int{28}, "2015-01-01", "a", 0.85),
		rec(2, []int{35}, "2012-01-01", "b", 0.30),
		rec(3, []int{28, 18}, "2018-01-01", "c", 0.80),
	}
	d := NewDiversify()
	out, err := d.Process(context.Background(), &core.RecommendContext{DiscoveryPreference: core.DiscoveryMixed}, pool)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	found := false
	for _, r := range out {
		if r.Movie.ID == 2 {
			found = true
		}
	}
	if !found {
		t.Error("only Comedy candidate not forced into the final list")
	}
}

func TestDiversify_TruncatesToMaxResults(t *testing.T) {
	var pool []*core.Recommendation
	for i := int64(1); i <= 40; i++ {
		pool = append(pool, rec(i, []int{28}, "2015-01-01", "d", 0.9-float64(i)*0.01))
	}
	d := NewDiversify()
	out, err := d.Process(context.Background(), nil, pool)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != d.MaxResults {
		t.Errorf("got %d, want %d", len(out), d.MaxResults)
	}
}

func TestDiversify_GenreSpreadGuarantee(t *testing.T) {
	// Eight high-score Action movies plus one each of five other genres
	// with middling scores. The final list must not collapse to Action.
	var pool []*core.Recommendation
	for i := int64(1); i <= 8; i++ {
		pool = append(pool, rec(i, []int{28}, "2015-01-01", "d", 0.95))
	}
	others := []int{35, 18, 27, 99, 878}
	for i, g := range others {
		pool = append(pool, rec(int64(100+i), []int{g}, "2000-01-01", "e", 0.5))
	}

	d := NewDiversify()
	out, err := d.Process(context.Background(), nil, pool)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	genres := make(map[int]bool)
	for _, r := range out {
		for _, g := range r.Movie.GenreIDs {
			genres[g] = true
		}
	}
	if len(genres) < 4 {
		t.Errorf("final list covers %d genres, diversity guarantee violated", len(genres))
	}
}

func TestDiversify_AdventurousBonusReorders(t *testing.T) {
	pool := []*core.Recommendation{
		rec(1, []int{28}, "2015-01-01", "a", 0.80),
		rec(2, []int{35}, "1990-01-01", "b", 0.78), // new genre+decade+director under adventurous
	}
	d := NewDiversify()
	out, err := d.Process(context.Background(), &core.RecommendContext{DiscoveryPreference: core.DiscoveryAdventurous}, pool)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// both get bonuses (both introduce novelty), but id 2's labels must record it
	var bonus *core.Recommendation
	for _, r := range out {
		if r.Movie.ID == 2 {
			bonus = r
		}
	}
	if bonus == nil {
		t.Fatal("candidate 2 missing")
	}
	if _, ok := bonus.Labels["diversity_bonus"]; !ok {
		t.Error("adventurous diversity bonus not labeled")
	}
	if bonus.Score <= 0.78 {
		t.Errorf("score = %v, want raised by diversity bonus", bonus.Score)
	}
}

func TestDiversify_BackfillWhenGreedyUnderfills(t *testing.T) {
	// All identical attributes and low scores: after the minimum-count
	// admissions nothing qualifies, so backfill must still reach the cap.
	var pool []*core.Recommendation
	for i := int64(1); i <= 20; i++ {
		pool = append(pool, rec(i, []int{28}, "2015-01-01", "same", 0.2))
	}
	d := NewDiversify()
	out, err := d.Process(context.Background(), nil, pool)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != d.MaxResults {
		t.Errorf("got %d, want backfill up to %d", len(out), d.MaxResults)
	}
}

func TestDiversify_EmptyInput(t *testing.T) {
	d := NewDiversify()
	out, err := d.Process(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d items from empty input", len(out))
	}
}
