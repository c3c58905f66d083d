package profile

import (
	"math"
	"testing"

	"github.com/fluffy1211/moviedna/core"
)

func TestStore_GetOrCreateLazy(t *testing.T) {
	s := NewStore()
	p := s.GetOrCreate("u1")
	if p == nil || p.UserID != "u1" {
		t.Fatalf("GetOrCreate() = %+v", p)
	}
	if len(p.GenreAffinity) != 0 || len(p.ViewingHistory) != 0 {
		t.Error("fresh profile not empty")
	}
	if s.GetOrCreate("u1") != p {
		t.Error("second GetOrCreate returned a different profile")
	}
}

func TestStore_ApplyPreferencesBuildsAffinity(t *testing.T) {
	s := NewStore()
	prefs := core.Preferences{
		FavoriteGenres:   []int{28, 35},
		PreferredDecades: []string{"1990s"},
		RatingThreshold:  7.0,
	}
	p, err := s.ApplyPreferences("u1", prefs)
	if err != nil {
		t.Fatalf("ApplyPreferences() error = %v", err)
	}
	if got := p.GenreAffinity[28]; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("genre affinity = %v, want 0.2", got)
	}
	if got := p.DecadeAffinity["1990s"]; math.Abs(got-0.15) > 1e-9 {
		t.Errorf("decade affinity = %v, want 0.15", got)
	}
	if p.Preferences.RatingThreshold != 7.0 {
		t.Errorf("threshold = %v", p.Preferences.RatingThreshold)
	}
}

func TestStore_RepeatedApplyReinforcesAndSaturates(t *testing.T) {
	s := NewStore()
	prefs := core.Preferences{FavoriteGenres: []int{28}}
	for i := 0; i < 10; i++ {
		if _, err := s.ApplyPreferences("u1", prefs); err != nil {
			t.Fatalf("ApplyPreferences() error = %v", err)
		}
	}
	p := s.GetOrCreate("u1")
	if got := p.GenreAffinity[28]; got != 1.0 {
		t.Errorf("affinity after 10 applies = %v, want saturated 1.0", got)
	}
}

func TestStore_ApplyPreferencesValidation(t *testing.T) {
	tests := []struct {
		name  string
		prefs core.Preferences
	}{
		{"threshold above range", core.Preferences{RatingThreshold: 10.5}},
		{"threshold below range", core.Preferences{RatingThreshold: -1}},
		{"non-positive genre id", core.Preferences{FavoriteGenres: []int{0}}},
		{"malformed decade", core.Preferences{PreferredDecades: []string{"nineties"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			_, err := s.ApplyPreferences("u1", tt.prefs)
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
			// rejected input must not leave a half-updated profile behind
			if p := s.GetOrCreate("u1"); len(p.GenreAffinity) != 0 {
				t.Error("failed apply mutated the stored profile")
			}
		})
	}
}

func TestStore_ApplyDoesNotMutateOldSnapshot(t *testing.T) {
	s := NewStore()
	before, err := s.ApplyPreferences("u1", core.Preferences{FavoriteGenres: []int{28}})
	if err != nil {
		t.Fatalf("ApplyPreferences() error = %v", err)
	}
	if _, err := s.ApplyPreferences("u1", core.Preferences{FavoriteGenres: []int{28, 35}}); err != nil {
		t.Fatalf("ApplyPreferences() error = %v", err)
	}
	// a reader holding the earlier snapshot must not observe the update
	if _, ok := before.GenreAffinity[35]; ok {
		t.Error("earlier snapshot mutated in place")
	}
}

func TestStore_AddViewingHistoryDedup(t *testing.T) {
	s := NewStore()
	s.AddViewingHistory("u1", 550, 13)
	p := s.AddViewingHistory("u1", 13, 680)
	want := []int64{550, 13, 680}
	if len(p.ViewingHistory) != len(want) {
		t.Fatalf("history = %v, want %v", p.ViewingHistory, want)
	}
	for i, id := range want {
		if p.ViewingHistory[i] != id {
			t.Errorf("history[%d] = %d, want %d", i, p.ViewingHistory[i], id)
		}
	}
}
