package search

import (
	"testing"
	"time"

	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
)

// friday evening, 2026-10-16 20:00 UTC
var friday = time.Date(2026, time.October, 16, 20, 0, 0, 0, time.UTC)

var dijon = geo.Coordinates{Lat: 47.3220, Lng: 5.0415}

func extract(t *testing.T, text string) keyword.KeywordSet {
	t.Helper()
	return keyword.NewExtractor(keyword.DefaultOptions()).Extract(text)
}

func closedAllWeek() establishment.Hours {
	h := establishment.Hours{}
	for _, d := range []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
	} {
		h[establishment.WeekdayName(d)] = establishment.Day{IsOpen: false}
	}
	return h
}

func TestScore_KartingActivity(t *testing.T) {
	e := &establishment.Establishment{
		ID:         "battlekart",
		Name:       "BattleKart Dijon",
		Activities: []string{"karting"},
		Tags:       []establishment.Tag{{Tag: "karting électrique", Poids: 8}},
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "faire du kart ce soir"), nil, friday)

	// name 50 + activity 100 + tag 8*10 + open 15
	if s.ThematicScore() <= 150 {
		t.Fatalf("thematic = %f, want > 150", s.ThematicScore())
	}
	if s.ThematicScore() != 245 {
		t.Errorf("thematic = %f, want 245", s.ThematicScore())
	}
	if len(s.MatchedTags()) != 1 || s.MatchedTags()[0] != "karting électrique" {
		t.Errorf("matched tags = %v", s.MatchedTags())
	}
}

func TestScore_TagBeatsUnrelated(t *testing.T) {
	ks := extract(t, "boire un verre ce soir")
	cocktails := &establishment.Establishment{
		Name: "Le Comptoir",
		Tags: []establishment.Tag{{Tag: "envie de boire un bon cocktail", Poids: 10}},
	}
	bowling := &establishment.Establishment{
		Name:       "Bowling du Lac",
		Activities: []string{"bowling"},
		Tags:       []establishment.Tag{{Tag: "bowling", Poids: 10}},
	}
	sc := NewScorer(DefaultWeights())

	a := sc.Score(cocktails, ks, nil, friday)
	b := sc.Score(bowling, ks, nil, friday)

	// 10*10 for "boire" + open bonus
	if a.ThematicScore() != 115 {
		t.Errorf("cocktail bar thematic = %f, want 115", a.ThematicScore())
	}
	if a.FinalScore() <= b.FinalScore() {
		t.Errorf("cocktail bar %f must beat bowling %f", a.FinalScore(), b.FinalScore())
	}
}

func TestScore_GenericCravingTagClamped(t *testing.T) {
	e := &establishment.Establishment{
		Name: "Parc",
		Tags: []establishment.Tag{{Tag: "Envie de découvrir", Poids: 10}},
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "decouvrir un musee"), nil, friday)
	if s.ThematicScore() != 0 {
		t.Fatalf("stop-word only match must not score, got %f", s.ThematicScore())
	}

	s = NewScorer(DefaultWeights()).Score(e, keyword.KeywordSet{All: []string{"envie"}}, nil, friday)
	// clamped poids 3 * 10 + open bonus 15
	if s.ThematicScore() != 45 {
		t.Fatalf("thematic = %f, want 45", s.ThematicScore())
	}
}

func TestScore_ContextOnlyQueryScoresZero(t *testing.T) {
	e := &establishment.Establishment{
		Name:        "Ce Soir Bar",
		Description: "ouvert ce soir et demain",
		Tags:        []establishment.Tag{{Tag: "soirée", Poids: 9}},
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "sortir ce soir"), &dijon, friday)
	if s.ThematicScore() != 0 || s.FinalScore() != 0 {
		t.Fatalf("thematic=%f final=%f, want 0", s.ThematicScore(), s.FinalScore())
	}
}

func TestScore_ContextAddsOnceRelevant(t *testing.T) {
	e := &establishment.Establishment{
		Name:         "Bar ce soir",
		OpeningHours: closedAllWeek(),
	}
	withCtx := NewScorer(DefaultWeights()).Score(e, extract(t, "bar ce soir"), nil, friday)
	without := NewScorer(DefaultWeights()).Score(e, extract(t, "bar"), nil, friday)

	// bar 50 + ce 5 + soir 5
	if withCtx.ThematicScore() != 60 {
		t.Errorf("thematic = %f, want 60", withCtx.ThematicScore())
	}
	if without.ThematicScore() != 50 {
		t.Errorf("thematic = %f, want 50", without.ThematicScore())
	}
}

func TestScore_OpenNowBonusRequiresRelevance(t *testing.T) {
	irrelevant := &establishment.Establishment{Name: "Piscine municipale"}
	s := NewScorer(DefaultWeights()).Score(irrelevant, extract(t, "bowling"), &dijon, friday)
	if !s.IsOpen() {
		t.Fatal("missing hours count as open")
	}
	if s.ThematicScore() != 0 || s.FinalScore() != 0 {
		t.Fatalf("open but irrelevant: thematic=%f final=%f", s.ThematicScore(), s.FinalScore())
	}

	relevant := &establishment.Establishment{Name: "Bowling Star"}
	open := NewScorer(DefaultWeights()).Score(relevant, extract(t, "bowling"), nil, friday)
	relevant.OpeningHours = closedAllWeek()
	closed := NewScorer(DefaultWeights()).Score(relevant, extract(t, "bowling"), nil, friday)
	if open.ThematicScore()-closed.ThematicScore() != 15 {
		t.Errorf("open bonus = %f, want 15", open.ThematicScore()-closed.ThematicScore())
	}
}

func TestScore_ProximityBonus(t *testing.T) {
	e := &establishment.Establishment{
		Name:         "Bowling",
		Coordinates:  &geo.Coordinates{Lat: dijon.Lat, Lng: dijon.Lng},
		OpeningHours: closedAllWeek(),
	}
	sc := NewScorer(DefaultWeights())
	ks := extract(t, "bowling")

	here := sc.Score(e, ks, &dijon, friday)
	if here.FinalScore() != here.ThematicScore()+50 {
		t.Errorf("at distance 0: final=%f thematic=%f", here.FinalScore(), here.ThematicScore())
	}

	far := *e
	far.Coordinates = &geo.Coordinates{Lat: 48.8566, Lng: 2.3522}
	s := sc.Score(&far, ks, &dijon, friday)
	if s.FinalScore() != s.ThematicScore() {
		t.Errorf("beyond 25km: final=%f thematic=%f", s.FinalScore(), s.ThematicScore())
	}
	if !s.HasDistance() || s.DistanceKm() < 250 {
		t.Errorf("distance = %f (known=%v)", s.DistanceKm(), s.HasDistance())
	}

	noOrigin := sc.Score(e, ks, nil, friday)
	if noOrigin.HasDistance() || noOrigin.DistanceKm() != 0 || noOrigin.FinalScore() != noOrigin.ThematicScore() {
		t.Errorf("without origin: %+v", noOrigin)
	}

	noCoords := *e
	noCoords.Coordinates = nil
	s = sc.Score(&noCoords, ks, &dijon, friday)
	if s.HasDistance() || s.FinalScore() != s.ThematicScore() {
		t.Errorf("without coordinates: final=%f thematic=%f", s.FinalScore(), s.ThematicScore())
	}
}

func TestScore_ProximityRequiresRelevance(t *testing.T) {
	e := &establishment.Establishment{Name: "Cinéma", Coordinates: &dijon}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "bowling"), &dijon, friday)
	if s.FinalScore() != 0 {
		t.Fatalf("irrelevant establishment got final=%f", s.FinalScore())
	}
	if s.DistanceKm() != 0 || !s.HasDistance() {
		t.Errorf("distance = %f (known=%v)", s.DistanceKm(), s.HasDistance())
	}
}

func TestScore_AccentInsensitive(t *testing.T) {
	e := &establishment.Establishment{
		Name:        "Grand Théâtre",
		Description: "Pièces de THÉÂTRE contemporain",
		Activities:  []string{"Théâtre"},
		OpeningHours: closedAllWeek(),
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "theatre"), nil, friday)
	// name 50 + description 30 + activity 100
	if s.ThematicScore() != 180 {
		t.Fatalf("thematic = %f, want 180", s.ThematicScore())
	}
}

func TestScore_ActivityCountsOncePerKeyword(t *testing.T) {
	e := &establishment.Establishment{
		Name:         "Complexe",
		Activities:   []string{"laser game", "laser tag", "laser maze"},
		OpeningHours: closedAllWeek(),
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "laser"), nil, friday)
	if s.ThematicScore() != 100 {
		t.Fatalf("thematic = %f, want 100", s.ThematicScore())
	}
}

func TestScore_MatchedTagsDeduplicated(t *testing.T) {
	e := &establishment.Establishment{
		Name: "Pub",
		Tags: []establishment.Tag{
			{Tag: "bière artisanale", Poids: 5},
			{Tag: "bière artisanale", Poids: 5},
			{Tag: "terrasse", Poids: 5},
		},
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "biere artisanale"), nil, friday)
	if len(s.MatchedTags()) != 1 || s.MatchedTags()[0] != "bière artisanale" {
		t.Fatalf("matched tags = %v", s.MatchedTags())
	}
}

func TestScore_NegativeWeightIgnored(t *testing.T) {
	e := &establishment.Establishment{
		Name:         "Bowling",
		Tags:         []establishment.Tag{{Tag: "bowling", Poids: -5}},
		OpeningHours: closedAllWeek(),
	}
	s := NewScorer(DefaultWeights()).Score(e, extract(t, "bowling"), nil, friday)
	if s.ThematicScore() != 50 {
		t.Fatalf("thematic = %f, want 50", s.ThematicScore())
	}
	if len(s.MatchedTags()) != 0 {
		t.Errorf("non-contributing tag reported: %v", s.MatchedTags())
	}
}

func TestScore_Monotonic(t *testing.T) {
	ks := extract(t, "manger une pizza ce soir")
	sc := NewScorer(DefaultWeights())

	base := establishment.Establishment{Name: "Chez Luigi", Description: "cuisine du soir"}
	variants := []func(e *establishment.Establishment){
		func(e *establishment.Establishment) {
			e.Tags = append(e.Tags, establishment.Tag{Tag: "pizza au feu de bois", Poids: 7})
		},
		func(e *establishment.Establishment) { e.Name += " pizzeria" },
		func(e *establishment.Establishment) { e.Activities = append(e.Activities, "manger sur place") },
		func(e *establishment.Establishment) { e.Description += ", ce soir" },
	}

	baseScored := sc.Score(&base, ks, &dijon, friday)
	prev := baseScored.ThematicScore()
	cur := base
	for i, apply := range variants {
		apply(&cur)
		curScored := sc.Score(&cur, ks, &dijon, friday)
		next := curScored.ThematicScore()
		if next < prev {
			t.Errorf("variant %d decreased thematic score: %f -> %f", i, prev, next)
		}
		prev = next
	}
}
