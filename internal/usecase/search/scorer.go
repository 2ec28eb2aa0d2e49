package search

import (
	"strings"
	"time"

	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
	"github.com/envie-local/envie/internal/domain/search/result"
)

// genericCravingTags are tag phrases too vague to drive ranking on their own.
var genericCravingTags = []string{
	"envie de decouvrir",
	"envie de sortir",
	"envie de detente",
}

// FieldWeights holds the points awarded per keyword class for one source.
type FieldWeights struct {
	Primary float64 `yaml:"primary"`
	Context float64 `yaml:"context"`
	Other   float64 `yaml:"other"`
}

// For returns the weight of a keyword class.
func (w FieldWeights) For(c keyword.Class) float64 {
	switch c {
	case keyword.Primary:
		return w.Primary
	case keyword.Context:
		return w.Context
	default:
		return w.Other
	}
}

// Weights is the scoring table.
type Weights struct {
	// TagMultiplier multiplies the tag weight ("poids").
	TagMultiplier FieldWeights `yaml:"tag_multiplier"`
	Name          FieldWeights `yaml:"name"`
	Description   FieldWeights `yaml:"description"`
	Activity      FieldWeights `yaml:"activity"`
	// GenericTagCap clamps the poids of generic craving tags.
	GenericTagCap float64 `yaml:"generic_tag_cap"`
	OpenNowBonus  float64 `yaml:"open_now_bonus"`
	// ProximityMax is the bonus at distance 0, decaying by ProximityDecayPerKm.
	ProximityMax        float64 `yaml:"proximity_max"`
	ProximityDecayPerKm float64 `yaml:"proximity_decay_per_km"`
}

// DefaultWeights returns the production scoring table.
func DefaultWeights() Weights {
	return Weights{
		TagMultiplier:       FieldWeights{Primary: 10, Context: 1, Other: 10},
		Name:                FieldWeights{Primary: 50, Context: 5, Other: 20},
		Description:         FieldWeights{Primary: 30, Context: 3, Other: 10},
		Activity:            FieldWeights{Primary: 100, Context: 10, Other: 25},
		GenericTagCap:       3,
		OpenNowBonus:        15,
		ProximityMax:        50,
		ProximityDecayPerKm: 2,
	}
}

// Scorer computes relevance scores. It is stateless and safe for concurrent use.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer with the given table.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

type classified struct {
	kw    string
	class keyword.Class
}

func classify(ks keyword.KeywordSet) []classified {
	out := make([]classified, len(ks.All))
	for i, kw := range ks.All {
		out[i] = classified{kw: kw, class: ks.ClassOf(kw)}
	}
	return out
}

// tally accumulates points, keeping context points apart: they only count
// once some non-context keyword matched.
type tally struct {
	content    float64
	contextual float64
}

func (t *tally) add(c keyword.Class, pts float64) {
	if c == keyword.Context {
		t.contextual += pts
		return
	}
	t.content += pts
}

func (t *tally) thematic() float64 {
	if t.content <= 0 {
		return 0
	}
	return t.content + t.contextual
}

// Score evaluates e against ks. origin may be nil; now drives the open-now bonus.
func (s *Scorer) Score(
	e *establishment.Establishment, ks keyword.KeywordSet, origin *geo.Coordinates, now time.Time,
) result.Scored {
	return s.score(e, classify(ks), origin, now)
}

func (s *Scorer) score(
	e *establishment.Establishment, kws []classified, origin *geo.Coordinates, now time.Time,
) result.Scored {
	var t tally

	matched := s.scoreTags(e.Tags, kws, &t)

	name := keyword.Normalize(e.Name)
	desc := keyword.Normalize(e.Description)
	activities := make([]string, 0, len(e.Activities))
	for _, a := range e.Activities {
		if n := keyword.Normalize(a); n != "" {
			activities = append(activities, n)
		}
	}

	for _, k := range kws {
		if name != "" && strings.Contains(name, k.kw) {
			t.add(k.class, s.w.Name.For(k.class))
		}
		if desc != "" && strings.Contains(desc, k.kw) {
			t.add(k.class, s.w.Description.For(k.class))
		}
		for _, a := range activities {
			if overlaps(a, k.kw) {
				t.add(k.class, s.w.Activity.For(k.class))
				break
			}
		}
	}

	thematic := t.thematic()

	isOpen := e.OpeningHours.IsOpenAt(now)
	if thematic > 0 && isOpen {
		thematic += s.w.OpenNowBonus
	}

	var distance float64
	hasDistance := origin != nil && e.Coordinates != nil
	if hasDistance {
		distance = geo.DistanceKm(*origin, *e.Coordinates)
	}

	final := thematic
	if thematic > 0 && hasDistance {
		final += max(0, s.w.ProximityMax-distance*s.w.ProximityDecayPerKm)
	}

	return result.New(e, thematic, final, distance, hasDistance, isOpen, matched)
}

// scoreTags adds tag points and returns the tags that contributed, deduplicated.
func (s *Scorer) scoreTags(tags []establishment.Tag, kws []classified, t *tally) []string {
	var matched []string
	seen := make(map[string]struct{})

	for _, tag := range tags {
		text := keyword.Normalize(tag.Tag)
		if text == "" {
			continue
		}
		poids := max(tag.Poids, 0)
		if isGenericCraving(text) {
			poids = min(poids, s.w.GenericTagCap)
		}

		for _, k := range kws {
			if !overlaps(text, k.kw) {
				continue
			}
			pts := poids * s.w.TagMultiplier.For(k.class)
			if pts <= 0 {
				continue
			}
			t.add(k.class, pts)
			if _, ok := seen[tag.Tag]; !ok {
				seen[tag.Tag] = struct{}{}
				matched = append(matched, tag.Tag)
			}
		}
	}
	return matched
}

// overlaps reports whether either string contains the other.
func overlaps(text, kw string) bool {
	return strings.Contains(text, kw) || strings.Contains(kw, text)
}

func isGenericCraving(text string) bool {
	for _, g := range genericCravingTags {
		if strings.Contains(text, g) {
			return true
		}
	}
	return false
}
