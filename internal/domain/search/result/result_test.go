package result

import (
	"testing"

	"github.com/envie-local/envie/internal/domain/establishment"
)

func TestNew(t *testing.T) {
	e := &establishment.Establishment{ID: "est-1", Name: "BattleKart"}
	r := New(e, 180, 210, 10, true, true, []string{"karting"})

	if r.Establishment().ID != "est-1" {
		t.Errorf("Establishment().ID = %q", r.Establishment().ID)
	}
	if r.ThematicScore() != 180 {
		t.Errorf("ThematicScore() = %f", r.ThematicScore())
	}
	if r.FinalScore() != 210 {
		t.Errorf("FinalScore() = %f", r.FinalScore())
	}
	if r.DistanceKm() != 10 || !r.HasDistance() {
		t.Errorf("distance = %f (known=%v)", r.DistanceKm(), r.HasDistance())
	}
	if !r.IsOpen() {
		t.Error("IsOpen() = false")
	}
	if len(r.MatchedTags()) != 1 || r.MatchedTags()[0] != "karting" {
		t.Errorf("MatchedTags() = %v", r.MatchedTags())
	}
}
