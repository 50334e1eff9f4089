package bot

import (
	"testing"

	"github.com/wricardo/tulip-mania/game/engine"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// botTable seats a bot of the given profile in chair 0, which acts and holds
// the gavel first
func botTable(t *testing.T, profile engine.Profile) *engine.GameState {
	t.Helper()
	gs := engine.Apply(nil, engine.StartGame{
		Seed: 1,
		Seats: []engine.Seat{
			{Name: "bot", AI: true, Profile: profile},
			{Name: "human"},
		},
	})
	if gs == nil {
		t.Fatal("Expected a dealt game")
	}
	return gs
}

func give(gs *engine.GameState, v engine.Variety, n int) {
	gs.Parties[0].Inventory[v] += n
	gs.Market.Supply[v] -= n
}

func expectAction(t *testing.T, got engine.Action, kind engine.ActionKind, v engine.Variety) {
	t.Helper()
	pa, ok := got.(engine.PerformAction)
	if !ok {
		t.Fatalf("Expected %s %s, got %T", kind, v, got)
	}
	if pa.Kind != kind || (kind.NeedsVariety() && pa.Variety != v) {
		t.Errorf("Expected %s %s, got %s %s", kind, v, pa.Kind, pa.Variety)
	}
}

func expectEndTurn(t *testing.T, got engine.Action) {
	t.Helper()
	if _, ok := got.(engine.EndTurn); !ok {
		t.Errorf("Expected end turn, got %#v", got)
	}
}

func TestSurvivalSellsMostValuableFirst(t *testing.T) {
	gs := botTable(t, engine.Balanced)
	gs.Parties[0].Cash = 30
	give(gs, engine.Common, 2)
	give(gs, engine.Viceroy, 1)

	expectAction(t, Decide(gs, fixedRand(0)), engine.Sell, engine.Viceroy)
}

func TestSurvivalBorrowsWithinAppetite(t *testing.T) {
	gs := botTable(t, engine.Aggressive)
	gs.Parties[0].Cash = 30
	gs.Market.Heat = 3
	expectAction(t, Decide(gs, fixedRand(0)), engine.Loan, engine.Common)

	conservative := botTable(t, engine.Conservative)
	conservative.Parties[0].Cash = 30
	conservative.Market.Heat = 3
	expectEndTurn(t, Decide(conservative, fixedRand(0)))
}

func TestSurvivalDuringPlagueBorrows(t *testing.T) {
	gs := botTable(t, engine.Balanced)
	gs.Parties[0].Cash = 10
	gs.Market.Heat = 4
	gs.SellingForbidden = true
	give(gs, engine.Augustus, 1)

	expectAction(t, Decide(gs, fixedRand(0)), engine.Loan, engine.Common)
}

func TestProfitTaking(t *testing.T) {
	gs := botTable(t, engine.Conservative)
	gs.Market.Heat = 6
	give(gs, engine.Common, 1)

	expectAction(t, Decide(gs, fixedRand(0)), engine.Sell, engine.Common)
}

func TestShortingPicksAffordableVariety(t *testing.T) {
	gs := botTable(t, engine.Aggressive)
	gs.Market.Heat = 6
	gs.Parties[0].Cash = 1000

	expectAction(t, Decide(gs, fixedRand(0)), engine.Short, engine.Viceroy)
}

func TestShortingRespectsPositionLimit(t *testing.T) {
	gs := botTable(t, engine.Balanced)
	gs.Market.Heat = 9
	gs.Parties[0].Cash = 5000
	gs.Parties[0].Shorts[engine.Viceroy] = 1

	expectAction(t, Decide(gs, fixedRand(0)), engine.Short, engine.Common)
}

func TestBuyingKeepsABuffer(t *testing.T) {
	gs := botTable(t, engine.Aggressive)
	// Augustus costs 100 and needs 110 in hand
	expectAction(t, Decide(gs, fixedRand(0.5)), engine.Buy, engine.Viceroy)
}

func TestConservativeHesitates(t *testing.T) {
	gs := botTable(t, engine.Conservative)
	expectEndTurn(t, Decide(gs, fixedRand(0.6)))
	expectAction(t, Decide(gs, fixedRand(0.1)), engine.Buy, engine.Viceroy)
}

func TestRepayWithSpareCash(t *testing.T) {
	gs := botTable(t, engine.Conservative)
	gs.Market.Heat = 4
	gs.Parties[0].Cash = 1300
	gs.Parties[0].Loans = 1

	expectAction(t, Decide(gs, fixedRand(0)), engine.Repay, engine.Common)

	aggressive := botTable(t, engine.Aggressive)
	aggressive.Market.Heat = 9
	aggressive.Parties[0].Cash = 1300
	aggressive.Parties[0].Loans = 1
	aggressive.Parties[0].Shorts = engine.Counts{3, 3, 3}
	expectEndTurn(t, Decide(aggressive, fixedRand(0)))
}

func TestDecideOutsideTurn(t *testing.T) {
	gs := botTable(t, engine.Aggressive)
	gs.Phase = engine.PhaseRoundEnd
	expectEndTurn(t, Decide(gs, fixedRand(0)))
}

func TestGavelDecision(t *testing.T) {
	tests := []struct {
		profile engine.Profile
		heat    int
		rng     float64
		want    bool
	}{
		{engine.Conservative, 6, 0, false},
		{engine.Conservative, 2, 0, true},
		{engine.Conservative, 4, 0.9, false},
		{engine.Aggressive, 3, 0, true},
		{engine.Aggressive, 9, 0, true},
		{engine.Aggressive, 10, 0.9, false},
		{engine.Balanced, 7, 0.7, true},
		{engine.Balanced, 7, 0.3, false},
		{engine.Balanced, 8, 0.9, false},
	}
	for _, tt := range tests {
		gs := botTable(t, tt.profile)
		gs.Market.Heat = tt.heat
		if got := GavelDecision(gs, fixedRand(tt.rng)); got != tt.want {
			t.Errorf("%s at heat %d (rng %.1f): expected %v, got %v", tt.profile, tt.heat, tt.rng, tt.want, got)
		}
	}
}

func TestTuningForUnknownProfile(t *testing.T) {
	if TuningFor("") != Profiles[engine.Balanced] {
		t.Error("Expected an untagged party to play Balanced")
	}
}
