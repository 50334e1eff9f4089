package bot

import (
	"testing"
	"time"

	"github.com/wricardo/tulip-mania/game/engine"
)

func allBots(n int) []engine.Seat {
	seats := make([]engine.Seat, 0, n)
	profiles := []engine.Profile{engine.Conservative, engine.Balanced, engine.Aggressive}
	for i := 0; i < n; i++ {
		seats = append(seats, engine.Seat{Name: "bot", AI: true, Profile: profiles[i%len(profiles)]})
	}
	return seats
}

func TestPolicyWaitsForHumans(t *testing.T) {
	gs := engine.Apply(nil, engine.StartGame{PartyCount: 3, Seed: 2})
	policy := NewPolicy(2)

	if !NeedsHuman(gs, false) {
		t.Error("Expected the human in seat 0 to be on the clock")
	}
	if _, ok := policy.Next(gs, false); ok {
		t.Error("Expected no bot move on a human turn")
	}

	gs = engine.Apply(gs, engine.EndTurn{})
	if NeedsHuman(gs, false) {
		t.Error("Expected a bot to be on the clock after the human ends the turn")
	}
	if _, ok := policy.Next(gs, false); !ok {
		t.Error("Expected a bot move")
	}
}

func TestPolicyAutoDraw(t *testing.T) {
	gs := engine.Apply(nil, engine.StartGame{PartyCount: 2, Seed: 3})
	gs = engine.Apply(gs, engine.EndTurn{})
	gs = engine.Apply(gs, engine.EndTurn{})
	gs = engine.Apply(gs, engine.PassGavel{BetMore: true})
	// gavel is now with the bot in seat 1
	if a, ok := NewPolicy(1).Next(gs, false); !ok || a.Name() != "draw_event" {
		t.Errorf("Expected the bot gavel holder to draw, got %v", a)
	}

	gs = engine.Apply(gs, engine.DrawEvent{})
	gs = engine.Apply(gs, engine.EndTurn{})
	gs = engine.Apply(gs, engine.EndTurn{})
	if gs.Phase != engine.PhaseRoundEnd {
		t.Fatalf("Expected round end, got %s", gs.Phase)
	}
	gs = engine.Apply(gs, engine.PassGavel{})
	// the human holds the gavel again
	if _, ok := NewPolicy(1).Next(gs, false); ok {
		t.Error("Expected the human to draw without auto draw")
	}
	if a, ok := NewPolicy(1).Next(gs, true); !ok || a.Name() != "draw_event" {
		t.Errorf("Expected auto draw, got %v", a)
	}
}

func TestPolicyPlaysWholeGames(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		policy := NewPolicy(seed)
		gs := engine.Apply(nil, engine.StartGame{Seed: seed, Seats: allBots(2 + int(seed%5))})

		steps := 0
		for !gs.IsGameOver() {
			if steps++; steps > 10000 {
				t.Fatalf("seed %d: expected the game to end", seed)
			}
			a, ok := policy.Next(gs, false)
			if !ok {
				t.Fatalf("seed %d: expected a bot move in phase %s", seed, gs.Phase)
			}
			next := engine.Apply(gs, a)
			if !engine.Applied(gs, next) {
				t.Fatalf("seed %d: expected bot move %#v to be legal", seed, a)
			}
			gs = next
		}
		if gs.Winner == nil {
			t.Errorf("seed %d: expected a winner", seed)
		}
	}
}

func TestDelay(t *testing.T) {
	gs := engine.Apply(nil, engine.StartGame{PartyCount: 2, Seed: 1})
	base := time.Second

	if got := Delay(gs, engine.PassGavel{}, base); got != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s before a gavel decision, got %v", got)
	}
	if got := Delay(gs, engine.EndTurn{}, base); got != 4*time.Second {
		t.Errorf("Expected 4s before an idle pass, got %v", got)
	}
	if got := Delay(gs, engine.PerformAction{Kind: engine.Buy}, base); got != base {
		t.Errorf("Expected the base delay before a trade, got %v", got)
	}
}
