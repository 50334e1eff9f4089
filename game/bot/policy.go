package bot

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wricardo/tulip-mania/game/engine"
)

// Pacing multipliers applied to a driver's base delay
const (
	idlePassFactor = 4.0
	gavelFactor    = 1.5
)

// Policy drives the AI seats of one game. It is safe for concurrent use.
type Policy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPolicy creates a policy whose coin flips are seeded with seed
func NewPolicy(seed uint64) *Policy {
	return &Policy{rng: engine.NewRand(seed)}
}

// Float64 implements RandomSource
func (p *Policy) Float64() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}

// NeedsHuman reports whether the game is waiting on a human seat. autoDraw
// lets the table draw events without the gavel holder.
func NeedsHuman(gs *engine.GameState, autoDraw bool) bool {
	if gs == nil {
		return false
	}
	switch gs.Phase {
	case engine.PhasePlayerActions:
		p := gs.Current()
		return p != nil && !p.IsAI
	case engine.PhaseRoundEnd:
		g := gs.Gavel()
		return g != nil && !g.IsAI
	case engine.PhaseEventDraw:
		g := gs.Gavel()
		return g != nil && !g.IsAI && !autoDraw
	}
	return false
}

// Next returns the action the driver should submit on behalf of a bot, or
// false when no bot is due to act
func (p *Policy) Next(gs *engine.GameState, autoDraw bool) (engine.Action, bool) {
	if gs == nil || gs.IsGameOver() || len(gs.Parties) == 0 || NeedsHuman(gs, autoDraw) {
		return nil, false
	}
	switch gs.Phase {
	case engine.PhasePlayerActions:
		return Decide(gs, p), true
	case engine.PhaseRoundEnd:
		return engine.PassGavel{BetMore: GavelDecision(gs, p)}, true
	case engine.PhaseEventDraw:
		return engine.DrawEvent{}, true
	}
	return nil, false
}

// Delay is the pause a driver should take before submitting a for a bot. A
// bot that ends its turn without acting lingers longer, as does a gavel
// decision.
func Delay(gs *engine.GameState, a engine.Action, base time.Duration) time.Duration {
	switch a.(type) {
	case engine.PassGavel:
		return time.Duration(float64(base) * gavelFactor)
	case engine.EndTurn:
		if gs != nil && gs.RemainingActions == engine.ActionsPerTurn {
			return time.Duration(float64(base) * idlePassFactor)
		}
	}
	return base
}
