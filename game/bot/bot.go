package bot

import (
	"github.com/wricardo/tulip-mania/game/engine"
)

// Tuning holds the thresholds that shape one personality
type Tuning struct {
	SellHeat     int // start taking profits at this heat
	BuyHeatLimit int // never buy above this heat
	LoanAppetite int // most loans taken in an emergency
	ShortHeat    int // consider shorting from this heat
	CashReserve  int // cash the personality prefers to keep
}

// Profiles maps every personality to its tuning
var Profiles = map[engine.Profile]Tuning{
	engine.Conservative: {SellHeat: 6, BuyHeatLimit: 3, LoanAppetite: 0, ShortHeat: 99, CashReserve: 100},
	engine.Balanced:     {SellHeat: 8, BuyHeatLimit: 6, LoanAppetite: 1, ShortHeat: 9, CashReserve: 50},
	engine.Aggressive:   {SellHeat: 10, BuyHeatLimit: 8, LoanAppetite: 2, ShortHeat: 6, CashReserve: 0},
}

// Heuristic constants
const (
	SurvivalCash  = 40  // below this the bot scrambles for liquidity
	BuyBuffer     = 10  // cash kept above the buy price
	FullTurnBonus = 0.2 // extra buy chance with untouched action points
)

// preference is the order in which varieties are traded, most valuable first
var preference = []engine.Variety{engine.Augustus, engine.Viceroy, engine.Common}

// RandomSource is the only randomness a bot consumes
type RandomSource interface {
	Float64() float64
}

// TuningFor returns the tuning of a personality, Balanced when unknown
func TuningFor(p engine.Profile) Tuning {
	if t, ok := Profiles[p]; ok {
		return t
	}
	return Profiles[engine.Balanced]
}

func buyChance(p engine.Profile, remaining int) float64 {
	chance := 0.5
	switch p {
	case engine.Aggressive:
		chance = 0.9
	case engine.Conservative:
		chance = 0.3
	}
	if remaining == engine.ActionsPerTurn {
		chance += FullTurnBonus
	}
	return chance
}

func shortLimit(p engine.Profile) int {
	if p == engine.Aggressive {
		return 3
	}
	return 1
}

func repayThreshold(p engine.Profile) int {
	if p == engine.Conservative {
		return 1200
	}
	return 2500
}

// Decide picks the current party's next move. The result is either EndTurn or
// a PerformAction that engine.CanPerform accepts.
func Decide(gs *engine.GameState, rng RandomSource) engine.Action {
	if gs == nil || gs.Phase != engine.PhasePlayerActions || gs.RemainingActions <= 0 {
		return engine.EndTurn{}
	}
	p := gs.Current()
	if p == nil {
		return engine.EndTurn{}
	}
	tuning := TuningFor(p.Profile)
	heat := gs.Market.Heat

	can := func(kind engine.ActionKind, v engine.Variety) bool {
		return engine.CanPerform(gs, kind, v)
	}
	act := func(kind engine.ActionKind, v engine.Variety) engine.Action {
		return engine.PerformAction{Kind: kind, Variety: v}
	}

	// Survival: sell the most valuable holding, else borrow, else give up
	if p.Cash < SurvivalCash {
		for _, v := range preference {
			if can(engine.Sell, v) {
				return act(engine.Sell, v)
			}
		}
		if p.Loans < tuning.LoanAppetite && can(engine.Loan, engine.Common) {
			return act(engine.Loan, engine.Common)
		}
		return engine.EndTurn{}
	}

	// Profit taking
	if heat >= tuning.SellHeat {
		for _, v := range preference {
			if can(engine.Sell, v) {
				return act(engine.Sell, v)
			}
		}
	}

	// Shorting
	if heat >= tuning.ShortHeat && heat >= engine.ShortHeatGate {
		limit := shortLimit(p.Profile)
		for _, v := range preference {
			if p.Shorts[v] < limit && can(engine.Short, v) {
				return act(engine.Short, v)
			}
		}
	}

	// Accumulation
	if heat <= tuning.BuyHeatLimit {
		chance := buyChance(p.Profile, gs.RemainingActions)
		for _, v := range preference {
			price := gs.Market.BuyPrice(v)
			if p.Cash < price+BuyBuffer || !can(engine.Buy, v) {
				continue
			}
			if rng.Float64() < chance {
				return act(engine.Buy, v)
			}
		}
	}

	// Debt management
	if p.Cash > repayThreshold(p.Profile) && can(engine.Repay, engine.Common) {
		return act(engine.Repay, engine.Common)
	}

	return engine.EndTurn{}
}

// GavelDecision reports whether the gavel holder bets more (true) or rests
func GavelDecision(gs *engine.GameState, rng RandomSource) bool {
	holder := gs.Gavel()
	if holder == nil {
		return false
	}
	tuning := TuningFor(holder.Profile)
	heat := gs.Market.Heat

	if heat >= tuning.SellHeat {
		return false
	}
	if heat < tuning.BuyHeatLimit {
		return true
	}
	switch holder.Profile {
	case engine.Aggressive:
		return true
	case engine.Conservative:
		return false
	}
	return rng.Float64() > 0.5
}
