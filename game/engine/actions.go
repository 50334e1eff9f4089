package engine

import (
	"github.com/dustin/go-humanize"
)

// Action is one discrete request submitted to Apply. The set is closed:
// StartGame, DrawEvent, PerformAction, EndTurn and PassGavel.
type Action interface {
	// Name is a stable identifier used in logs and journals
	Name() string
	isAction()
}

// StartGame deals a new game. Seats, when given, override PartyCount; a zero
// Deck means the default composition.
type StartGame struct {
	PartyCount int             `json:"party_count"`
	Seed       uint64          `json:"seed"`
	Seats      []Seat          `json:"seats,omitempty"`
	Deck       DeckComposition `json:"deck"`
}

// DrawEvent reveals the top card of the event deck
type DrawEvent struct{}

// PerformAction spends one action point of the current party
type PerformAction struct {
	Kind    ActionKind `json:"kind"`
	Variety Variety    `json:"variety"`
}

// EndTurn hands play to the next party
type EndTurn struct{}

// PassGavel records the gavel holder's decision and rotates the gavel
type PassGavel struct {
	BetMore bool `json:"bet_more"`
}

func (StartGame) Name() string     { return "start_game" }
func (DrawEvent) Name() string     { return "draw_event" }
func (PerformAction) Name() string { return "perform_action" }
func (EndTurn) Name() string       { return "end_turn" }
func (PassGavel) Name() string     { return "pass_gavel" }

func (StartGame) isAction()     {}
func (DrawEvent) isAction()     {}
func (PerformAction) isAction() {}
func (EndTurn) isAction()       {}
func (PassGavel) isAction()     {}

// CanPerform reports whether the current party may spend an action point on
// kind. It is the only precondition check used by Apply, so a true result
// guarantees the action will be applied.
func CanPerform(gs *GameState, kind ActionKind, v Variety) bool {
	if gs == nil || gs.Phase != PhasePlayerActions || gs.RemainingActions <= 0 {
		return false
	}
	p := gs.Current()
	if p == nil {
		return false
	}
	if kind.NeedsVariety() && !v.Valid() {
		return false
	}
	m := gs.Market

	switch kind {
	case Buy:
		return m.Supply[v] > 0 && p.Cash >= m.BuyPrice(v)
	case Sell:
		return !gs.SellingForbidden && p.Inventory[v] > 0
	case Loan:
		return m.Heat >= LoanHeatGate && p.Loans < MaxLoans
	case Repay:
		return p.Loans > 0 && p.Cash >= RepayAmount
	case Short:
		return m.Heat >= ShortHeatGate && m.Supply[v] > 0 && p.Cash >= m.SellPrice(v)
	}
	// PASS is translated to EndTurn by drivers
	return false
}

// LegalActions lists every PerformAction the current party could submit
func LegalActions(gs *GameState) []PerformAction {
	var out []PerformAction
	for _, kind := range []ActionKind{Buy, Sell, Short} {
		for _, v := range Varieties {
			if CanPerform(gs, kind, v) {
				out = append(out, PerformAction{Kind: kind, Variety: v})
			}
		}
	}
	for _, kind := range []ActionKind{Loan, Repay} {
		if CanPerform(gs, kind, Common) {
			out = append(out, PerformAction{Kind: kind})
		}
	}
	return out
}

// perform applies a validated action to a private copy of the state
func perform(gs *GameState, a PerformAction) {
	p := gs.Current()
	m := &gs.Market
	v := a.Variety
	prevHeat := m.Heat

	switch a.Kind {
	case Buy:
		price := m.BuyPrice(v)
		p.Cash -= price
		p.Inventory[v]++
		m.Supply[v]--
		note := ""
		if v == Augustus && prevHeat >= FrenzyHeat {
			m.Heat = ClampHeat(m.Heat + 1)
			note = " (heat +1)"
		}
		gs.logf("%s buys %s for %s%s.", p.Name, v, money(price), note)
	case Sell:
		price := m.SellPrice(v)
		p.Cash += price
		p.Inventory[v]--
		m.Supply[v]++
		note := ""
		if v == Augustus && prevHeat >= FrenzyHeat {
			m.Heat = ClampHeat(m.Heat - 1)
			note = " (heat -1)"
		}
		gs.logf("%s sells %s for %s%s.", p.Name, v, money(price), note)
	case Loan:
		p.Cash += LoanAmount
		p.Loans++
		gs.logf("%s takes a loan (+%s).", p.Name, money(LoanAmount))
	case Repay:
		p.Cash -= RepayAmount
		p.Loans--
		gs.logf("%s repays a loan (-%s).", p.Name, money(RepayAmount))
	case Short:
		price := m.SellPrice(v)
		p.Cash += price
		p.Shorts[v]++
		gs.logf("%s shorts %s at %s.", p.Name, v, money(price))
	}

	gs.RemainingActions--

	if prevHeat < MaxHeat && m.Heat >= MaxHeat {
		meltdown(gs)
	}
}

// money formats an amount of guilders with thousands separators
func money(n int) string {
	return humanize.Comma(int64(n))
}
