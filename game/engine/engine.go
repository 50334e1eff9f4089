package engine

import "fmt"

// Apply is the transition function of the game. A rejected action returns
// state itself; an applied one returns a fresh copy and leaves state untouched.
func Apply(state *GameState, a Action) *GameState {
	switch act := a.(type) {
	case StartGame:
		return startGame(state, act)
	case DrawEvent:
		if state == nil || state.Phase != PhaseEventDraw || len(state.Deck) == 0 {
			return state
		}
		next := state.Clone()
		drawEvent(next)
		return next
	case PerformAction:
		if !CanPerform(state, act.Kind, act.Variety) {
			return state
		}
		next := state.Clone()
		perform(next, act)
		return next
	case EndTurn:
		if state == nil || state.Phase != PhasePlayerActions || len(state.Parties) == 0 {
			return state
		}
		next := state.Clone()
		endTurn(next)
		return next
	case PassGavel:
		if state == nil || state.Phase != PhaseRoundEnd || len(state.Parties) == 0 {
			return state
		}
		next := state.Clone()
		passGavel(next, act.BetMore)
		return next
	}
	return state
}

// Applied reports whether next is the result of an accepted action on prev
func Applied(prev, next *GameState) bool {
	return prev != next
}

// NewGameState builds the state produced by StartGame, or nil if the request
// is invalid
func NewGameState(a StartGame) *GameState {
	seats := a.Seats
	if len(seats) == 0 {
		seats = DefaultSeats(a.PartyCount)
	}
	if a.PartyCount < 0 {
		return nil
	}
	comp := a.Deck
	if comp.IsZero() {
		comp = DefaultDeckComposition()
	}
	if ValidateDeckComposition(comp) != nil {
		return nil
	}

	n := len(seats)
	parties := make([]Party, 0, n)
	for i, seat := range seats {
		parties = append(parties, Party{
			ID:      i,
			Name:    seat.Name,
			IsAI:    seat.AI,
			Profile: seat.Profile,
			Cash:    StartingCash,
		})
	}

	viceroy := n * ViceroyPerParty
	if n == 0 {
		viceroy = IdleViceroy
	}
	supply := Counts{CommonSupply, viceroy, AugustusSupply}

	gs := &GameState{
		Parties: parties,
		Market: Market{
			Heat:      MinHeat,
			Supply:    supply,
			MaxSupply: supply,
		},
		Deck:    BuildDeck(NewRand(a.Seed), comp),
		Discard: []EventCard{},
		Phase:   PhaseSetup,
		Log:     []string{},
		Round:   1,
	}
	gs.logf("Setup complete, the market is open.")

	if n == 0 {
		return gs
	}
	gs.Phase = PhasePlayerActions
	gs.RemainingActions = ActionsPerTurn
	gs.logf("Round 1 has no event: trading begins immediately.")
	return gs
}

func startGame(state *GameState, a StartGame) *GameState {
	next := NewGameState(a)
	if next == nil {
		return state
	}
	return next
}

func endTurn(gs *GameState) {
	next := (gs.CurrentParty + 1) % len(gs.Parties)
	if next == gs.GavelHolder {
		gs.Phase = PhaseRoundEnd
		gs.RemainingActions = 0
		gs.logf("Every trader has acted. %s holds the gavel and must decide.", gs.Parties[gs.GavelHolder].Name)
		return
	}
	gs.CurrentParty = next
	gs.RemainingActions = ActionsPerTurn
	gs.logf("Turn: %s", gs.Parties[next].Name)
}

// passGavel always rotates the gavel and returns to the event draw. BetMore
// only changes the narration.
func passGavel(gs *GameState, betMore bool) {
	holder := gs.Parties[gs.GavelHolder].Name
	if betMore {
		gs.logf("%s bets more! A new event is coming...", holder)
	} else {
		gs.logf("%s calls for a rest.", holder)
	}
	gs.GavelHolder = (gs.GavelHolder + 1) % len(gs.Parties)
	gs.CurrentParty = gs.GavelHolder
	gs.Phase = PhaseEventDraw
	gs.logf("The gavel passes to %s.", gs.Parties[gs.GavelHolder].Name)
}

// Engine is the session-scoped view of one game used by the service layer
type Engine interface {
	// State management
	State() *GameState
	Config() *GameConfig
	Seed() uint64
	Restart(seed uint64) *GameState
	IsGameOver() bool
	Winner() *Party

	// Actions
	Dispatch(a Action) bool
	CanPerform(kind ActionKind, v Variety) bool
	LegalActions() []PerformAction

	// Market
	Quote() []PriceQuote
}

// Game implements Engine by holding the latest snapshot of one game
type Game struct {
	state  *GameState
	config *GameConfig
	seed   uint64
}

// NewGame validates config and deals a game seeded with seed
func NewGame(config *GameConfig, seed uint64) (*Game, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	g := &Game{config: config}
	if g.Restart(seed) == nil {
		return nil, fmt.Errorf("could not deal table %q", config.Name)
	}
	return g, nil
}

// State returns the current snapshot. Callers must not modify it.
func (g *Game) State() *GameState {
	return g.state
}

// Config returns the table configuration the game was dealt from
func (g *Game) Config() *GameConfig {
	return g.config
}

// Seed returns the seed of the current deal
func (g *Game) Seed() uint64 {
	return g.seed
}

// Restart deals a fresh game at the same table
func (g *Game) Restart(seed uint64) *GameState {
	state := Apply(nil, StartGame{
		Seats: g.config.Seats,
		Seed:  seed,
		Deck:  g.config.Deck,
	})
	if state == nil {
		return nil
	}
	g.state = state
	g.seed = seed
	return state
}

// Dispatch applies a and reports whether it was accepted
func (g *Game) Dispatch(a Action) bool {
	next := Apply(g.state, a)
	if !Applied(g.state, next) {
		return false
	}
	g.state = next
	return true
}

// IsGameOver returns whether the game is over
func (g *Game) IsGameOver() bool {
	return g.state.IsGameOver()
}

// Winner returns the winning party, or nil while the game is running
func (g *Game) Winner() *Party {
	if g.state.Winner == nil {
		return nil
	}
	for i := range g.state.Parties {
		if g.state.Parties[i].ID == *g.state.Winner {
			p := g.state.Parties[i]
			return &p
		}
	}
	return nil
}

// CanPerform checks an action point spend against the current snapshot
func (g *Game) CanPerform(kind ActionKind, v Variety) bool {
	return CanPerform(g.state, kind, v)
}

// LegalActions lists the action point spends open to the current party
func (g *Game) LegalActions() []PerformAction {
	return LegalActions(g.state)
}

// Quote returns the current market price sheet
func (g *Game) Quote() []PriceQuote {
	return g.state.Market.Quote()
}
