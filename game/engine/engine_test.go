package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func newTestState(t *testing.T, parties int) *GameState {
	t.Helper()
	gs := Apply(nil, StartGame{PartyCount: parties, Seed: 7})
	if gs == nil {
		t.Fatal("Expected a dealt game, got nil")
	}
	return gs
}

// checkInvariants verifies the bookkeeping rules that hold after every
// transition
func checkInvariants(t *testing.T, gs *GameState) {
	t.Helper()
	if gs.Market.Heat < MinHeat || gs.Market.Heat > MaxHeat {
		t.Fatalf("Expected heat in [%d,%d], got %d", MinHeat, MaxHeat, gs.Market.Heat)
	}
	for _, v := range Varieties {
		held := 0
		for _, p := range gs.Parties {
			if p.Inventory[v] < 0 || p.Shorts[v] < 0 {
				t.Fatalf("Expected non-negative %s holdings for %s, got %d/%d", v, p.Name, p.Inventory[v], p.Shorts[v])
			}
			held += p.Inventory[v]
		}
		supply, maxSupply := gs.Market.Supply[v], gs.Market.MaxSupply[v]
		if supply < 0 || supply > maxSupply {
			t.Fatalf("Expected %s supply in [0,%d], got %d", v, maxSupply, supply)
		}
		if supply+held != maxSupply {
			t.Fatalf("Expected %s supply %d + held %d == %d", v, supply, held, maxSupply)
		}
	}
	for _, p := range gs.Parties {
		if p.Loans < 0 || p.Loans > MaxLoans {
			t.Fatalf("Expected loans in [0,%d] for %s, got %d", MaxLoans, p.Name, p.Loans)
		}
	}
}

func TestStartGame(t *testing.T) {
	gs := Apply(nil, StartGame{PartyCount: 4, Seed: 1})
	if gs == nil {
		t.Fatal("Expected a game state")
	}
	if len(gs.Parties) != 4 {
		t.Fatalf("Expected 4 parties, got %d", len(gs.Parties))
	}
	if gs.Phase != PhasePlayerActions {
		t.Errorf("Expected the first round to skip the event draw, got %s", gs.Phase)
	}
	if gs.RemainingActions != ActionsPerTurn || gs.CurrentParty != 0 || gs.GavelHolder != 0 {
		t.Errorf("Expected party 0 to act with %d points, got party %d with %d points",
			ActionsPerTurn, gs.CurrentParty, gs.RemainingActions)
	}
	if gs.Market.Heat != MinHeat || gs.Round != 1 {
		t.Errorf("Expected heat 1 in round 1, got heat %d in round %d", gs.Market.Heat, gs.Round)
	}
	if gs.Market.MaxSupply != (Counts{30, 20, 5}) || gs.Market.Supply != gs.Market.MaxSupply {
		t.Errorf("Expected a full bank of 30/20/5, got %v of %v", gs.Market.Supply, gs.Market.MaxSupply)
	}
	if len(gs.Deck) != EventDeckSize {
		t.Errorf("Expected %d cards, got %d", EventDeckSize, len(gs.Deck))
	}
	if gs.CurrentEvent != nil || gs.Winner != nil {
		t.Error("Expected no event and no winner at the start")
	}

	if gs.Parties[0].IsAI || gs.Parties[0].Name != "You (Trader)" {
		t.Errorf("Expected a human trader in seat 0, got %+v", gs.Parties[0])
	}
	profiles := []Profile{Conservative, Balanced, Aggressive}
	for i, want := range profiles {
		p := gs.Parties[i+1]
		if !p.IsAI || p.Profile != want {
			t.Errorf("Expected seat %d to be a %s bot, got %+v", i+1, want, p)
		}
		if !strings.Contains(p.Name, string(want)) {
			t.Errorf("Expected bot name to mention %s, got %q", want, p.Name)
		}
	}
	for _, p := range gs.Parties {
		if p.Cash != StartingCash {
			t.Errorf("Expected starting cash %d, got %d", StartingCash, p.Cash)
		}
	}
}

func TestStartGameWithNoPartiesIsIdle(t *testing.T) {
	gs := Apply(nil, StartGame{})
	if gs.Phase != PhaseSetup {
		t.Errorf("Expected setup phase, got %s", gs.Phase)
	}
	if len(gs.Parties) != 0 || gs.RemainingActions != 0 {
		t.Errorf("Expected no parties and no action points, got %d/%d", len(gs.Parties), gs.RemainingActions)
	}
	if gs.Market.MaxSupply[Viceroy] != IdleViceroy {
		t.Errorf("Expected Viceroy supply %d, got %d", IdleViceroy, gs.Market.MaxSupply[Viceroy])
	}
	for _, a := range []Action{DrawEvent{}, EndTurn{}, PassGavel{}, PerformAction{Kind: Buy}} {
		if next := Apply(gs, a); Applied(gs, next) {
			t.Errorf("Expected %s to be rejected in setup", a.Name())
		}
	}
}

func TestStartGameHasNoPartyLimit(t *testing.T) {
	gs := Apply(nil, StartGame{PartyCount: MaxParties + 1, Seed: 3})
	if gs == nil {
		t.Fatal("Expected a game with seven parties")
	}
	if len(gs.Parties) != MaxParties+1 {
		t.Errorf("Expected %d parties, got %d", MaxParties+1, len(gs.Parties))
	}
	if gs.Market.MaxSupply[Viceroy] != ViceroyPerParty*(MaxParties+1) {
		t.Errorf("Expected Viceroy supply %d, got %d", ViceroyPerParty*(MaxParties+1), gs.Market.MaxSupply[Viceroy])
	}
	if gs.Phase != PhasePlayerActions {
		t.Errorf("Expected phase %s, got %s", PhasePlayerActions, gs.Phase)
	}
}

func TestStartGameRejectsBadRequests(t *testing.T) {
	prev := newTestState(t, 2)
	if next := Apply(prev, StartGame{PartyCount: -1}); Applied(prev, next) {
		t.Error("Expected a negative party count to be rejected")
	}
	bad := DefaultDeckComposition()
	bad.Rumor = 6
	if next := Apply(prev, StartGame{PartyCount: 2, Deck: bad}); Applied(prev, next) {
		t.Error("Expected an invalid deck to be rejected")
	}
}

func TestStartGameUsesSeats(t *testing.T) {
	seats := []Seat{
		{Name: "Alice"},
		{Name: "Bob"},
		{Name: "Greedy", AI: true, Profile: Aggressive},
	}
	gs := Apply(nil, StartGame{PartyCount: 9, Seats: seats})
	if gs == nil || len(gs.Parties) != 3 {
		t.Fatalf("Expected 3 seated parties, got %v", gs)
	}
	if gs.Parties[1].Name != "Bob" || gs.Parties[1].IsAI {
		t.Errorf("Expected human Bob in seat 1, got %+v", gs.Parties[1])
	}
	if gs.Market.MaxSupply[Viceroy] != 15 {
		t.Errorf("Expected Viceroy supply 15, got %d", gs.Market.MaxSupply[Viceroy])
	}
}

func TestEndTurnRotation(t *testing.T) {
	gs := newTestState(t, 3)
	gs = Apply(gs, EndTurn{})
	if gs.CurrentParty != 1 || gs.RemainingActions != ActionsPerTurn {
		t.Errorf("Expected party 1 with full action points, got party %d with %d", gs.CurrentParty, gs.RemainingActions)
	}
	gs = Apply(gs, EndTurn{})
	if gs.CurrentParty != 2 {
		t.Errorf("Expected party 2, got %d", gs.CurrentParty)
	}
	gs = Apply(gs, EndTurn{})
	if gs.Phase != PhaseRoundEnd {
		t.Fatalf("Expected round end when play returns to the gavel, got %s", gs.Phase)
	}
	if next := Apply(gs, EndTurn{}); Applied(gs, next) {
		t.Error("Expected end turn during round end to be rejected")
	}
	if next := Apply(gs, PerformAction{Kind: Buy, Variety: Common}); Applied(gs, next) {
		t.Error("Expected trading during round end to be rejected")
	}
}

// The gavel decision only changes the narration: both answers rotate the
// gavel and lead to another event draw.
func TestPassGavelRoutesBothDecisionsToEventDraw(t *testing.T) {
	gs := newTestState(t, 3)
	for i := 0; i < 3; i++ {
		gs = Apply(gs, EndTurn{})
	}

	more := Apply(gs, PassGavel{BetMore: true})
	rest := Apply(gs, PassGavel{BetMore: false})
	for name, next := range map[string]*GameState{"bet more": more, "rest": rest} {
		if !Applied(gs, next) {
			t.Fatalf("%s: expected pass gavel to be applied", name)
		}
		if next.Phase != PhaseEventDraw {
			t.Errorf("%s: expected phase %s, got %s", name, PhaseEventDraw, next.Phase)
		}
		if next.GavelHolder != 1 {
			t.Errorf("%s: expected gavel to pass to party 1, got %d", name, next.GavelHolder)
		}
		if next.Round != gs.Round {
			t.Errorf("%s: expected round to advance only on the draw, got %d", name, next.Round)
		}
	}
	if more.Log[len(more.Log)-2] == rest.Log[len(rest.Log)-2] {
		t.Error("Expected the two decisions to be narrated differently")
	}

	drawn := Apply(rest, DrawEvent{})
	if drawn.Phase != PhasePlayerActions || drawn.CurrentParty != 1 || drawn.Round != 2 {
		t.Errorf("Expected party 1 to open round 2, got %s for party %d in round %d", drawn.Phase, drawn.CurrentParty, drawn.Round)
	}
}

func TestPassGavelRejectedOutsideRoundEnd(t *testing.T) {
	gs := newTestState(t, 2)
	if next := Apply(gs, PassGavel{BetMore: true}); Applied(gs, next) {
		t.Error("Expected pass gavel during player actions to be rejected")
	}
}

func TestApplyNeverMutatesItsInput(t *testing.T) {
	gs := newTestState(t, 3)
	gs.Market.Heat = 6
	gs.Parties[0].Cash = 5000
	before, _ := json.Marshal(gs)

	next := Apply(gs, PerformAction{Kind: Buy, Variety: Viceroy})
	next = Apply(next, PerformAction{Kind: Short, Variety: Common})
	next = Apply(next, EndTurn{})
	_ = next

	after, _ := json.Marshal(gs)
	if string(before) != string(after) {
		t.Error("Expected the input snapshot to be unchanged")
	}
}

func TestLogIsAppendOnly(t *testing.T) {
	gs := newTestState(t, 2)
	next := Apply(gs, EndTurn{})
	if len(next.Log) <= len(gs.Log) {
		t.Fatalf("Expected the log to grow, got %d then %d", len(gs.Log), len(next.Log))
	}
	for i := range gs.Log {
		if gs.Log[i] != next.Log[i] {
			t.Errorf("Expected log line %d to be preserved", i)
		}
	}
}

// playRandom drives a whole game with uniformly chosen legal moves
func playRandom(t *testing.T, seed uint64, parties int) *GameState {
	t.Helper()
	rng := NewRand(seed)
	gs := Apply(nil, StartGame{PartyCount: parties, Seed: seed})

	for step := 0; step < 10000; step++ {
		checkInvariants(t, gs)
		var a Action
		switch gs.Phase {
		case PhaseGameOver:
			return gs
		case PhaseEventDraw:
			a = DrawEvent{}
		case PhaseRoundEnd:
			a = PassGavel{BetMore: rng.IntN(2) == 0}
		case PhasePlayerActions:
			legal := LegalActions(gs)
			if len(legal) == 0 || rng.IntN(3) == 0 {
				a = EndTurn{}
			} else {
				a = legal[rng.IntN(len(legal))]
			}
		default:
			t.Fatalf("Unexpected phase %s", gs.Phase)
		}
		next := Apply(gs, a)
		if !Applied(gs, next) {
			t.Fatalf("Expected %s to be applied in phase %s", a.Name(), gs.Phase)
		}
		gs = next
	}
	t.Fatal("Expected the game to end")
	return nil
}

func TestRandomGamesTerminate(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		parties := 2 + int(seed%5)
		gs := playRandom(t, seed, parties)
		if gs.Winner == nil {
			t.Fatalf("seed %d: expected a winner", seed)
		}
		if len(gs.Standings) != parties {
			t.Errorf("seed %d: expected %d standings, got %d", seed, parties, len(gs.Standings))
		}
		if len(gs.Discard)+len(gs.Deck) != EventDeckSize {
			t.Errorf("seed %d: expected every card to be in the deck or the discard pile", seed)
		}
		if gs.CurrentEvent == nil || !gs.CurrentEvent.Kind.Terminal() {
			t.Errorf("seed %d: expected the game to end on a terminal crash, got %v", seed, gs.CurrentEvent)
		}
		if len(gs.Discard) <= TopStackSize {
			t.Errorf("seed %d: expected more than %d events before the crash, got %d", seed, TopStackSize, len(gs.Discard))
		}
	}
}

func TestGame(t *testing.T) {
	game, err := NewGame(DefaultGameConfig(), 11)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	if game.IsGameOver() || game.Winner() != nil {
		t.Error("Expected a fresh game to be running")
	}
	if len(game.State().Parties) != 4 {
		t.Errorf("Expected 4 parties, got %d", len(game.State().Parties))
	}

	if !game.CanPerform(Buy, Common) {
		t.Error("Expected a Common buy to be possible")
	}
	if !game.Dispatch(PerformAction{Kind: Buy, Variety: Common}) {
		t.Error("Expected buy to be dispatched")
	}
	if game.Dispatch(PassGavel{}) {
		t.Error("Expected pass gavel to be rejected mid round")
	}
	if len(game.Quote()) != NumVarieties {
		t.Errorf("Expected %d quotes, got %d", NumVarieties, len(game.Quote()))
	}
	if len(game.LegalActions()) == 0 {
		t.Error("Expected legal actions")
	}

	state := game.Restart(12)
	if state.Parties[0].Cash != StartingCash || game.Seed() != 12 {
		t.Errorf("Expected a fresh deal with seed 12, got cash %d seed %d", state.Parties[0].Cash, game.Seed())
	}
}

func TestGameWinner(t *testing.T) {
	game, err := NewGame(DefaultGameConfig(), 5)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	gs := stageEvent(game.State().Clone(), KindCrashHaarlem)
	gs.Parties[2].Cash = 999
	game.state = gs

	if !game.Dispatch(DrawEvent{}) {
		t.Fatal("Expected the crash to be drawn")
	}
	if !game.IsGameOver() {
		t.Fatal("Expected game over")
	}
	if w := game.Winner(); w == nil || w.ID != 2 {
		t.Errorf("Expected party 2 to win, got %v", w)
	}
}

func TestNewGameRejectsInvalidConfig(t *testing.T) {
	if _, err := NewGame(&GameConfig{Name: "broken"}, 1); err == nil {
		t.Error("Expected an error for a config without description or seats")
	}
}
