package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Variety identifies one of the three tulip varieties traded on the market
type Variety int

const (
	Common Variety = iota
	Viceroy
	Augustus
)

// Varieties lists every variety in rank order (Common < Viceroy < Augustus)
var Varieties = []Variety{Common, Viceroy, Augustus}

// Numeric rules of the game
const (
	NumVarieties    = 3
	MinHeat         = 1
	MaxHeat         = 10
	StartingCash    = 100
	ActionsPerTurn  = 2
	LoanAmount      = 1000
	RepayAmount     = 1100
	MaxLoans        = 2
	LoanHeatGate    = 3
	ShortHeatGate   = 5
	FrenzyHeat      = 8
	MeltdownPrice   = 5000
	FrenchBonus     = 500
	FrenchPenalty   = 500
	MarginLoanFine  = 200
	MarginShortFine = 500
	InjectionAmount = 200
	CommonSupply    = 30
	AugustusSupply  = 5
	ViceroyPerParty = 5
	IdleViceroy     = 20
	FalseAlarmDrop  = 3
	RationalDrop    = 2
	RationalMinHeat = 7
	MaxParties      = 6 // table configs only, StartGame takes any count
	TopStackSize    = 8
	NormalDeckSize  = 15
	CrashCardCount  = 3
	EventDeckSize   = NormalDeckSize + CrashCardCount
)

func (v Variety) String() string {
	switch v {
	case Common:
		return "Common"
	case Viceroy:
		return "Viceroy"
	case Augustus:
		return "Augustus"
	}
	return fmt.Sprintf("Variety(%d)", int(v))
}

// Valid reports whether v is one of the three known varieties
func (v Variety) Valid() bool {
	return v >= Common && v <= Augustus
}

// ParseVariety converts a case-insensitive name into a Variety
func ParseVariety(name string) (Variety, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "common":
		return Common, nil
	case "viceroy":
		return Viceroy, nil
	case "augustus":
		return Augustus, nil
	}
	return Common, fmt.Errorf("unknown variety %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (v Variety) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid variety %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Variety) UnmarshalText(text []byte) error {
	parsed, err := ParseVariety(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Counts holds one integer per variety. It is a value type, so copying a
// Counts copies its contents.
type Counts [NumVarieties]int

// Get returns the count for a variety
func (c Counts) Get(v Variety) int {
	return c[v]
}

// Total sums the counts across all varieties
func (c Counts) Total() int {
	return c[Common] + c[Viceroy] + c[Augustus]
}

// MarshalJSON encodes counts as an object keyed by variety name
func (c Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{
		Common.String():   c[Common],
		Viceroy.String():  c[Viceroy],
		Augustus.String(): c[Augustus],
	})
}

// UnmarshalJSON decodes the object form written by MarshalJSON
func (c *Counts) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Counts
	for name, n := range raw {
		v, err := ParseVariety(name)
		if err != nil {
			return err
		}
		out[v] = n
	}
	*c = out
	return nil
}

// Profile is the behavioral tag of an AI party
type Profile string

const (
	Conservative Profile = "Conservative"
	Balanced     Profile = "Balanced"
	Aggressive   Profile = "Aggressive"
)

// Valid reports whether p is empty or one of the known profiles
func (p Profile) Valid() bool {
	switch p {
	case "", Conservative, Balanced, Aggressive:
		return true
	}
	return false
}

// Phase represents the stage of a round
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseEventDraw     Phase = "event_draw"
	PhasePlayerActions Phase = "player_actions"
	PhaseRoundEnd      Phase = "round_end"
	PhaseGameOver      Phase = "game_over"
)

// ActionKind names a trade a party can spend an action point on
type ActionKind string

const (
	Buy   ActionKind = "BUY"
	Sell  ActionKind = "SELL"
	Loan  ActionKind = "LOAN"
	Repay ActionKind = "REPAY"
	Short ActionKind = "SHORT"
	Pass  ActionKind = "PASS"
)

// NeedsVariety reports whether the action targets a specific variety
func (k ActionKind) NeedsVariety() bool {
	return k == Buy || k == Sell || k == Short
}

// ParseActionKind converts a case-insensitive name into an ActionKind
func ParseActionKind(name string) (ActionKind, error) {
	kind := ActionKind(strings.ToUpper(strings.TrimSpace(name)))
	switch kind {
	case Buy, Sell, Loan, Repay, Short, Pass:
		return kind, nil
	}
	return "", fmt.Errorf("unknown action %q", name)
}

// Party is one player at the table, human or AI
type Party struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	IsAI      bool    `json:"is_ai"`
	Profile   Profile `json:"profile,omitempty"`
	Cash      int     `json:"cash"`
	Inventory Counts  `json:"inventory"`
	Shorts    Counts  `json:"shorts"`
	Loans     int     `json:"loans"`
	Bankrupt  bool    `json:"bankrupt"` // reserved
}

// Market holds the heat level and the bank's tulip supply
type Market struct {
	Heat      int    `json:"heat"`
	Supply    Counts `json:"supply"`
	MaxSupply Counts `json:"max_supply"`
}

// Standing is a party's final liquidation result
type Standing struct {
	PartyID  int    `json:"party_id"`
	Name     string `json:"name"`
	NetWorth int    `json:"net_worth"`
	Rank     int    `json:"rank"`
}

// GameState is the single authoritative snapshot of a game. Values returned
// by Apply are never mutated afterwards.
type GameState struct {
	Parties          []Party     `json:"parties"`
	CurrentParty     int         `json:"current_party"`
	GavelHolder      int         `json:"gavel_holder"`
	Market           Market      `json:"market"`
	Deck             []EventCard `json:"deck"`
	Discard          []EventCard `json:"discard"` // most recent first
	CurrentEvent     *EventCard  `json:"current_event"`
	Phase            Phase       `json:"phase"`
	Log              []string    `json:"log"`
	RemainingActions int         `json:"remaining_actions"`
	Round            int         `json:"round"`
	Winner           *int        `json:"winner"`
	SellingForbidden bool        `json:"selling_forbidden"`
	Standings        []Standing  `json:"standings,omitempty"`
}

// Current returns the party whose turn it is, or nil when there are no parties
func (gs *GameState) Current() *Party {
	if gs.CurrentParty < 0 || gs.CurrentParty >= len(gs.Parties) {
		return nil
	}
	return &gs.Parties[gs.CurrentParty]
}

// Gavel returns the gavel holder, or nil when there are no parties
func (gs *GameState) Gavel() *Party {
	if gs.GavelHolder < 0 || gs.GavelHolder >= len(gs.Parties) {
		return nil
	}
	return &gs.Parties[gs.GavelHolder]
}

// IsGameOver reports whether the state is terminal
func (gs *GameState) IsGameOver() bool {
	return gs.Phase == PhaseGameOver
}

// Clone returns a deep copy that shares no mutable memory with gs
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Parties = cloneSlice(gs.Parties)
	out.Deck = cloneSlice(gs.Deck)
	out.Discard = cloneSlice(gs.Discard)
	out.Log = cloneSlice(gs.Log)
	out.Standings = cloneSlice(gs.Standings)
	if gs.CurrentEvent != nil {
		card := *gs.CurrentEvent
		out.CurrentEvent = &card
	}
	if gs.Winner != nil {
		w := *gs.Winner
		out.Winner = &w
	}
	return &out
}

func (gs *GameState) logf(format string, args ...any) {
	gs.Log = append(gs.Log, fmt.Sprintf(format, args...))
}

// cloneSlice copies s, keeping nil and empty slices distinct for JSON output
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
