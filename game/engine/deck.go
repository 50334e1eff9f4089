package engine

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/multierr"
)

// CardKind is the closed set of event card identities
type CardKind string

const (
	KindRumor        CardKind = "rumor"
	KindVariety      CardKind = "variety"
	KindFrench       CardKind = "french"
	KindRational     CardKind = "rational"
	KindRot          CardKind = "rot"
	KindPlague       CardKind = "plague"
	KindInjection    CardKind = "injection"
	KindMargin       CardKind = "margin"
	KindCrashAuction CardKind = "crash_auction"
	KindCrashHaarlem CardKind = "crash_haarlem"
	KindCrashCourt   CardKind = "crash_court"
)

// IsCrash reports whether the card belongs to the crash category
func (k CardKind) IsCrash() bool {
	return k == KindCrashAuction || k == KindCrashHaarlem || k == KindCrashCourt
}

// Terminal reports whether drawing the card ends the game
func (k CardKind) Terminal() bool {
	return k == KindCrashHaarlem || k == KindCrashCourt
}

// Category groups cards by their narrative flavor
type Category string

const (
	CategoryMania  Category = "MANIA"
	CategoryPanic  Category = "PANIC"
	CategoryPolicy Category = "POLICY"
	CategoryCrash  Category = "CRASH"
)

// EventCard is one card of the event deck. Cards are values and never change
// once dealt.
type EventCard struct {
	ID          string   `json:"id"`
	Kind        CardKind `json:"kind"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	HeatDelta   int      `json:"heat_delta"`
}

var catalog = map[CardKind]EventCard{
	KindRumor: {
		Kind: KindRumor, Category: CategoryMania, HeatDelta: 1,
		Title:       "Tavern Rumors",
		Description: "Sailors in the harbor taverns swear the eastern fleet is coming home loaded with gold. Expectations climb. (Heat +1)",
	},
	KindVariety: {
		Kind: KindVariety, Category: CategoryMania, HeatDelta: 1,
		Title:       "A New Variety",
		Description: "A Haarlem botanist breeds a bulb with rare flame stripes and the nobility bids wildly. Every holder upgrades one Common to a Viceroy for free. (Heat +1)",
	},
	KindFrench: {
		Kind: KindFrench, Category: CategoryMania, HeatDelta: 1,
		Title:       "Orders from Versailles",
		Description: "A royal courier arrives with an order for every Augustus on the market. Augustus holders collect 500, Augustus shorters pay 500. (Heat +1)",
	},
	KindRational: {
		Kind: KindRational, Category: CategoryPanic, HeatDelta: -RationalDrop,
		Title:       "The Voice of Reason",
		Description: "A respected professor warns the town hall that prices have lost touch with value. (Heat -2 if heat is above 7)",
	},
	KindRot: {
		Kind: KindRot, Category: CategoryPanic, HeatDelta: -1,
		Title:       "Bulb Rot",
		Description: "Weeks of rain flood the cellars. Every Common or Viceroy costs the current Common base price to keep, every Augustus the current Viceroy base price. Bulbs you cannot pay for are discarded. (Heat -1)",
	},
	KindPlague: {
		Kind: KindPlague, Category: CategoryPanic, HeatDelta: -1,
		Title:       "The Plague Returns",
		Description: "The markets are closed by decree and doctors urge everyone to stay home. No selling this round. (Heat -1)",
	},
	KindInjection: {
		Kind: KindInjection, Category: CategoryPolicy,
		Title:       "The Bank Opens Its Vaults",
		Description: "The Bank of Amsterdam eases credit to rescue the market. Every trader receives 200 guilders.",
	},
	KindMargin: {
		Kind: KindMargin, Category: CategoryPolicy,
		Title:       "Margin Call",
		Description: "The bank judges the market too risky and calls in collateral. Pay 200 per loan and 500 per short position.",
	},
	KindCrashAuction: {
		Kind: KindCrashAuction, Category: CategoryCrash, HeatDelta: -FalseAlarmDrop,
		Title:       "The Failed Auction",
		Description: "The auctioneer's gavel falls and nobody bids. Is it a false alarm or a rehearsal for the end? (Heat -3, the game continues)",
	},
	KindCrashHaarlem: {
		Kind: KindCrashHaarlem, Category: CategoryCrash,
		Title:       "Panic in Haarlem",
		Description: "Panic spreads from Haarlem to Amsterdam like wildfire. The bubble bursts and the game ends with a standard liquidation.",
	},
	KindCrashCourt: {
		Kind: KindCrashCourt, Category: CategoryCrash,
		Title:       "The Court Voids the Contracts",
		Description: "To calm the riots the high court voids every debt contract. The game ends. Loans are forgiven but short positions still settle.",
	},
}

// normalKinds fixes the order in which normal cards are minted before shuffling
var normalKinds = []CardKind{
	KindRumor, KindVariety, KindFrench, KindRational,
	KindRot, KindPlague, KindInjection, KindMargin,
}

var crashKinds = []CardKind{KindCrashAuction, KindCrashHaarlem, KindCrashCourt}

// CardCatalog returns the template card for every kind, normal kinds first
func CardCatalog() []EventCard {
	out := make([]EventCard, 0, len(normalKinds)+len(crashKinds))
	for _, k := range normalKinds {
		out = append(out, catalog[k])
	}
	for _, k := range crashKinds {
		out = append(out, catalog[k])
	}
	return out
}

// LookupCard returns the template for a kind
func LookupCard(kind CardKind) (EventCard, bool) {
	card, ok := catalog[kind]
	return card, ok
}

// DeckComposition is the multiplicity table of the normal cards. The three
// crash cards are always added once each.
type DeckComposition struct {
	Rumor     int `json:"rumor" yaml:"rumor"`
	Variety   int `json:"variety" yaml:"variety"`
	French    int `json:"french" yaml:"french"`
	Rational  int `json:"rational" yaml:"rational"`
	Rot       int `json:"rot" yaml:"rot"`
	Plague    int `json:"plague" yaml:"plague"`
	Injection int `json:"injection" yaml:"injection"`
	Margin    int `json:"margin" yaml:"margin"`
}

// DefaultDeckComposition is the standard 15 normal card table
func DefaultDeckComposition() DeckComposition {
	return DeckComposition{
		Rumor:     4,
		Variety:   3,
		French:    1,
		Rational:  2,
		Rot:       2,
		Plague:    1,
		Injection: 1,
		Margin:    1,
	}
}

// IsZero reports whether no multiplicity was set
func (c DeckComposition) IsZero() bool {
	return c == DeckComposition{}
}

// Count returns the multiplicity of a normal kind
func (c DeckComposition) Count(kind CardKind) int {
	switch kind {
	case KindRumor:
		return c.Rumor
	case KindVariety:
		return c.Variety
	case KindFrench:
		return c.French
	case KindRational:
		return c.Rational
	case KindRot:
		return c.Rot
	case KindPlague:
		return c.Plague
	case KindInjection:
		return c.Injection
	case KindMargin:
		return c.Margin
	}
	return 0
}

// Total sums the normal card multiplicities
func (c DeckComposition) Total() int {
	total := 0
	for _, k := range normalKinds {
		total += c.Count(k)
	}
	return total
}

// ValidateDeckComposition reports every problem with a multiplicity table
func ValidateDeckComposition(c DeckComposition) error {
	var errs error
	for _, k := range normalKinds {
		if c.Count(k) < 0 {
			errs = multierr.Append(errs, fmt.Errorf("deck: %s count cannot be negative (%d)", k, c.Count(k)))
		}
	}
	if total := c.Total(); total != NormalDeckSize {
		errs = multierr.Append(errs, fmt.Errorf("deck: expected %d normal cards, got %d", NormalDeckSize, total))
	}
	return errs
}

// NewRand returns a deterministic generator for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// BuildDeck deals a fresh event deck. The normal cards are shuffled and the
// first TopStackSize of them form the top stack; the remaining normal cards
// and the crash cards are shuffled together beneath it, so no crash card can
// surface in the first TopStackSize draws.
func BuildDeck(rng *rand.Rand, comp DeckComposition) []EventCard {
	normal := make([]EventCard, 0, comp.Total())
	for _, k := range normalKinds {
		for i := 0; i < comp.Count(k); i++ {
			card := catalog[k]
			card.ID = fmt.Sprintf("%s-%d", k, i)
			normal = append(normal, card)
		}
	}
	shuffle(rng, normal)

	top := min(TopStackSize, len(normal))
	lower := make([]EventCard, 0, len(normal)-top+len(crashKinds))
	lower = append(lower, normal[top:]...)
	for _, k := range crashKinds {
		card := catalog[k]
		card.ID = string(k)
		lower = append(lower, card)
	}
	shuffle(rng, lower)

	deck := make([]EventCard, 0, len(normal)+len(crashKinds))
	deck = append(deck, normal[:top]...)
	return append(deck, lower...)
}

func shuffle(rng *rand.Rand, cards []EventCard) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
