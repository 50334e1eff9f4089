package engine

import (
	"testing"

	"go.uber.org/multierr"
)

func TestBuildDeckPlacesCrashCardsInLowerStack(t *testing.T) {
	comp := DefaultDeckComposition()
	for seed := uint64(0); seed < 200; seed++ {
		deck := BuildDeck(NewRand(seed), comp)
		if len(deck) != EventDeckSize {
			t.Fatalf("seed %d: expected %d cards, got %d", seed, EventDeckSize, len(deck))
		}

		crashes := map[CardKind]int{}
		for i, card := range deck {
			if !card.Kind.IsCrash() {
				continue
			}
			crashes[card.Kind]++
			if i < TopStackSize {
				t.Errorf("seed %d: crash card %s at index %d, expected >= %d", seed, card.Kind, i, TopStackSize)
			}
		}
		if len(crashes) != CrashCardCount {
			t.Errorf("seed %d: expected %d distinct crash cards, got %d", seed, CrashCardCount, len(crashes))
		}
		for kind, n := range crashes {
			if n != 1 {
				t.Errorf("seed %d: expected one %s, got %d", seed, kind, n)
			}
		}
	}
}

func TestBuildDeckHonorsComposition(t *testing.T) {
	comp := DefaultDeckComposition()
	deck := BuildDeck(NewRand(3), comp)

	counts := map[CardKind]int{}
	ids := map[string]bool{}
	for _, card := range deck {
		counts[card.Kind]++
		if ids[card.ID] {
			t.Errorf("Expected unique card IDs, %s appears twice", card.ID)
		}
		ids[card.ID] = true
		if card.Title == "" || card.Description == "" {
			t.Errorf("Expected card %s to carry display text", card.ID)
		}
	}
	for _, kind := range normalKinds {
		if counts[kind] != comp.Count(kind) {
			t.Errorf("Expected %d %s cards, got %d", comp.Count(kind), kind, counts[kind])
		}
	}
}

func TestBuildDeckIsDeterministicPerSeed(t *testing.T) {
	a := BuildDeck(NewRand(99), DefaultDeckComposition())
	b := BuildDeck(NewRand(99), DefaultDeckComposition())
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("Expected identical decks for the same seed, differ at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}

	different := false
	for seed := uint64(100); seed < 110 && !different; seed++ {
		c := BuildDeck(NewRand(seed), DefaultDeckComposition())
		for i := range a {
			if a[i].ID != c[i].ID {
				different = true
				break
			}
		}
	}
	if !different {
		t.Error("Expected different seeds to produce different orders")
	}
}

func TestValidateDeckComposition(t *testing.T) {
	if err := ValidateDeckComposition(DefaultDeckComposition()); err != nil {
		t.Errorf("Expected default composition to be valid, got %v", err)
	}

	rumorSix := DefaultDeckComposition()
	rumorSix.Rumor = 6
	if err := ValidateDeckComposition(rumorSix); err == nil {
		t.Error("Expected a 17 card composition to be rejected")
	}

	bad := DefaultDeckComposition()
	bad.Rumor = -1
	err := ValidateDeckComposition(bad)
	if err == nil {
		t.Fatal("Expected an error for a negative count")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("Expected 2 problems (negative count and wrong total), got %d: %v", n, err)
	}
}

func TestCardCatalog(t *testing.T) {
	cards := CardCatalog()
	if len(cards) != len(normalKinds)+CrashCardCount {
		t.Fatalf("Expected %d catalog entries, got %d", len(normalKinds)+CrashCardCount, len(cards))
	}
	for _, card := range cards {
		if card.Kind.IsCrash() != (card.Category == CategoryCrash) {
			t.Errorf("Expected %s crash flag to match its category %s", card.Kind, card.Category)
		}
	}

	auction, ok := LookupCard(KindCrashAuction)
	if !ok || auction.HeatDelta != -FalseAlarmDrop {
		t.Errorf("Expected false alarm heat delta -%d, got %d", FalseAlarmDrop, auction.HeatDelta)
	}
	if auction.Kind.Terminal() {
		t.Error("Expected the false alarm not to end the game")
	}
	if !KindCrashCourt.Terminal() || !KindCrashHaarlem.Terminal() {
		t.Error("Expected both liquidation crashes to be terminal")
	}
}
