package engine

import "testing"

func TestBasePriceIncreasesWithHeatAndRank(t *testing.T) {
	for heat := MinHeat; heat <= MaxHeat; heat++ {
		for i := 1; i < len(Varieties); i++ {
			lower, higher := BasePrice(heat, Varieties[i-1]), BasePrice(heat, Varieties[i])
			if higher <= lower {
				t.Errorf("Expected %s > %s at heat %d, got %d <= %d", Varieties[i], Varieties[i-1], heat, higher, lower)
			}
		}
		if heat == MinHeat {
			continue
		}
		for _, v := range Varieties {
			if BasePrice(heat, v) <= BasePrice(heat-1, v) {
				t.Errorf("Expected %s price to rise from heat %d to %d", v, heat-1, heat)
			}
		}
	}
}

func TestBasePriceClampsHeat(t *testing.T) {
	if got := BasePrice(0, Common); got != 30 {
		t.Errorf("Expected heat 0 to clamp to 30, got %d", got)
	}
	if got := BasePrice(42, Augustus); got != 40000 {
		t.Errorf("Expected heat 42 to clamp to 40000, got %d", got)
	}
	if got := BasePrice(5, Viceroy); got != 350 {
		t.Errorf("Expected Viceroy at heat 5 to be 350, got %d", got)
	}
}

func TestSupplyZone(t *testing.T) {
	tests := []struct {
		current, max, want int
	}{
		{30, 30, 0},
		{29, 30, 0},
		{25, 30, 0},
		{24, 30, 1},
		{19, 30, 1},
		{18, 30, 2},
		{13, 30, 2},
		{12, 30, 3},
		{7, 30, 3},
		{6, 30, 4},
		{5, 30, 4},
		{0, 30, 4},
		{0, 0, 4},
	}
	for _, tt := range tests {
		if got := SupplyZone(tt.current, tt.max); got != tt.want {
			t.Errorf("SupplyZone(%d, %d): expected %d, got %d", tt.current, tt.max, tt.want, got)
		}
	}
}

func TestPremiumOutOfRange(t *testing.T) {
	if got := Premium(Augustus, -1); got != 0 {
		t.Errorf("Expected 0 for negative zone, got %d", got)
	}
	if got := Premium(Augustus, NumZones); got != 0 {
		t.Errorf("Expected 0 for zone past the table, got %d", got)
	}
	if got := Premium(Augustus, 4); got != 800 {
		t.Errorf("Expected Augustus zone 4 premium 800, got %d", got)
	}
}

func TestBuyPriceNeverBelowSellPrice(t *testing.T) {
	for heat := MinHeat; heat <= MaxHeat; heat++ {
		for _, v := range Varieties {
			maxSupply := 30
			for supply := 0; supply <= maxSupply; supply++ {
				m := Market{Heat: heat}
				m.Supply[v] = supply
				m.MaxSupply[v] = maxSupply

				buy, sell := m.BuyPrice(v), m.SellPrice(v)
				if buy < sell {
					t.Fatalf("Expected buy >= sell for %s at heat %d supply %d, got %d < %d", v, heat, supply, buy, sell)
				}
				if supply == maxSupply && buy != sell {
					t.Errorf("Expected buy == sell at full supply for %s, got %d != %d", v, buy, sell)
				}
			}
		}
	}
}

func TestBuyPriceScenarioFullSupply(t *testing.T) {
	gs := newTestState(t, 4)
	if got := gs.Market.BuyPrice(Common); got != 30 {
		t.Fatalf("Expected Common buy price 30 at full supply, got %d", got)
	}

	next := Apply(gs, PerformAction{Kind: Buy, Variety: Common})
	if !Applied(gs, next) {
		t.Fatal("Expected buy to be applied")
	}
	if next.Market.Supply[Common] != 29 {
		t.Errorf("Expected Common supply 29, got %d", next.Market.Supply[Common])
	}
	if got := next.Market.BuyPrice(Common); got != 30 {
		t.Errorf("Expected Common buy price to stay 30 at 29/30, got %d", got)
	}
}

func TestBuyPriceScenarioScarceSupply(t *testing.T) {
	m := Market{Heat: 1, Supply: Counts{5, 20, 5}, MaxSupply: Counts{30, 20, 5}}
	if got := m.BuyPrice(Common); got != 130 {
		t.Errorf("Expected Common buy price 130 at 5/30, got %d", got)
	}
	if got := m.SellPrice(Common); got != 30 {
		t.Errorf("Expected Common sell price 30, got %d", got)
	}
}

func TestQuote(t *testing.T) {
	m := Market{Heat: 4, Supply: Counts{30, 10, 1}, MaxSupply: Counts{30, 20, 5}}
	quotes := m.Quote()
	if len(quotes) != NumVarieties {
		t.Fatalf("Expected %d quotes, got %d", NumVarieties, len(quotes))
	}

	aug := quotes[Augustus]
	if aug.Variety != Augustus {
		t.Errorf("Expected third row to be Augustus, got %s", aug.Variety)
	}
	if aug.Zone != 4 || aug.Premium != 800 {
		t.Errorf("Expected Augustus zone 4 premium 800, got zone %d premium %d", aug.Zone, aug.Premium)
	}
	if aug.BuyPrice != 1600 || aug.SellPrice != 800 {
		t.Errorf("Expected Augustus buy 1600 sell 800, got %d/%d", aug.BuyPrice, aug.SellPrice)
	}
	if aug.CrashPrice != 100 {
		t.Errorf("Expected Augustus crash price 100, got %d", aug.CrashPrice)
	}

	vic := quotes[Viceroy]
	if vic.Zone != 2 || vic.BuyPrice != 250 {
		t.Errorf("Expected Viceroy zone 2 buy 250, got zone %d buy %d", vic.Zone, vic.BuyPrice)
	}
}
