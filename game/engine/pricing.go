package engine

// basePrices is indexed by heat-1, then by variety
var basePrices = [MaxHeat][NumVarieties]int{
	{30, 60, 100},
	{40, 80, 200},
	{60, 120, 400},
	{100, 200, 800},
	{150, 350, 1500},
	{250, 600, 3000},
	{400, 1000, 6000},
	{600, 1500, 12000},
	{1000, 3000, 25000},
	{2000, 6000, 40000},
}

// premiums is indexed by variety, then by supply zone
var premiums = [NumVarieties][NumZones]int{
	{0, 0, 10, 30, 100},
	{0, 20, 50, 100, 200},
	{0, 100, 200, 400, 800},
}

var crashPrices = [NumVarieties]int{20, 50, 100}

// NumZones is the number of supply zones; zone 0 is a full bank
const NumZones = 5

// ClampHeat bounds heat to the valid range
func ClampHeat(heat int) int {
	return max(MinHeat, min(MaxHeat, heat))
}

// BasePrice is the price a variety sells and shorts at for the given heat
func BasePrice(heat int, v Variety) int {
	if !v.Valid() {
		return 0
	}
	return basePrices[ClampHeat(heat)-1][v]
}

// SupplyZone buckets the remaining supply ratio into one of five zones
func SupplyZone(current, maxSupply int) int {
	if current <= 0 || maxSupply <= 0 {
		return NumZones - 1
	}
	ratio := float64(current) / float64(maxSupply)
	switch {
	case ratio > 0.8:
		return 0
	case ratio > 0.6:
		return 1
	case ratio > 0.4:
		return 2
	case ratio > 0.2:
		return 3
	}
	return 4
}

// Premium is the scarcity surcharge for buying a variety in the given zone
func Premium(v Variety, zone int) int {
	if !v.Valid() || zone < 0 || zone >= NumZones {
		return 0
	}
	return premiums[v][zone]
}

// CrashPrice is the liquidation value of one unit at game end
func CrashPrice(v Variety) int {
	if !v.Valid() {
		return 0
	}
	return crashPrices[v]
}

// BuyPrice is base price plus the scarcity premium of the current supply
func (m Market) BuyPrice(v Variety) int {
	if !v.Valid() {
		return 0
	}
	return BasePrice(m.Heat, v) + Premium(v, SupplyZone(m.Supply[v], m.MaxSupply[v]))
}

// SellPrice is the base price; premiums are never refunded
func (m Market) SellPrice(v Variety) int {
	return BasePrice(m.Heat, v)
}

// PriceQuote is one row of the market price sheet
type PriceQuote struct {
	Variety    Variety `json:"variety"`
	BasePrice  int     `json:"base_price"`
	Zone       int     `json:"zone"`
	Premium    int     `json:"premium"`
	BuyPrice   int     `json:"buy_price"`
	SellPrice  int     `json:"sell_price"`
	CrashPrice int     `json:"crash_price"`
	Supply     int     `json:"supply"`
	MaxSupply  int     `json:"max_supply"`
}

// Quote returns the price sheet for every variety
func (m Market) Quote() []PriceQuote {
	out := make([]PriceQuote, 0, NumVarieties)
	for _, v := range Varieties {
		zone := SupplyZone(m.Supply[v], m.MaxSupply[v])
		out = append(out, PriceQuote{
			Variety:    v,
			BasePrice:  BasePrice(m.Heat, v),
			Zone:       zone,
			Premium:    Premium(v, zone),
			BuyPrice:   m.BuyPrice(v),
			SellPrice:  m.SellPrice(v),
			CrashPrice: CrashPrice(v),
			Supply:     m.Supply[v],
			MaxSupply:  m.MaxSupply[v],
		})
	}
	return out
}
