package engine

// drawEvent pops the top card and resolves it on a private copy of the state
func drawEvent(gs *GameState) {
	card := gs.Deck[0]
	gs.Deck = gs.Deck[1:]
	gs.CurrentEvent = &card
	gs.Discard = append([]EventCard{card}, gs.Discard...)
	gs.SellingForbidden = false
	gs.logf("Event: %s (%s)", card.Title, card.Description)

	switch card.Kind {
	case KindCrashHaarlem:
		settle(gs, false, "Panic in Haarlem! The bubble bursts and every position is liquidated.")
		return
	case KindCrashCourt:
		settle(gs, true, "The court voids the contracts! All loan debt is forgiven.")
		return
	case KindCrashAuction:
		gs.Market.Heat = ClampHeat(gs.Market.Heat - FalseAlarmDrop)
		gs.logf("Nobody bids and the heat collapses (heat -%d). Trading continues...", FalseAlarmDrop)
	default:
		resolve(gs, card)
	}

	gs.Phase = PhasePlayerActions
	gs.CurrentParty = gs.GavelHolder
	gs.RemainingActions = ActionsPerTurn
	gs.Round++
}

// resolve applies the heat change and side effects of a normal card
func resolve(gs *GameState, card EventCard) {
	m := &gs.Market

	if card.Kind == KindRational {
		if m.Heat > RationalMinHeat {
			m.Heat -= RationalDrop
			gs.logf("The voice of reason cools the market.")
		} else {
			gs.logf("The voice of reason is ignored (heat is not above %d).", RationalMinHeat)
		}
	} else {
		m.Heat += card.HeatDelta
	}
	// clamp before fees so rot charges at the new heat
	m.Heat = ClampHeat(m.Heat)

	switch card.Kind {
	case KindRumor, KindRational:
	case KindVariety:
		upgradeVariety(gs)
	case KindFrench:
		for i := range gs.Parties {
			p := &gs.Parties[i]
			change := 0
			if p.Inventory[Augustus] > 0 {
				change += FrenchBonus
			}
			if p.Shorts[Augustus] > 0 {
				change -= FrenchPenalty
			}
			if change != 0 {
				p.Cash += change
				gs.logf("%s: %+d from the French order.", p.Name, change)
			}
		}
	case KindRot:
		chargeRot(gs)
	case KindPlague:
		gs.SellingForbidden = true
		gs.logf("The plague closes the markets. No selling this round.")
	case KindInjection:
		for i := range gs.Parties {
			gs.Parties[i].Cash += InjectionAmount
		}
		gs.logf("The bank injects liquidity: every trader receives %s.", money(InjectionAmount))
	case KindMargin:
		for i := range gs.Parties {
			p := &gs.Parties[i]
			fine := p.Loans*MarginLoanFine + p.Shorts.Total()*MarginShortFine
			if fine > 0 {
				p.Cash -= fine
				gs.logf("%s pays a margin call of %s.", p.Name, money(fine))
			}
		}
	case KindCrashAuction, KindCrashHaarlem, KindCrashCourt:
		// handled by drawEvent
	}

	if m.Heat >= MaxHeat {
		meltdown(gs)
	}
}

// upgradeVariety swaps one Common for one Viceroy with the bank for every
// holder, so supply plus holdings stays constant for both varieties
func upgradeVariety(gs *GameState) {
	m := &gs.Market
	upgraded := 0
	for i := range gs.Parties {
		p := &gs.Parties[i]
		if p.Inventory[Common] == 0 {
			continue
		}
		if m.Supply[Viceroy] == 0 {
			gs.logf("%s cannot upgrade: the bank has no Viceroy left.", p.Name)
			continue
		}
		p.Inventory[Common]--
		m.Supply[Common]++
		p.Inventory[Viceroy]++
		m.Supply[Viceroy]--
		upgraded++
	}
	if upgraded > 0 {
		gs.logf("%d trader(s) upgrade a Common to a Viceroy.", upgraded)
	}
}

// chargeRot collects the maintenance fee on every holding. A party that cannot
// cover a whole variety pays for what it can afford and discards the rest to
// the bank.
func chargeRot(gs *GameState) {
	m := &gs.Market
	commonFee := BasePrice(m.Heat, Common)
	viceroyFee := BasePrice(m.Heat, Viceroy)
	fees := [NumVarieties]int{commonFee, commonFee, viceroyFee}

	for i := range gs.Parties {
		p := &gs.Parties[i]
		for _, v := range Varieties {
			held := p.Inventory[v]
			if held == 0 {
				continue
			}
			fee := fees[v]
			if total := held * fee; p.Cash >= total {
				p.Cash -= total
				gs.logf("%s pays %s upkeep on %d %s.", p.Name, money(total), held, v)
				continue
			}
			affordable := 0
			if p.Cash > 0 {
				affordable = min(p.Cash/fee, held)
			}
			discarded := held - affordable
			p.Cash -= affordable * fee
			p.Inventory[v] -= discarded
			m.Supply[v] += discarded
			gs.logf("%s pays upkeep on %d %s and discards %d.", p.Name, affordable, v, discarded)
		}
	}
}

// meltdown force-closes every open short at the punitive settlement price.
// Cash may go negative.
func meltdown(gs *GameState) {
	gs.logf("Meltdown! Heat reached %d and every short is force-closed.", MaxHeat)
	for i := range gs.Parties {
		p := &gs.Parties[i]
		open := p.Shorts.Total()
		if open == 0 {
			continue
		}
		cost := open * MeltdownPrice
		p.Cash -= cost
		p.Shorts = Counts{}
		gs.logf("%s closes %d short(s) and loses %s.", p.Name, open, money(cost))
	}
}
