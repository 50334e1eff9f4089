package engine

import "sort"

// NetWorth liquidates a party at crash prices. Shorts are bought back at the
// same prices; loans are repaid with interest unless forgiven.
func NetWorth(p Party, forgiveLoans bool) int {
	worth := p.Cash
	for _, v := range Varieties {
		worth += p.Inventory[v] * CrashPrice(v)
		worth -= p.Shorts[v] * CrashPrice(v)
	}
	if !forgiveLoans {
		worth -= p.Loans * RepayAmount
	}
	return worth
}

// settle ends the game. Each party's cash becomes its net worth and the first
// party holding the strictly greatest value wins.
func settle(gs *GameState, forgiveLoans bool, reason string) {
	gs.logf("%s", reason)

	standings := make([]Standing, 0, len(gs.Parties))
	winner := -1
	for i := range gs.Parties {
		p := &gs.Parties[i]
		p.Cash = NetWorth(*p, forgiveLoans)
		standings = append(standings, Standing{PartyID: p.ID, Name: p.Name, NetWorth: p.Cash})
		if winner < 0 || p.Cash > gs.Parties[winner].Cash {
			winner = i
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].NetWorth > standings[j].NetWorth
	})
	for i := range standings {
		standings[i].Rank = i + 1
		if i > 0 && standings[i].NetWorth == standings[i-1].NetWorth {
			standings[i].Rank = standings[i-1].Rank
		}
	}

	gs.Standings = standings
	gs.Phase = PhaseGameOver
	gs.RemainingActions = 0
	if winner >= 0 {
		id := gs.Parties[winner].ID
		gs.Winner = &id
		gs.logf("The winner is %s with a final net worth of %s guilders!", gs.Parties[winner].Name, money(gs.Parties[winner].Cash))
	}
}
