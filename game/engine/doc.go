// Package engine provides the rules of Tulip Mania.
//
// The engine package implements the game mechanics including:
//   - Heat and scarcity driven pricing
//   - The stratified event deck with crash cards in the lower stack
//   - Trading actions (buy, sell, loan, repay, short) and their gates
//   - Event card resolution and the heat 10 meltdown
//   - Endgame liquidation and winner selection
//
// Core Types:
//
// GameState is an immutable snapshot of a game. Apply is the only
// transition function: it takes a snapshot and an Action and returns the next
// snapshot. Illegal actions are silent no-ops; Apply returns the very same
// pointer, which Applied detects. Game wraps the latest snapshot of a long
// lived session and implements the Engine interface.
//
// Usage:
//
//	state := engine.Apply(nil, engine.StartGame{PartyCount: 4, Seed: 42})
//	next := engine.Apply(state, engine.PerformAction{Kind: engine.Buy, Variety: engine.Common})
//	if !engine.Applied(state, next) {
//		// rejected, state is unchanged
//	}
//
// Game Rules:
//
// Each round the gavel holder draws an event card, then every party spends up
// to two action points in turn. When play returns to the gavel holder the
// gavel passes to the next party and another event is drawn. Two of the three
// crash cards end the game; every position is then liquidated at crash prices
// and the richest trader wins.
package engine
