// Package bot holds the rule based trading policy of the AI seats.
//
// Decide and GavelDecision are pure functions of a snapshot and a random
// source. Policy wraps them for a driver: it reports which bot action is due
// and how long to pause before submitting it.
package bot
