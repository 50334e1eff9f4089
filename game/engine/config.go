package engine

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Seat describes one chair at the table
type Seat struct {
	Name    string  `json:"name" yaml:"name"`
	AI      bool    `json:"ai" yaml:"ai"`
	Profile Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// GameConfig describes a table: who sits at it and which deck is dealt
type GameConfig struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Seats       []Seat          `json:"seats" yaml:"seats"`
	Deck        DeckComposition `json:"deck" yaml:"deck"`
	AutoDraw    bool            `json:"auto_draw" yaml:"auto_draw"`
}

// ValidateGameConfig validates a table configuration, reporting every problem
// found rather than stopping at the first one
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	var errs error
	if strings.TrimSpace(config.Name) == "" {
		errs = multierr.Append(errs, fmt.Errorf("config validation: name is required"))
	}
	if strings.TrimSpace(config.Description) == "" {
		errs = multierr.Append(errs, fmt.Errorf("config validation: description is required"))
	}

	if n := len(config.Seats); n < 1 || n > MaxParties {
		errs = multierr.Append(errs, fmt.Errorf("config validation: seats must be between 1 and %d, got %d", MaxParties, n))
	}
	for i, seat := range config.Seats {
		if strings.TrimSpace(seat.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("config validation: seat %d name is required", i+1))
		}
		if !seat.Profile.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("config validation: seat %d has unknown profile %q", i+1, seat.Profile))
		}
		if seat.AI && seat.Profile == "" {
			errs = multierr.Append(errs, fmt.Errorf("config validation: seat %d is a bot and needs a profile", i+1))
		}
	}

	if !config.Deck.IsZero() {
		if err := ValidateDeckComposition(config.Deck); err != nil {
			for _, e := range multierr.Errors(err) {
				errs = multierr.Append(errs, fmt.Errorf("config validation: %w", e))
			}
		}
	}

	return errs
}

// DefaultGameConfig is the classic four seat table: one trader and three
// bots cycling through the profiles
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "One human trader against three bots, standard deck",
		Seats:       DefaultSeats(4),
		Deck:        DefaultDeckComposition(),
	}
}

// DefaultSeats seats a human in chair 0 and bots everywhere else, with
// profiles assigned in Conservative, Balanced, Aggressive order
func DefaultSeats(n int) []Seat {
	seats := make([]Seat, 0, max(n, 0))
	for i := 0; i < n; i++ {
		if i == 0 {
			seats = append(seats, Seat{Name: "You (Trader)"})
			continue
		}
		profile := botProfiles[(i-1)%len(botProfiles)]
		seats = append(seats, Seat{
			Name:    fmt.Sprintf("Bot %d [%s]", i, profile),
			AI:      true,
			Profile: profile,
		})
	}
	return seats
}

var botProfiles = []Profile{Conservative, Balanced, Aggressive}
