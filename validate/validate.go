// Command validate checks the table configurations in a directory
// (default ../configs). For every .json, .yaml and .yml file it checks:
//   - the file decodes
//   - name, description and seats are valid and bots carry a profile
//   - a custom deck composition holds exactly the normal card count
//   - sample deals keep the crash cards out of the top stack
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/tulip-mania/game/engine"
)

// sampleDeals is how many seeds each config is dealt with
const sampleDeals = 64

// ValidationResult captures the outcome of validating a single file.
// Errors lists the problems found; Info carries the summary of a valid file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(err error) {
	r.Valid = false
	for _, e := range multierr.Errors(err) {
		r.Errors = append(r.Errors, e.Error())
	}
}

// decodeConfig reads a config file, picking the decoder by extension
func decodeConfig(filePath string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config engine.GameConfig
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return &config, nil
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := decodeConfig(filePath)
	if err != nil {
		result.fail(err)
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail(err)
		return result
	}

	if err := validateDeals(config, sampleDeals); err != nil {
		result.fail(err)
		return result
	}

	bots := 0
	for _, seat := range config.Seats {
		if seat.AI {
			bots++
		}
	}
	deck := "standard"
	if !config.Deck.IsZero() {
		deck = "custom"
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Seats: %d (%d bots)", len(config.Seats), bots),
		fmt.Sprintf("✓ Deck: %s, %d sample deals", deck, sampleDeals),
	)
	if config.AutoDraw {
		result.Info = append(result.Info, "✓ Auto draw: on")
	}
	return result
}

// validateDeals deals the config with seeds 1..n and checks the deck shape
// of every opening state
func validateDeals(config *engine.GameConfig, n int) error {
	var errs error
	for seed := uint64(1); seed <= uint64(n); seed++ {
		game, err := engine.NewGame(config, seed)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("seed %d: %w", seed, err))
		}

		gs := game.State()
		if want := engine.NormalDeckSize + engine.CrashCardCount; len(gs.Deck) != want {
			errs = multierr.Append(errs, fmt.Errorf("seed %d: deck has %d cards, expected %d", seed, len(gs.Deck), want))
		}
		for i, card := range gs.Deck {
			if i < engine.TopStackSize && card.Kind.IsCrash() {
				errs = multierr.Append(errs, fmt.Errorf("seed %d: crash card %s at draw %d", seed, card.Kind, i+1))
			}
		}
		if len(gs.Parties) != len(config.Seats) {
			errs = multierr.Append(errs, fmt.Errorf("seed %d: dealt %d parties for %d seats", seed, len(gs.Parties), len(config.Seats)))
		}
	}
	return errs
}

// configFiles lists the config files in dir, sorted by name
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every config in the directory given as the first argument
// (default ../configs), printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
