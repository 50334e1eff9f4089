package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/tulip-mania/game/engine"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "duel.json", `{
		"name": "Duel",
		"description": "One trader against one bot",
		"seats": [
			{"name": "Alice"},
			{"name": "Bot", "ai": true, "profile": "Balanced"}
		]
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "duel.json" {
		t.Errorf("Expected file name duel.json, got %s", result.File)
	}
	if !containsError(result.Info, "Seats: 2 (1 bots)") {
		t.Errorf("Expected seat summary, got %v", result.Info)
	}
	if !containsError(result.Info, "Deck: standard") {
		t.Errorf("Expected standard deck, got %v", result.Info)
	}
}

func TestValidateConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bots.yaml", `name: Bots
description: Three bots with a rumor heavy deck
auto_draw: true
seats:
  - {name: Cautious, ai: true, profile: Conservative}
  - {name: Steady, ai: true, profile: Balanced}
  - {name: Reckless, ai: true, profile: Aggressive}
deck:
  rumor: 5
  variety: 3
  french: 1
  rational: 1
  rot: 2
  plague: 1
  injection: 1
  margin: 1
`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if !containsError(result.Info, "Deck: custom") || !containsError(result.Info, "Auto draw: on") {
		t.Errorf("Unexpected summary %v", result.Info)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "broken.json", `{"name": "test", invalid json}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config for malformed JSON")
	}
	if !containsError(result.Errors, "invalid JSON") {
		t.Errorf("Expected 'invalid JSON' error, got: %v", result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !containsError(result.Errors, "failed to read file") {
		t.Errorf("Expected read error, got: %v", result.Errors)
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.json", `{
		"name": "",
		"description": "",
		"seats": [
			{"name": "Bot", "ai": true},
			{"name": "", "profile": "Reckless"}
		]
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Fatal("Expected invalid config")
	}

	for _, want := range []string{
		"name is required",
		"description is required",
		"seat 1 is a bot and needs a profile",
		"seat 2 name is required",
		"seat 2 has unknown profile",
	} {
		if !containsError(result.Errors, want) {
			t.Errorf("Expected error %q, got: %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_BadDeck(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deck.json", `{
		"name": "Short deck",
		"description": "Too few cards",
		"seats": [{"name": "Alice"}],
		"deck": {"rumor": 2}
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Fatal("Expected invalid config for a short deck")
	}
	if !containsError(result.Errors, "expected 15 normal cards, got 2") {
		t.Errorf("Expected deck size error, got: %v", result.Errors)
	}
}

func TestValidateDeals(t *testing.T) {
	if err := validateDeals(engine.DefaultGameConfig(), 16); err != nil {
		t.Errorf("Expected the default table to deal cleanly, got %v", err)
	}
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "b.yaml", "")
	writeConfig(t, dir, "a.json", "")
	writeConfig(t, dir, "c.yml", "")
	writeConfig(t, dir, "notes.txt", "")

	files, err := configFiles(dir)
	if err != nil {
		t.Fatalf("configFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 config files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.json" || filepath.Base(files[2]) != "c.yml" {
		t.Errorf("Expected sorted files, got %v", files)
	}
}
