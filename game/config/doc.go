// Package config provides table configuration management for Tulip Mania.
//
// The config package handles:
//   - Loading table configurations from JSON or YAML files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// A table configuration names the seats (human or bot, with a bot
// personality), an optional event deck composition and whether events are
// drawn automatically. Files live in one directory with a .json, .yaml or
// .yml extension; the file name without extension is the config ID.
//
//	name: Duel
//	description: One trader against an aggressive bot
//	seats:
//	  - name: Trader
//	  - name: Bot
//	    ai: true
//	    profile: Aggressive
//
// The default table is "classic" when present, otherwise the first valid
// file, otherwise a built-in four seat table.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	table, err := manager.LoadConfig("duel")
//	configs, err := manager.ListConfigs()
package config
