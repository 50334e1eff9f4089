// Package session provides session management for Tulip Mania.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Idle session cleanup
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine.Game, bot.Policy and game ID, so
// tables never share state.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Sessions live in memory only; a restart of the process
// loses them.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
//	go manager.RunJanitor(ctx, time.Minute, 2*time.Hour)
package session
