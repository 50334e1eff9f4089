// Package websocket pushes Tulip Mania snapshots to browsers and other
// watchers.
//
// Architecture:
//
// A central Hub keeps the set of connected clients per session. Every
// client has a write goroutine fed by a buffered channel and a read
// goroutine that only watches for disconnects. Clients that fall behind are
// dropped.
//
// Message Protocol:
//
// Messages are JSON objects:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "round_end", "data": {...}}
//
// Watchers never send actions over the socket; they use the REST API.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID, currentState)
//	hub.BroadcastToSession(sessionID, state)
package websocket
