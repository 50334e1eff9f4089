// Package api provides the HTTP REST API for Tulip Mania tables.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 - Deal a new game {config_id, seed}
//   - GET    /api/sessions                 - List sessions (sort, order, limit)
//   - GET    /api/sessions/{id}            - Session details and snapshot
//   - DELETE /api/sessions/{id}            - Drop a session
//   - POST   /api/sessions/{id}/restart    - Redeal with the same table {seed}
//
// Game state:
//   - GET /api/sessions/{id}/state - Full snapshot
//   - GET /api/sessions/{id}/quote - Buy and sell prices per variety
//   - GET /api/sessions/{id}/legal - What the party on the clock may do
//   - GET /api/sessions/{id}/log   - Paged game log (page, limit, order)
//
// Game operations:
//   - POST /api/sessions/{id}/draw      - Draw the round's event card
//   - POST /api/sessions/{id}/action    - Spend an action point {kind, variety}
//   - POST /api/sessions/{id}/end-turn  - Pass the turn
//   - POST /api/sessions/{id}/gavel     - Close the round {bet_more}
//   - POST /api/sessions/{id}/bots/step - One bot move
//   - POST /api/sessions/{id}/bots/run  - Bot moves until a human is due {max_steps}
//
// Other:
//   - GET/POST /api/configs, GET /api/configs/{name}
//   - GET /api/results?limit=N - Finished games from the journal
//   - GET /api/cards           - Event card catalog
//   - GET /api/health
//   - GET /ws?session={id}     - Live snapshots over WebSocket
//
// A rejected action is not an HTTP error: the response is 200 with
// "applied": false and the unchanged snapshot. Errors use
//
//	{"error": "message"}
//
// with 400 for unparseable actions, 404 for unknown sessions or configs and
// 409 when a bot step is requested while no bot is due.
//
// Unless disabled with WithBackgroundBots(false), the server plays bot seats
// in the background after every applied human action.
package api
