// Package mcp exposes Tulip Mania to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package, and the JSON answer is rendered as plain text an agent
// can read. No game logic lives here.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state, market_quote, legal_actions, game_log
//   - draw_event, perform_action, end_turn, pass_gavel, bot_step
//   - list_configs, game_results, game_instructions
//
// Transport Modes:
//
// The main package serves the same MCP server two ways:
//   - Stdio: for local MCP clients, backed by an internal HTTP API when no
//     external one answers
//   - HTTP: POST /mcp next to the REST API
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
