// Package service provides the business logic layer for Tulip Mania.
//
// The service package implements:
//   - Multi-session game management
//   - Table configuration loading
//   - Action submission for humans and bots
//   - Bot driving with optional pacing
//   - Game log paging and journaling of results
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages table configuration loading and validation.
// Recorder is an optional append-only journal of actions and results.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns one engine.Game and one bot.Policy. The
// engine is a pure reducer; the service is the driver that decides when a bot
// should act and how long to pause first.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameService.PerformAction(ctx, info.ID, "BUY", "Common")
//	run, err := gameService.RunBots(ctx, info.ID, 0)
//
// Rejected actions are not errors: ActionResult.Applied is false and the
// state is unchanged.
package service
