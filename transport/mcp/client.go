package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/tulip-mania/game/engine"
	"github.com/wricardo/tulip-mania/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tulip Mania",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tulip Mania - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Trade tulip bulbs through the 1637 bubble and hold the highest net worth when
the market crashes. Nobody knows which crash card ends the game.

AVAILABLE TOOLS:
- create_session: Deal a new game (optional config_id and seed)
- list_sessions / get_session: Inspect sessions
- game_state: Full table summary
- market_quote: Buy and sell prices per variety
- legal_actions: What the party on the clock may do right now
- draw_event: Gavel holder draws the round's event card
- perform_action: Spend an action point (BUY, SELL, LOAN, REPAY, SHORT, PASS)
- end_turn: Hand the turn to the next party
- pass_gavel: Close the round
- bot_step: Let the bot on the clock make one move
- game_log: Read the game log
- list_configs: Available tables
- game_results: Finished games
- game_instructions: The full rules

Bots also move on their own after your actions, so re-read the state before deciding.`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Deal a new game with an optional table config and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the table config to use (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Deal seed for a reproducible game (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current table: round, heat, phase, event, market and every party",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "market_quote",
		Description: "Get buy, sell and crash prices for every variety",
		InputSchema: sessionSchema(nil),
	}, c.handleQuote)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_actions",
		Description: "List what the party on the clock may do right now",
		InputSchema: sessionSchema(nil),
	}, c.handleLegalActions)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_event",
		Description: "Draw the event card for the round (gavel holder, event_draw phase)",
		InputSchema: sessionSchema(nil),
	}, c.handleDrawEvent)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "perform_action",
		Description: "Spend one action point",
		InputSchema: sessionSchema(map[string]interface{}{
			"kind": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"BUY", "SELL", "LOAN", "REPAY", "SHORT", "PASS"},
				"description": "Action to perform",
			},
			"variety": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"Common", "Viceroy", "Augustus"},
				"description": "Variety for BUY, SELL and SHORT",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of why you are making this trade",
			},
		}, "kind"),
	}, c.handlePerformAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "End the current party's turn, forfeiting unused action points",
		InputSchema: sessionSchema(nil),
	}, c.handleEndTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pass_gavel",
		Description: "Close the round and pass the gavel to the left",
		InputSchema: sessionSchema(map[string]interface{}{
			"bet_more": map[string]interface{}{
				"type":        "boolean",
				"description": "Announce that you would keep betting (flavor only)",
			},
		}),
	}, c.handlePassGavel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_step",
		Description: "Let the bot on the clock make one move",
		InputSchema: sessionSchema(nil),
	}, c.handleBotStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_log",
		Description: "Read the game log, newest first by default",
		InputSchema: sessionSchema(map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number (default 1)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Lines per page (default 20, max 100)",
			},
			"order": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"asc", "desc"},
				"description": "Sort order (default desc)",
			},
		}),
	}, c.handleGameLog)

	// Reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available table configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_results",
		Description: "List recently finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "How many results to return (default 10)",
				},
			},
		},
	}, c.handleGameResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the full rules of Tulip Mania",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID := strings.TrimSpace(cast.ToString(args["session_id"]))
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID := cast.ToString(args["config_id"]); configID != "" {
		body["config_id"] = configID
	}
	if raw, ok := args["seed"]; ok && raw != nil {
		seed, err := cast.ToUint64E(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid seed: %v", err)), nil
		}
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\nWaiting on: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed, session.WaitingOn, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		round := 0
		if s.GameState != nil {
			round = s.GameState.Round
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Round: %d, Waiting on: %s, Created: %s)\n",
			s.ID, s.ConfigName, round, s.WaitingOn, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleQuote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/quote")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var quote []engine.PriceQuote
	if err := c.apiCall(ctx, "GET", path, nil, &quote); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatQuote(quote)), nil
}

func (c *Client) handleLegalActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/legal")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var legal service.LegalActionsResponse
	if err := c.apiCall(ctx, "GET", path, nil, &legal); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLegalActions(&legal)), nil
}

func (c *Client) postAction(ctx context.Context, request mcp.CallToolRequest, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleDrawEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.postAction(ctx, request, "/draw", nil)
}

func (c *Client) handlePerformAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	kind := strings.TrimSpace(cast.ToString(args["kind"]))
	if kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}

	// intent is for the caller's benefit only
	_ = args["intent"]

	body := map[string]string{"kind": kind}
	if variety := cast.ToString(args["variety"]); variety != "" {
		body["variety"] = variety
	}
	return c.postAction(ctx, request, "/action", body)
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.postAction(ctx, request, "/end-turn", nil)
}

func (c *Client) handlePassGavel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	betMore := cast.ToBool(arguments(request)["bet_more"])
	return c.postAction(ctx, request, "/gavel", map[string]bool{"bet_more": betMore})
}

func (c *Client) handleBotStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.postAction(ctx, request, "/bots/step", nil)
}

func (c *Client) handleGameLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/log")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := cast.ToString(args["order"]); order != "" {
		query.Set("order", order)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Game log page %d/%d (%d lines total)\n\n", history.Page, history.TotalPages, history.TotalLines)
	for _, entry := range history.Entries {
		fmt.Fprintf(&result, "%4d  %s\n", entry.Index, entry.Text)
	}
	if history.HasNext {
		result.WriteString("\nMore lines on the next page.")
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&result, "- %s: %s (%d seats, %d bots)\n  %s\n",
			cfg.ConfigID, cfg.Name, cfg.Seats, cfg.Bots, cfg.Description)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := cast.ToInt(arguments(request)["limit"])
	if limit <= 0 {
		limit = 10
	}

	var response struct {
		Count   int                  `json:"count"`
		Results []service.GameResult `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/results?limit=%d", limit), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No finished games recorded yet."), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Finished games (%d):\n\n", response.Count)
	for _, r := range response.Results {
		winner := r.WinnerName
		if winner == "" {
			winner = "nobody"
		}
		fmt.Fprintf(&result, "- %s on %s: %d rounds, ended by %s, winner %s\n",
			r.FinishedAt.Format("2006-01-02 15:04"), r.ConfigName, r.Rounds, r.CrashCard, winner)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `TULIP MANIA - RULES

Amsterdam, 1636. Tulip bulbs trade for the price of houses. Ride the bubble
and get out before it bursts.

SETUP
- Every party starts with 100 guilders and no bulbs.
- Three varieties trade at the bank: Common, Viceroy and Augustus.
- The market heat starts at 1 (of 10). Base prices rise with heat.

ROUND STRUCTURE
1. Event draw: the gavel holder draws an event card (round 1 has none).
2. Player actions: starting with the gavel holder, each party gets 2 action
   points. Spend them or end the turn.
3. Round end: the gavel holder passes the gavel to the left and heat rises.

ACTIONS (one action point each)
- BUY <variety>: pay the buy price. Scarce varieties carry a premium.
- SELL <variety>: receive the base price. Premiums are never refunded.
- LOAN: borrow 1000 (heat 3 or more, at most 2 loans).
- REPAY: pay back 1100 to clear a loan.
- SHORT <variety>: receive the sell price now and owe the bulb at the end
  (heat 5 or more).
- PASS: end your turn.

EVENTS
Mania cards raise heat, panic cards cool it, policy cards move cash. Three
crash cards wait at the bottom of the deck. The Failed Auction is a false
alarm. Panic in Haarlem ends the game with a standard liquidation. The Court
Voids the Contracts ends the game and forgives loans.

If heat reaches its peak the market melts down and the game ends.

END OF GAME
Bulbs liquidate at crash prices, shorts are covered, loans are repaid.
Highest net worth wins.

TIPS
- Use legal_actions to see what you may do and at what price.
- Bots act automatically after you. Re-read game_state before each decision.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nWaiting on: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed, session.WaitingOn,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Round %d | Heat %d/%d | Phase: %s\n", state.Round, state.Market.Heat, engine.MaxHeat, state.Phase)

	if gavel := state.Gavel(); gavel != nil {
		fmt.Fprintf(&result, "Gavel: %s", gavel.Name)
	}
	if state.Phase == engine.PhasePlayerActions {
		if current := state.Current(); current != nil {
			fmt.Fprintf(&result, " | On the clock: %s (%d actions left)", current.Name, state.RemainingActions)
		}
	}
	result.WriteString("\n")

	if state.CurrentEvent != nil {
		fmt.Fprintf(&result, "Event: %s - %s\n", state.CurrentEvent.Title, state.CurrentEvent.Description)
	}
	if state.SellingForbidden {
		result.WriteString("Selling is forbidden this round.\n")
	}
	fmt.Fprintf(&result, "Deck: %d cards left\n\n", len(state.Deck))

	result.WriteString("Market:\n")
	for _, v := range engine.Varieties {
		fmt.Fprintf(&result, "  %-9s supply %2d/%-2d buy %5d sell %5d\n",
			v, state.Market.Supply[v], state.Market.MaxSupply[v],
			state.Market.BuyPrice(v), state.Market.SellPrice(v))
	}

	result.WriteString("\nParties:\n")
	for _, p := range state.Parties {
		kind := "human"
		if p.IsAI {
			kind = "bot " + string(p.Profile)
		}
		fmt.Fprintf(&result, "  [%d] %s (%s): cash %d, bulbs C%d V%d A%d, shorts C%d V%d A%d, loans %d\n",
			p.ID, p.Name, kind, p.Cash,
			p.Inventory[engine.Common], p.Inventory[engine.Viceroy], p.Inventory[engine.Augustus],
			p.Shorts[engine.Common], p.Shorts[engine.Viceroy], p.Shorts[engine.Augustus],
			p.Loans)
	}

	if state.IsGameOver() {
		result.WriteString("\nGAME OVER\n")
		for _, s := range state.Standings {
			fmt.Fprintf(&result, "  #%d %s: %d\n", s.Rank, s.Name, s.NetWorth)
		}
	}

	if n := len(state.Log); n > 0 {
		result.WriteString("\nRecent log:\n")
		start := n - 5
		if start < 0 {
			start = 0
		}
		for _, line := range state.Log[start:] {
			fmt.Fprintf(&result, "  %s\n", line)
		}
	}

	return result.String()
}

func formatQuote(quote []engine.PriceQuote) string {
	var result strings.Builder
	result.WriteString("Variety    Base  Zone  Premium  Buy    Sell   Crash  Supply\n")
	for _, q := range quote {
		fmt.Fprintf(&result, "%-9s  %-5d %-5d %-8d %-6d %-6d %-6d %d/%d\n",
			q.Variety, q.BasePrice, q.Zone, q.Premium, q.BuyPrice, q.SellPrice, q.CrashPrice, q.Supply, q.MaxSupply)
	}
	return result.String()
}

func formatLegalActions(legal *service.LegalActionsResponse) string {
	var result strings.Builder
	who := legal.Party
	if legal.IsAI {
		who += " (bot)"
	}
	fmt.Fprintf(&result, "Phase: %s | Party: %s | Actions left: %d\n\n", legal.Phase, who, legal.RemainingActions)

	if legal.CanDrawEvent {
		result.WriteString("- draw_event\n")
	}
	if legal.CanPassGavel {
		result.WriteString("- pass_gavel\n")
	}
	for _, a := range legal.Actions {
		if a.Variety != "" {
			fmt.Fprintf(&result, "- %s %s (%d)\n", a.Kind, a.Variety, a.Price)
		} else {
			fmt.Fprintf(&result, "- %s (%d)\n", a.Kind, a.Price)
		}
	}
	if legal.CanEndTurn {
		result.WriteString("- end_turn\n")
	}
	if !legal.CanDrawEvent && !legal.CanPassGavel && !legal.CanEndTurn && len(legal.Actions) == 0 {
		result.WriteString("Nothing to do right now.\n")
	}
	return result.String()
}

func formatActionResult(result *service.ActionResult) string {
	var out strings.Builder
	if result.Applied {
		fmt.Fprintf(&out, "✓ %s", result.Action)
	} else {
		fmt.Fprintf(&out, "✗ %s", result.Action)
	}
	if result.Actor != "" {
		fmt.Fprintf(&out, " by %s", result.Actor)
	}
	out.WriteString("\n")
	if result.Message != "" {
		fmt.Fprintf(&out, "%s\n", result.Message)
	}
	for _, line := range result.NewLog {
		fmt.Fprintf(&out, "  %s\n", line)
	}
	out.WriteString("\n")
	out.WriteString(formatGameState(result.GameState))
	return out.String()
}
