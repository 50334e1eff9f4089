package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/tulip-mania/game/bot"
	"github.com/wricardo/tulip-mania/game/engine"
)

// DefaultBotSteps bounds RunBots when the caller passes no limit
const DefaultBotSteps = 500

var (
	// ErrInvalidAction is returned for action names or varieties that do not parse
	ErrInvalidAction = errors.New("invalid action")
	// ErrNotBotTurn is returned by StepBot when a human must act or the game is over
	ErrNotBotTurn = errors.New("no bot is due to act")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	recorder Recorder
	observer Observer
	botDelay time.Duration
	mu       sync.RWMutex
}

// Option customizes a game service
type Option func(*gameServiceImpl)

// WithRecorder journals every applied action and finished game
func WithRecorder(r Recorder) Option {
	return func(s *gameServiceImpl) { s.recorder = r }
}

// WithObserver registers a callback for every applied action
func WithObserver(o Observer) Option {
	return func(s *gameServiceImpl) { s.observer = o }
}

// WithBotDelay sets the base pause RunBots takes before each bot move
func WithBotDelay(d time.Duration) Option {
	return func(s *gameServiceImpl) { s.botDelay = d }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		GameID:         sess.GameID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		Seed:           sess.Engine.Seed(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		WaitingOn:      waitingOn(sess),
		GameState:      sess.Engine.State(),
		GameConfig:     sess.Config,
	}
}

// waitingOn names who the table is waiting for
func waitingOn(sess *Session) string {
	gs := sess.Engine.State()
	switch {
	case gs.IsGameOver():
		return "nobody"
	case bot.NeedsHuman(gs, sess.Config.AutoDraw):
		return "human"
	}
	return "bot"
}

func pickSeed(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return rand.Uint64()
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if req.ConfigID != "" {
		config, err = s.configs.LoadConfig(req.ConfigID)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", req.ConfigID, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", req.ConfigID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", req.ConfigID, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config, pickSeed(req.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.recordStart(ctx, sess)

	info := s.sessionInfo(sess)
	if req.ConfigID != "" {
		info.ConfigName = req.ConfigID
	}
	return info, nil
}

// GetSession retrieves session information. It stamps the access time, so it
// takes the write lock.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RestartGame deals a new game at the same table. A nil seed picks a random one.
func (s *gameServiceImpl) RestartGame(ctx context.Context, sessionID string, seed *uint64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	next := pickSeed(seed)
	if sess.Engine.Restart(next) == nil {
		return nil, fmt.Errorf("failed to restart game: could not deal table %q", sess.Config.Name)
	}
	sess.GameID = uuid.NewString()
	sess.Policy = bot.NewPolicy(next)
	sess.Seq = 0
	sess.planned, sess.plannedFor = nil, nil
	s.recordStart(ctx, sess)

	if s.observer != nil {
		s.observer(sess.ID, &ActionResult{
			Applied:   true,
			Action:    "restart",
			Message:   "Game restarted",
			GameState: sess.Engine.State(),
			Events:    []GameEvent{{Type: "restart", Message: "A new game was dealt", Timestamp: time.Now()}},
		})
	}
	return s.sessionInfo(sess), nil
}

// DrawEvent reveals the next event card
func (s *gameServiceImpl) DrawEvent(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.submit(ctx, sessionID, engine.DrawEvent{})
}

// PerformAction spends an action point. PASS ends the turn.
func (s *gameServiceImpl) PerformAction(ctx context.Context, sessionID, kind, variety string) (*ActionResult, error) {
	k, err := engine.ParseActionKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if k == engine.Pass {
		return s.submit(ctx, sessionID, engine.EndTurn{})
	}

	a := engine.PerformAction{Kind: k}
	if k.NeedsVariety() {
		v, err := engine.ParseVariety(variety)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		a.Variety = v
	}
	return s.submit(ctx, sessionID, a)
}

// EndTurn hands the turn to the next party
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.submit(ctx, sessionID, engine.EndTurn{})
}

// PassGavel records the gavel holder's decision and moves the gavel on
func (s *gameServiceImpl) PassGavel(ctx context.Context, sessionID string, betMore bool) (*ActionResult, error) {
	return s.submit(ctx, sessionID, engine.PassGavel{BetMore: betMore})
}

func (s *gameServiceImpl) submit(ctx context.Context, sessionID string, a engine.Action) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return s.apply(ctx, sess, a, ""), nil
}

// StepBot submits the next bot move, gavel decision or automatic draw
func (s *gameServiceImpl) StepBot(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	a, ok := plan(sess)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sess.ID, ErrNotBotTurn)
	}
	return s.apply(ctx, sess, a, "bot"), nil
}

// plan returns the bot move for the current snapshot, computing it once so
// that a pacing pause and the move itself agree
func plan(sess *Session) (engine.Action, bool) {
	gs := sess.Engine.State()
	if sess.planned != nil && sess.plannedFor == gs {
		return sess.planned, true
	}
	a, ok := sess.Policy.Next(gs, sess.Config.AutoDraw)
	if !ok {
		sess.planned, sess.plannedFor = nil, nil
		return nil, false
	}
	sess.planned, sess.plannedFor = a, gs
	return a, true
}

// RunBots steps bots until a human must act, the game ends, maxSteps moves
// were made or ctx is done. Only one run per session is active at a time; a
// second caller returns immediately with zero steps.
func (s *gameServiceImpl) RunBots(ctx context.Context, sessionID string, maxSteps int) (*BotRunResult, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultBotSteps
	}

	claimed, err := s.claimRunner(sessionID, true)
	if err != nil {
		return nil, err
	}
	if claimed {
		defer s.claimRunner(sessionID, false)
	}

	result := &BotRunResult{Results: []*ActionResult{}}
	for claimed && result.Steps < maxSteps {
		if s.botDelay > 0 {
			wait, ok := s.nextDelay(sessionID)
			if !ok {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		res, err := s.StepBot(ctx, sessionID)
		if errors.Is(err, ErrNotBotTurn) {
			break
		}
		if err != nil {
			return nil, err
		}
		result.Steps++
		result.Results = append(result.Results, res)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	result.GameState = sess.Engine.State()
	result.WaitingOn = waitingOn(sess)
	return result, nil
}

// claimRunner marks or clears the bot runner flag of a session. Claiming
// reports false when another runner already holds it.
func (s *gameServiceImpl) claimRunner(sessionID string, claim bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return false, fmt.Errorf("session not found: %w", err)
	}
	if claim && sess.botRunning {
		return false, nil
	}
	sess.botRunning = claim
	return true, nil
}

// nextDelay returns the pause before the upcoming bot move
func (s *gameServiceImpl) nextDelay(sessionID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return 0, false
	}
	a, ok := plan(sess)
	if !ok {
		return 0, false
	}
	return bot.Delay(sess.Engine.State(), a, s.botDelay), true
}

// apply dispatches a to the session's game and describes the outcome.
// Callers hold s.mu.
func (s *gameServiceImpl) apply(ctx context.Context, sess *Session, a engine.Action, actorKind string) *ActionResult {
	prev := sess.Engine.State()
	actor := actorName(prev, a)
	if actorKind != "" && actor != "" {
		actor = fmt.Sprintf("%s (%s)", actor, actorKind)
	}

	result := &ActionResult{
		Action: describe(a),
		Actor:  actor,
	}
	if !sess.Engine.Dispatch(a) {
		result.Message = "Action rejected: not allowed in the current state"
		result.GameState = prev
		return result
	}

	next := sess.Engine.State()
	sess.Seq++
	result.Applied = true
	result.GameState = next
	result.NewLog = append([]string(nil), next.Log[len(prev.Log):]...)
	result.Events = gameEvents(prev, next, a)
	result.Message = "Action applied"
	if len(result.NewLog) > 0 {
		result.Message = result.NewLog[0]
	}

	s.recordAction(ctx, sess, result)
	if next.IsGameOver() && !prev.IsGameOver() {
		s.recordResult(ctx, sess)
	}
	if s.observer != nil {
		s.observer(sess.ID, result)
	}
	return result
}

// describe renders an action as it appears in results and the journal
func describe(a engine.Action) string {
	switch a := a.(type) {
	case engine.PerformAction:
		if a.Kind.NeedsVariety() {
			return fmt.Sprintf("%s %s", a.Kind, a.Variety)
		}
		return string(a.Kind)
	case engine.PassGavel:
		if a.BetMore {
			return "pass_gavel (bet more)"
		}
		return "pass_gavel (sell now)"
	}
	return a.Name()
}

// actorName is the party an action is attributed to
func actorName(gs *engine.GameState, a engine.Action) string {
	var p *engine.Party
	switch a.(type) {
	case engine.DrawEvent, engine.PassGavel:
		p = gs.Gavel()
	default:
		p = gs.Current()
	}
	if p == nil {
		return ""
	}
	return p.Name
}

// gameEvents derives the notable transitions between two snapshots
func gameEvents(prev, next *engine.GameState, a engine.Action) []GameEvent {
	now := time.Now()
	var events []GameEvent
	add := func(typ, msg string, party *int) {
		events = append(events, GameEvent{Type: typ, Message: msg, Timestamp: now, PartyID: party})
	}

	switch a := a.(type) {
	case engine.PerformAction:
		id := prev.CurrentParty
		add("trade", describe(a), &id)
	case engine.DrawEvent:
		if next.CurrentEvent != nil {
			add("event_drawn", next.CurrentEvent.Title, nil)
		}
	case engine.PassGavel:
		id := next.GavelHolder
		add("gavel", fmt.Sprintf("The gavel passes to %s", next.Parties[id].Name), &id)
	}

	if prev.Phase != engine.PhaseRoundEnd && next.Phase == engine.PhaseRoundEnd {
		add("round_end", fmt.Sprintf("Round %d is over", next.Round), nil)
	}
	if prev.Market.Heat < engine.MaxHeat && next.Market.Heat >= engine.MaxHeat {
		add("meltdown", "Heat reached the maximum", nil)
	}
	if next.IsGameOver() && !prev.IsGameOver() && next.Winner != nil {
		id := *next.Winner
		add("game_over", fmt.Sprintf("%s wins", next.Parties[id].Name), &id)
	}
	return events
}

func (s *gameServiceImpl) recordStart(ctx context.Context, sess *Session) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.RecordStart(ctx, GameStart{
		GameID:     sess.GameID,
		SessionID:  sess.ID,
		ConfigName: sess.Config.Name,
		Seed:       sess.Engine.Seed(),
		Parties:    len(sess.Engine.State().Parties),
		StartedAt:  time.Now(),
	})
	if err != nil {
		log.Printf("journal: failed to record start of game %s: %v", sess.GameID, err)
	}
}

func (s *gameServiceImpl) recordAction(ctx context.Context, sess *Session, result *ActionResult) {
	if s.recorder == nil {
		return
	}
	gs := result.GameState
	err := s.recorder.RecordAction(ctx, ActionRecord{
		GameID:    sess.GameID,
		Seq:       sess.Seq,
		Round:     gs.Round,
		Actor:     result.Actor,
		Action:    result.Action,
		Heat:      gs.Market.Heat,
		AppliedAt: time.Now(),
	})
	if err != nil {
		log.Printf("journal: failed to record action %d of game %s: %v", sess.Seq, sess.GameID, err)
	}
}

func (s *gameServiceImpl) recordResult(ctx context.Context, sess *Session) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordResult(ctx, resultOf(sess)); err != nil {
		log.Printf("journal: failed to record result of game %s: %v", sess.GameID, err)
	}
}

// resultOf summarizes a finished game
func resultOf(sess *Session) GameResult {
	gs := sess.Engine.State()
	res := GameResult{
		GameID:     sess.GameID,
		SessionID:  sess.ID,
		ConfigName: sess.Config.Name,
		Seed:       sess.Engine.Seed(),
		Rounds:     gs.Round,
		WinnerID:   -1,
		Standings:  gs.Standings,
		FinishedAt: time.Now(),
	}
	if gs.CurrentEvent != nil {
		res.CrashCard = string(gs.CurrentEvent.Kind)
	}
	if w := sess.Engine.Winner(); w != nil {
		res.WinnerID = w.ID
		res.WinnerName = w.Name
	}
	return res
}

// GetGameState returns the current snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return sess.Engine.State(), nil
}

// GetQuote returns the market price sheet
func (s *gameServiceImpl) GetQuote(ctx context.Context, sessionID string) ([]engine.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return sess.Engine.Quote(), nil
}

// GetLegalActions lists the moves open to the party on the clock
func (s *gameServiceImpl) GetLegalActions(ctx context.Context, sessionID string) (*LegalActionsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	gs := sess.Engine.State()
	resp := &LegalActionsResponse{
		Phase:            gs.Phase,
		PartyID:          gs.CurrentParty,
		RemainingActions: gs.RemainingActions,
		Actions:          []LegalAction{},
		CanEndTurn:       gs.Phase == engine.PhasePlayerActions,
		CanDrawEvent:     gs.Phase == engine.PhaseEventDraw,
		CanPassGavel:     gs.Phase == engine.PhaseRoundEnd,
	}

	p := gs.Current()
	if gs.Phase == engine.PhaseEventDraw || gs.Phase == engine.PhaseRoundEnd {
		resp.PartyID = gs.GavelHolder
		p = gs.Gavel()
	}
	if p != nil {
		resp.Party = p.Name
		resp.IsAI = p.IsAI
	}

	for _, a := range sess.Engine.LegalActions() {
		la := LegalAction{Kind: a.Kind}
		switch a.Kind {
		case engine.Buy:
			la.Variety = a.Variety.String()
			la.Price = gs.Market.BuyPrice(a.Variety)
		case engine.Sell, engine.Short:
			la.Variety = a.Variety.String()
			la.Price = gs.Market.SellPrice(a.Variety)
		case engine.Loan:
			la.Price = engine.LoanAmount
		case engine.Repay:
			la.Price = engine.RepayAmount
		}
		resp.Actions = append(resp.Actions, la)
	}
	return resp, nil
}

// GetLog returns a page of the game log
func (s *gameServiceImpl) GetLog(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	lines := sess.Engine.State().Log
	total := len(lines)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	entries := make([]LogEntry, 0, end-start)
	for i := start; i < end; i++ {
		idx := i
		if opts.Order == "desc" {
			idx = total - 1 - i
		}
		entries = append(entries, LogEntry{Index: idx, Text: lines[idx]})
	}

	return &HistoryResponse{
		Entries:     entries,
		TotalLines:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available table configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific table configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig validates and stores a table configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	return s.configs.SaveConfig(configName, config)
}

// ListResults returns the most recent finished games, newest first
func (s *gameServiceImpl) ListResults(ctx context.Context, limit int) ([]GameResult, error) {
	if s.recorder == nil {
		return []GameResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	results, err := s.recorder.RecentResults(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}
