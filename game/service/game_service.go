package service

import (
	"context"
	"time"

	"github.com/wricardo/tulip-mania/game/bot"
	"github.com/wricardo/tulip-mania/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	RestartGame(ctx context.Context, sessionID string, seed *uint64) (*SessionInfo, error)

	// Game Operations
	DrawEvent(ctx context.Context, sessionID string) (*ActionResult, error)
	PerformAction(ctx context.Context, sessionID, kind, variety string) (*ActionResult, error)
	EndTurn(ctx context.Context, sessionID string) (*ActionResult, error)
	PassGavel(ctx context.Context, sessionID string, betMore bool) (*ActionResult, error)

	// Bots
	StepBot(ctx context.Context, sessionID string) (*ActionResult, error)
	RunBots(ctx context.Context, sessionID string, maxSteps int) (*BotRunResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetQuote(ctx context.Context, sessionID string) ([]engine.PriceQuote, error)
	GetLegalActions(ctx context.Context, sessionID string) (*LegalActionsResponse, error)
	GetLog(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Results
	ListResults(ctx context.Context, limit int) ([]GameResult, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, seed uint64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig, seed uint64) (*Session, error)
	List() []*Session
	Delete(id string) error
	// Touch is Get plus an access time update
	Touch(id string) (*Session, error)
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Recorder receives an append-only trail of finished actions and games.
// It is never used to restore a session.
type Recorder interface {
	RecordStart(ctx context.Context, start GameStart) error
	RecordAction(ctx context.Context, rec ActionRecord) error
	RecordResult(ctx context.Context, result GameResult) error
	RecentResults(ctx context.Context, limit int) ([]GameResult, error)
}

// Observer is told about every applied action, human or bot
type Observer func(sessionID string, result *ActionResult)

// Session represents an active game session
type Session struct {
	ID             string
	GameID         string
	Engine         engine.Engine
	Config         *engine.GameConfig
	Policy         *bot.Policy
	Seq            int
	CreatedAt      time.Time
	LastAccessedAt time.Time // written by SessionManager.Touch under the service write lock

	// bot move planned for a snapshot, kept until that snapshot changes
	planned    engine.Action
	plannedFor *engine.GameState
	botRunning bool
}
