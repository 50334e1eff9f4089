package service

import (
	"time"

	"github.com/wricardo/tulip-mania/game/engine"
)

// CreateSessionRequest selects the table and, optionally, the deal
type CreateSessionRequest struct {
	ConfigID string  `json:"config_id"`
	Seed     *uint64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	GameID         string             `json:"game_id"`
	ConfigName     string             `json:"config_name"`
	Seed           uint64             `json:"seed"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	WaitingOn      string             `json:"waiting_on"` // "human", "bot" or "nobody"
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the outcome of one submitted action. A rejected
// action is not an error: Applied is false and the state is unchanged.
type ActionResult struct {
	Applied   bool              `json:"applied"`
	Action    string            `json:"action"`
	Actor     string            `json:"actor,omitempty"`
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"game_state"`
	NewLog    []string          `json:"new_log,omitempty"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BotRunResult summarizes a run of consecutive bot moves
type BotRunResult struct {
	Steps     int               `json:"steps"`
	Results   []*ActionResult   `json:"results"`
	GameState *engine.GameState `json:"game_state"`
	WaitingOn string            `json:"waiting_on"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "trade", "event_drawn", "meltdown", "round_end", "gavel", "game_over", "restart"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	PartyID   *int      `json:"party_id,omitempty"`
}

// LegalAction is one action point spend open to the current party
type LegalAction struct {
	Kind    engine.ActionKind `json:"kind"`
	Variety string            `json:"variety,omitempty"`
	Price   int               `json:"price"`
}

// LegalActionsResponse lists what the party on the clock may do
type LegalActionsResponse struct {
	Phase            engine.Phase  `json:"phase"`
	PartyID          int           `json:"party_id"`
	Party            string        `json:"party"`
	IsAI             bool          `json:"is_ai"`
	RemainingActions int           `json:"remaining_actions"`
	Actions          []LegalAction `json:"actions"`
	CanEndTurn       bool          `json:"can_end_turn"`
	CanDrawEvent     bool          `json:"can_draw_event"`
	CanPassGavel     bool          `json:"can_pass_gavel"`
}

// HistoryOptions configures log retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// LogEntry is one numbered line of the game log
type LogEntry struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// HistoryResponse contains a page of the game log
type HistoryResponse struct {
	Entries     []LogEntry `json:"entries"`
	TotalLines  int        `json:"total_lines"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}

// ConfigInfo provides information about a table configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Seats       int    `json:"seats"`
	Bots        int    `json:"bots"`
	AutoDraw    bool   `json:"auto_draw"`
}

// GameStart is journaled when a game is dealt
type GameStart struct {
	GameID     string    `json:"game_id"`
	SessionID  string    `json:"session_id"`
	ConfigName string    `json:"config_name"`
	Seed       uint64    `json:"seed"`
	Parties    int       `json:"parties"`
	StartedAt  time.Time `json:"started_at"`
}

// ActionRecord is journaled for every applied action
type ActionRecord struct {
	GameID    string    `json:"game_id"`
	Seq       int       `json:"seq"`
	Round     int       `json:"round"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Heat      int       `json:"heat"`
	AppliedAt time.Time `json:"applied_at"`
}

// GameResult is journaled when a game ends
type GameResult struct {
	GameID     string            `json:"game_id"`
	SessionID  string            `json:"session_id"`
	ConfigName string            `json:"config_name"`
	Seed       uint64            `json:"seed"`
	Rounds     int               `json:"rounds"`
	CrashCard  string            `json:"crash_card"`
	WinnerID   int               `json:"winner_id"`
	WinnerName string            `json:"winner_name"`
	Standings  []engine.Standing `json:"standings"`
	FinishedAt time.Time         `json:"finished_at"`
}
