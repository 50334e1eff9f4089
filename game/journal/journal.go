package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/wricardo/tulip-mania/game/engine"
	"github.com/wricardo/tulip-mania/game/service"
)

// Journal is an append-only SQLite record of games and their actions. It
// implements service.Recorder.
type Journal struct {
	conn *sqlx.DB
}

var _ service.Recorder = (*Journal)(nil)

// Open opens or creates the journal database at path
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer keeps SQLite from reporting busy under concurrent sessions
	conn.SetMaxOpenConns(1)

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		game_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		config_name TEXT NOT NULL,
		seed TEXT NOT NULL,
		parties INTEGER NOT NULL DEFAULT 0,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		rounds INTEGER,
		crash_card TEXT,
		winner_id INTEGER,
		winner_name TEXT,
		standings_json TEXT
	);

	CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		round INTEGER NOT NULL,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		heat INTEGER NOT NULL,
		applied_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_game ON actions(game_id, seq);
	CREATE INDEX IF NOT EXISTS idx_games_finished ON games(finished_at);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// RecordStart journals a freshly dealt game
func (j *Journal) RecordStart(ctx context.Context, start service.GameStart) error {
	_, err := j.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (game_id, session_id, config_name, seed, parties, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		start.GameID, start.SessionID, start.ConfigName,
		strconv.FormatUint(start.Seed, 10), start.Parties, start.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record start: %w", err)
	}
	return nil
}

// RecordAction appends one applied action
func (j *Journal) RecordAction(ctx context.Context, rec service.ActionRecord) error {
	_, err := j.conn.ExecContext(ctx,
		`INSERT INTO actions (game_id, seq, round, actor, action, heat, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.Seq, rec.Round, rec.Actor, rec.Action, rec.Heat, rec.AppliedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// RecordResult stores the outcome of a finished game. A game whose start was
// never journaled is inserted whole.
func (j *Journal) RecordResult(ctx context.Context, res service.GameResult) error {
	standings, err := json.Marshal(res.Standings)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	finished := res.FinishedAt.UnixNano()
	_, err = j.conn.ExecContext(ctx,
		`INSERT INTO games (game_id, session_id, config_name, seed, parties, started_at,
			finished_at, rounds, crash_card, winner_id, winner_name, standings_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			finished_at = excluded.finished_at,
			rounds = excluded.rounds,
			crash_card = excluded.crash_card,
			winner_id = excluded.winner_id,
			winner_name = excluded.winner_name,
			standings_json = excluded.standings_json`,
		res.GameID, res.SessionID, res.ConfigName, strconv.FormatUint(res.Seed, 10),
		len(res.Standings), finished,
		finished, res.Rounds, res.CrashCard, res.WinnerID, res.WinnerName, string(standings),
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

type resultRow struct {
	GameID     string         `db:"game_id"`
	SessionID  string         `db:"session_id"`
	ConfigName string         `db:"config_name"`
	Seed       string         `db:"seed"`
	Rounds     int            `db:"rounds"`
	CrashCard  sql.NullString `db:"crash_card"`
	WinnerID   int            `db:"winner_id"`
	WinnerName sql.NullString `db:"winner_name"`
	Standings  sql.NullString `db:"standings_json"`
	FinishedAt int64          `db:"finished_at"`
}

func (r resultRow) result() (service.GameResult, error) {
	seed, err := strconv.ParseUint(r.Seed, 10, 64)
	if err != nil {
		return service.GameResult{}, fmt.Errorf("game %s: bad seed %q", r.GameID, r.Seed)
	}
	res := service.GameResult{
		GameID:     r.GameID,
		SessionID:  r.SessionID,
		ConfigName: r.ConfigName,
		Seed:       seed,
		Rounds:     r.Rounds,
		CrashCard:  r.CrashCard.String,
		WinnerID:   r.WinnerID,
		WinnerName: r.WinnerName.String,
		Standings:  []engine.Standing{},
		FinishedAt: time.Unix(0, r.FinishedAt),
	}
	if r.Standings.Valid && r.Standings.String != "" {
		if err := json.Unmarshal([]byte(r.Standings.String), &res.Standings); err != nil {
			return service.GameResult{}, fmt.Errorf("game %s: bad standings: %w", r.GameID, err)
		}
	}
	return res, nil
}

// RecentResults returns up to limit finished games, newest first
func (j *Journal) RecentResults(ctx context.Context, limit int) ([]service.GameResult, error) {
	var rows []resultRow
	err := j.conn.SelectContext(ctx, &rows,
		`SELECT game_id, session_id, config_name, seed, rounds, crash_card,
			winner_id, winner_name, standings_json, finished_at
		FROM games WHERE finished_at IS NOT NULL
		ORDER BY finished_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}

	results := make([]service.GameResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.result()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

type actionRow struct {
	GameID    string `db:"game_id"`
	Seq       int    `db:"seq"`
	Round     int    `db:"round"`
	Actor     string `db:"actor"`
	Action    string `db:"action"`
	Heat      int    `db:"heat"`
	AppliedAt int64  `db:"applied_at"`
}

// GameActions returns the journaled actions of one game in order
func (j *Journal) GameActions(ctx context.Context, gameID string) ([]service.ActionRecord, error) {
	var rows []actionRow
	err := j.conn.SelectContext(ctx, &rows,
		`SELECT game_id, seq, round, actor, action, heat, applied_at
		FROM actions WHERE game_id = ? ORDER BY seq, id`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("game actions: %w", err)
	}

	out := make([]service.ActionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, service.ActionRecord{
			GameID:    r.GameID,
			Seq:       r.Seq,
			Round:     r.Round,
			Actor:     r.Actor,
			Action:    r.Action,
			Heat:      r.Heat,
			AppliedAt: time.Unix(0, r.AppliedAt),
		})
	}
	return out, nil
}

// Stats counts journaled games and how many of them finished
func (j *Journal) Stats(ctx context.Context) (started, finished int, err error) {
	if err = j.conn.GetContext(ctx, &started, "SELECT COUNT(*) FROM games"); err != nil {
		return 0, 0, fmt.Errorf("stats: %w", err)
	}
	if err = j.conn.GetContext(ctx, &finished, "SELECT COUNT(*) FROM games WHERE finished_at IS NOT NULL"); err != nil {
		return 0, 0, fmt.Errorf("stats: %w", err)
	}
	return started, finished, nil
}
