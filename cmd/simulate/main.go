// Command simulate plays Tulip Mania tables with bots in every seat. It can
// play a single game and print its log, run a seeded tournament to compare
// bot profiles, or print the price tables.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/tulip-mania/game/bot"
	"github.com/wricardo/tulip-mania/game/config"
	"github.com/wricardo/tulip-mania/game/engine"
	"github.com/wricardo/tulip-mania/game/journal"
	"github.com/wricardo/tulip-mania/game/service"
)

// maxSteps bounds a single game; a whole game takes a few hundred moves
const maxSteps = 5000

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.Command {
	configFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config-dir",
			Value:   "configs",
			Usage:   "directory containing table configurations",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:  "config",
			Value: config.DefaultConfigName,
			Usage: "table configuration to seat the bots at",
		},
	}

	return &cli.Command{
		Name:  "simulate",
		Usage: "play Tulip Mania tables with bots in every seat",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "play one game and print its log and standings",
				Flags: append([]cli.Flag{
					&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "deal seed"},
					&cli.BoolFlag{Name: "quiet", Usage: "print the standings only"},
				}, configFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					table, err := loadTable(cmd.String("config-dir"), cmd.String("config"))
					if err != nil {
						return err
					}
					gs, err := playGame(table, cmd.Uint64("seed"))
					if err != nil {
						return err
					}
					if !cmd.Bool("quiet") {
						for _, line := range gs.Log {
							fmt.Fprintln(out, line)
						}
						fmt.Fprintln(out)
					}
					printStandings(out, gs)
					return nil
				},
			},
			{
				Name:  "tournament",
				Usage: "play many seeded games in parallel and compare seats",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "games", Value: 200, Usage: "number of games"},
					&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "seed of the first game"},
					&cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "games played at once"},
					&cli.StringFlag{Name: "journal", Usage: "SQLite journal to record finished games in", Sources: cli.EnvVars("JOURNAL_PATH")},
				}, configFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					table, err := loadTable(cmd.String("config-dir"), cmd.String("config"))
					if err != nil {
						return err
					}

					var recorder service.Recorder
					if path := cmd.String("journal"); path != "" {
						j, err := journal.Open(path)
						if err != nil {
							return err
						}
						defer j.Close()
						recorder = j
					}

					summary, err := runTournament(ctx, table, tournamentOptions{
						Games:    cmd.Int("games"),
						Seed:     cmd.Uint64("seed"),
						Workers:  cmd.Int("workers"),
						Recorder: recorder,
					})
					if err != nil {
						return err
					}
					summary.Print(out)
					return nil
				},
			},
			{
				Name:  "prices",
				Usage: "print base, premium and crash price tables",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					printPrices(out)
					return nil
				},
			},
		},
	}
}

// loadTable loads a configuration and seats bots in every chair
func loadTable(dir, name string) (*engine.GameConfig, error) {
	var table *engine.GameConfig
	manager, err := config.NewManager(dir)
	switch {
	case err == nil:
		table, err = manager.LoadConfig(name)
		if err != nil && name == config.DefaultConfigName {
			table, err = manager.GetDefault(), nil
		}
	case name == config.DefaultConfigName:
		table, err = engine.DefaultGameConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return allBots(table), nil
}

// allBots returns a copy of config where every human seat is taken by a
// Balanced bot
func allBots(config *engine.GameConfig) *engine.GameConfig {
	out := *config
	out.Seats = make([]engine.Seat, len(config.Seats))
	for i, seat := range config.Seats {
		if !seat.AI {
			seat.AI = true
			seat.Profile = engine.Balanced
		}
		out.Seats[i] = seat
	}
	return &out
}

// playGame deals a table and lets the bots play it to the end
func playGame(table *engine.GameConfig, seed uint64) (*engine.GameState, error) {
	game, err := engine.NewGame(table, seed)
	if err != nil {
		return nil, err
	}
	policy := bot.NewPolicy(seed)

	for steps := 0; !game.IsGameOver(); steps++ {
		if steps >= maxSteps {
			return nil, fmt.Errorf("seed %d: no result after %d moves", seed, maxSteps)
		}
		a, ok := policy.Next(game.State(), true)
		if !ok {
			return nil, fmt.Errorf("seed %d: no bot can move in phase %s", seed, game.State().Phase)
		}
		game.Dispatch(a)
	}
	return game.State(), nil
}

// endReason names what ended a game
func endReason(gs *engine.GameState) string {
	if gs.CurrentEvent != nil && gs.CurrentEvent.Kind.Terminal() {
		return string(gs.CurrentEvent.Kind)
	}
	return "meltdown"
}

type tournamentOptions struct {
	Games    int
	Seed     uint64
	Workers  int
	Recorder service.Recorder
}

// seatStats aggregates the results of one seat over a tournament
type seatStats struct {
	Name     string
	Profile  engine.Profile
	Wins     int
	Podiums  int
	TotalNet int64
	Best     int
	Worst    int
}

// Summary is the outcome of a tournament
type Summary struct {
	Config  string
	Games   int
	Seats   []*seatStats
	Endings map[string]int
	Rounds  int
	Elapsed time.Duration
}

func runTournament(ctx context.Context, table *engine.GameConfig, opts tournamentOptions) (*Summary, error) {
	if opts.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", opts.Games)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	start := time.Now()
	finals := make([]*engine.GameState, opts.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < opts.Games; i++ {
		seed := opts.Seed + uint64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gs, err := playGame(table, seed)
			if err != nil {
				return err
			}
			finals[i] = gs
			if opts.Recorder != nil {
				return record(ctx, opts.Recorder, table, seed, gs)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Config:  table.Name,
		Games:   opts.Games,
		Endings: make(map[string]int),
		Elapsed: time.Since(start),
	}
	for _, seat := range table.Seats {
		summary.Seats = append(summary.Seats, &seatStats{Name: seat.Name, Profile: seat.Profile})
	}

	for i, gs := range finals {
		summary.Endings[endReason(gs)]++
		summary.Rounds += gs.Round
		for _, s := range gs.Standings {
			stats := summary.Seats[s.PartyID]
			if i == 0 || s.NetWorth > stats.Best {
				stats.Best = s.NetWorth
			}
			if i == 0 || s.NetWorth < stats.Worst {
				stats.Worst = s.NetWorth
			}
			stats.TotalNet += int64(s.NetWorth)
			if s.Rank <= 3 {
				stats.Podiums++
			}
		}
		if gs.Winner != nil {
			summary.Seats[*gs.Winner].Wins++
		}
	}
	return summary, nil
}

// record journals one simulated game
func record(ctx context.Context, rec service.Recorder, table *engine.GameConfig, seed uint64, gs *engine.GameState) error {
	gameID := uuid.NewString()
	now := time.Now()
	if err := rec.RecordStart(ctx, service.GameStart{
		GameID:     gameID,
		SessionID:  "simulate",
		ConfigName: table.Name,
		Seed:       seed,
		Parties:    len(gs.Parties),
		StartedAt:  now,
	}); err != nil {
		return err
	}

	result := service.GameResult{
		GameID:     gameID,
		SessionID:  "simulate",
		ConfigName: table.Name,
		Seed:       seed,
		Rounds:     gs.Round,
		CrashCard:  endReason(gs),
		WinnerID:   -1,
		Standings:  gs.Standings,
		FinishedAt: now,
	}
	if gs.Winner != nil {
		result.WinnerID = *gs.Winner
		result.WinnerName = gs.Parties[*gs.Winner].Name
	}
	return rec.RecordResult(ctx, result)
}

// Print writes the tournament report
func (s *Summary) Print(out io.Writer) {
	fmt.Fprintf(out, "%s: %s games in %s, %.1f rounds on average\n\n",
		s.Config, humanize.Comma(int64(s.Games)), s.Elapsed.Round(time.Millisecond),
		float64(s.Rounds)/float64(s.Games))

	seats := make([]*seatStats, len(s.Seats))
	copy(seats, s.Seats)
	sort.SliceStable(seats, func(i, j int) bool { return seats[i].Wins > seats[j].Wins })

	fmt.Fprintf(out, "%-4s %-16s %-13s %7s %7s %12s %12s %12s\n",
		"", "Seat", "Profile", "Wins", "Podium", "Avg worth", "Best", "Worst")
	for i, seat := range seats {
		fmt.Fprintf(out, "%-4s %-16s %-13s %6.1f%% %6.1f%% %12s %12s %12s\n",
			humanize.Ordinal(i+1), seat.Name, seat.Profile,
			percent(seat.Wins, s.Games), percent(seat.Podiums, s.Games),
			humanize.Comma(seat.TotalNet/int64(s.Games)),
			humanize.Comma(int64(seat.Best)), humanize.Comma(int64(seat.Worst)))
	}

	endings := make([]string, 0, len(s.Endings))
	for reason := range s.Endings {
		endings = append(endings, reason)
	}
	sort.Strings(endings)

	fmt.Fprintln(out, "\nEndings:")
	for _, reason := range endings {
		fmt.Fprintf(out, "  %-14s %6.1f%%\n", reason, percent(s.Endings[reason], s.Games))
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func printStandings(out io.Writer, gs *engine.GameState) {
	fmt.Fprintf(out, "Game over after %d rounds (%s)\n", gs.Round, endReason(gs))
	for _, s := range gs.Standings {
		fmt.Fprintf(out, "  %-4s %-16s %12s\n", humanize.Ordinal(s.Rank), s.Name, humanize.Comma(int64(s.NetWorth)))
	}
}

func printPrices(out io.Writer) {
	names := make([]string, 0, engine.NumVarieties)
	for _, v := range engine.Varieties {
		names = append(names, fmt.Sprintf("%10s", v))
	}

	fmt.Fprintf(out, "Base prices\n%-6s%s\n", "heat", strings.Join(names, ""))
	for heat := engine.MinHeat; heat <= engine.MaxHeat; heat++ {
		fmt.Fprintf(out, "%-6d", heat)
		for _, v := range engine.Varieties {
			fmt.Fprintf(out, "%10s", humanize.Comma(int64(engine.BasePrice(heat, v))))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nScarcity premiums\n%-6s%s\n", "zone", strings.Join(names, ""))
	for zone := 0; zone < engine.NumZones; zone++ {
		fmt.Fprintf(out, "%-6d", zone)
		for _, v := range engine.Varieties {
			fmt.Fprintf(out, "%10s", humanize.Comma(int64(engine.Premium(v, zone))))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nCrash prices\n%-6s", "")
	for _, v := range engine.Varieties {
		fmt.Fprintf(out, "%10s", humanize.Comma(int64(engine.CrashPrice(v))))
	}
	fmt.Fprintln(out)
}
