package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/daily"
	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/infogain"
	"github.com/wortmanb/wordlebot/internal/solver"
	"github.com/wortmanb/wordlebot/internal/words"
)

var (
	playTargets []string
	playDaily   bool
	playSample  int
	playWorkers int
	playRows    int
	playRecord  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Let the solver play against known answers and report how it does",
	Long: `Runs self-play games. Targets are every answer by default, or the words
given with --target, today's daily word with --daily, or a random --sample.
Games run concurrently, each with its own search cache. Results are added to
the history database unless --record=false.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lists, err := loadLists()
		if err != nil {
			return err
		}
		scfg, err := solverConfig(cfg)
		if err != nil {
			return err
		}
		targets, err := playTargetList(lists)
		if err != nil {
			return err
		}

		// the opening is the same for every game, compute it once
		if scfg.FirstGuess == "" {
			calc := infogain.NewCalculator(cache.NewMemory())
			fg, err := calc.BestFirstGuess(ctx, lists.Allowed, lists.AnswerPool(), words.NewFrequency(lists.Answers).TieBreak())
			if err != nil {
				return err
			}
			scfg.FirstGuess = fg.Best.Word
			log.Info().Str("word", string(fg.Best.Word)).Msg("opening computed")
		}

		bar := progressbar.Default(int64(len(targets)), "playing")
		results, err := playAll(ctx, lists, scfg, targets, playWorkers, playRows, func() { _ = bar.Add(1) })
		_ = bar.Finish()
		if err != nil {
			return err
		}

		if playRecord {
			hist, closeDB, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			if hist != nil {
				for _, r := range results {
					if _, err := hist.Insert(ctx, r); err != nil {
						return err
					}
				}
				log.Info().Int("games", len(results)).Str("db", cfg.Database.Path).Msg("results recorded")
			}
		}

		printPlayReport(results, playRows)
		return nil
	},
}

func init() {
	f := playCmd.Flags()
	f.StringSliceVarP(&playTargets, "target", "t", nil, "target word(s) to play against")
	f.BoolVar(&playDaily, "daily", false, "play today's daily word")
	f.IntVar(&playSample, "sample", 0, "play N random answers")
	f.IntVarP(&playWorkers, "workers", "w", runtime.NumCPU(), "concurrent games")
	f.IntVar(&playRows, "rows", game.DefaultRows, "guesses allowed per game")
	f.BoolVar(&playRecord, "record", true, "record results in the history database")
}

// playTargetList resolves the target flags against the answer list.
func playTargetList(lists *words.Lists) ([]words.Word, error) {
	switch {
	case len(playTargets) > 0:
		ws, err := words.ParseAll(playTargets, lists.Length)
		if err != nil {
			return nil, err
		}
		return ws, nil
	case playDaily:
		return []words.Word{daily.Target(lists, time.Now(), cfg.Solver.DailySalt)}, nil
	case playSample > 0:
		return lo.Samples(lists.Answers, playSample), nil
	}
	return lists.Answers, nil
}

// playAll plays every target with up to workers games at once. Results are in
// target order.
func playAll(ctx context.Context, lists *words.Lists, scfg solver.Config, targets []words.Word, workers, rows int, progress func()) ([]history.Result, error) {
	results := make([]history.Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			r, err := selfPlay(gctx, lists, scfg, target, rows)
			if err != nil {
				return fmt.Errorf("play %q: %w", target, err)
			}
			results[i] = r
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// selfPlay runs one game against target, always playing the session's choice.
func selfPlay(ctx context.Context, lists *words.Lists, scfg solver.Config, target words.Word, rows int) (history.Result, error) {
	start := time.Now()
	g := game.New(target)
	if rows > 0 {
		g.Rows = rows
	}
	sess := solver.NewSession(lists, scfg)

	for g.State() == game.StatePlaying {
		rec, err := sess.Recommend(ctx, solver.Request{})
		if err != nil {
			return history.Result{}, err
		}
		guess := rec.Choice()
		if guess == "" {
			// the target is not reachable from the answer list
			break
		}
		p, _, err := g.ApplyGuess(string(guess), nil)
		if err != nil {
			return history.Result{}, err
		}
		if _, err := sess.ApplyPattern(guess, p); err != nil {
			return history.Result{}, err
		}
	}

	return history.Result{
		SessionID: sess.ID,
		Solution:  string(target),
		Guesses:   len(g.Guesses),
		Strategy:  sess.Config().Strategy.String(),
		Depth:     sess.Config().Depth,
		Won:       g.Won,
		ElapsedMs: time.Since(start).Milliseconds(),
		Sequence:  lo.Map(g.Guesses, func(w words.Word, _ int) string { return string(w) }),
		Source:    "selfplay",
		CreatedAt: time.Now(),
	}, nil
}

// printPlayReport shows the guess distribution and any failures.
func printPlayReport(results []history.Result, rows int) {
	wins := lo.Filter(results, func(r history.Result, _ int) bool { return r.Won })
	losses := lo.Reject(results, func(r history.Result, _ int) bool { return r.Won })
	dist := lo.CountValuesBy(wins, func(r history.Result) int { return r.Guesses })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%d games", len(results)))
	t.AppendHeader(table.Row{"Guesses", "Games", ""})
	for n := 1; n <= rows; n++ {
		t.AppendRow(table.Row{n, dist[n], strings.Repeat("█", scaleBar(dist[n], len(results), 40))})
	}
	t.AppendRow(table.Row{"failed", len(losses), ""})

	avg := 0.0
	worst := 0
	if len(wins) > 0 {
		avg = float64(lo.SumBy(wins, func(r history.Result) int { return r.Guesses })) / float64(len(wins))
		worst = lo.MaxBy(wins, func(a, b history.Result) bool { return a.Guesses > b.Guesses }).Guesses
	}
	t.AppendFooter(table.Row{"average", fmt.Sprintf("%.3f", avg), fmt.Sprintf("worst %d", worst)})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(losses) > 0 {
		failed := lo.Map(losses, func(r history.Result, _ int) string { return r.Solution })
		sort.Strings(failed)
		C.Warn.Printf("Failed: %s\n", strings.Join(failed, " "))
	}
}

func scaleBar(n, total, width int) int {
	if total == 0 {
		return 0
	}
	return n * width / total
}
