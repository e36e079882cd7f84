// main.go
//
// Command-line entry point.
// Responsibilities:
//   - Load .env, the optional YAML config and environment overrides.
//   - Initialize logging.
//   - Dispatch to the subcommands: solve, first-guess, play, serve, stats.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wortmanb/wordlebot/internal/config"
	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/logger"
	"github.com/wortmanb/wordlebot/internal/lookahead"
	"github.com/wortmanb/wordlebot/internal/solver"
	"github.com/wortmanb/wordlebot/internal/words"
)

var (
	// Global flags
	configPath  string
	envFile     string
	strategyArg string
	depthArg    int

	cfg       *config.Config
	logCloser io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wordlebot",
	Short: "Wordle assistant: entropy ranking with minimax lookahead",
	Long: `wordlebot narrows the candidate answers from your guesses and feedback,
ranks guesses by information gain and searches ahead to pick the guess that
minimizes the number of guesses still needed.

Feedback can be typed as G/Y/X markers, 2/1/0 digits, or in case notation
(uppercase = right spot, lowercase = wrong spot, ? = absent).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(envFile)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("strategy") {
			cfg.Solver.Strategy = strategyArg
		}
		if cmd.Flags().Changed("depth") {
			cfg.Solver.Depth = depthArg
		}

		logCloser, err = logger.Init(cfg.Logging.Level, cfg.Logging.File, os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default $WORDLEBOT_CONFIG)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	pf.StringVarP(&strategyArg, "strategy", "s", "balanced", "lookahead strategy: aggressive, safe or balanced")
	pf.IntVarP(&depthArg, "depth", "d", 2, "lookahead depth")

	rootCmd.AddCommand(solveCmd, firstGuessCmd, playCmd, serveCmd, statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadLists reads the configured word lists or the embedded defaults.
func loadLists() (*words.Lists, error) {
	lists, err := words.Load(cfg.Words.AnswersFile, cfg.Words.AllowedFile, cfg.Words.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to load word lists: %w", err)
	}
	answers, allowed := lists.Stats()
	log.Debug().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")
	return lists, nil
}

// solverConfig maps the loaded configuration onto solver settings.
func solverConfig(c *config.Config) (solver.Config, error) {
	st, err := lookahead.ParseStrategy(c.Solver.Strategy)
	if err != nil {
		return solver.Config{}, err
	}
	if c.Solver.Depth < 0 {
		return solver.Config{}, lookahead.ErrNegativeDepth
	}
	sc := solver.Config{
		Depth:          c.Solver.Depth,
		Strategy:       st,
		RankLimit:      c.Solver.RankLimit,
		PruneThreshold: c.Solver.PruneThreshold,
		CandidateLimit: c.Solver.CandidateLimit,
		MaxDepth:       c.Solver.MaxDepth,
	}
	if c.Solver.FirstGuess != "" {
		fg, err := words.Parse(c.Solver.FirstGuess, c.Words.Length)
		if err != nil {
			return solver.Config{}, fmt.Errorf("first guess %q: %w", c.Solver.FirstGuess, err)
		}
		sc.FirstGuess = fg
	}
	return sc, nil
}

// sessionOptions wires the advisor (when configured) and logger into sessions.
func sessionOptions(c *config.Config) []solver.Option {
	opts := []solver.Option{solver.WithLogger(log.Logger)}
	if c.Advisor.URL != "" {
		opts = append(opts, solver.WithAdvisor(sessionAdvisor(c)))
	}
	return opts
}

func sessionAdvisor(c *config.Config) *solver.HTTPAdvisor {
	return solver.NewHTTPAdvisor(c.Advisor.URL, solver.WithTimeout(c.Advisor.Timeout), solver.WithRetries(2, 250*time.Millisecond))
}

// openHistory opens the solve history, or returns nil when no path is set.
func openHistory(ctx context.Context, c *config.Config) (*history.Store, func(), error) {
	if c.Database.Path == "" {
		return nil, func() {}, nil
	}
	db, err := history.Open(ctx, c.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open history %s: %w", c.Database.Path, err)
	}
	return history.NewStore(db), func() { _ = db.Close() }, nil
}
