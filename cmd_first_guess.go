package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/config"
	"github.com/wortmanb/wordlebot/internal/infogain"
	"github.com/wortmanb/wordlebot/internal/words"
)

var (
	firstGuessSave bool
	firstGuessTop  int
)

var firstGuessCmd = &cobra.Command{
	Use:   "first-guess",
	Short: "Compute the highest-entropy opening over the allowed words",
	Long: `Scores every allowed word against all answers and prints the best
openings. With --save the winner is written to OPTIMAL_FIRST_GUESS in the
dotenv file so later sessions skip the computation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := loadLists()
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(lists.Allowed)), "scoring openings")
		calc := infogain.NewCalculator(cache.NewMemory(),
			infogain.WithWorkers(runtime.NumCPU()),
			infogain.WithProgress(func() { _ = bar.Add(1) }),
		)
		tie := words.NewFrequency(lists.Answers).TieBreak()
		pool := lists.AnswerPool()

		fg, err := calc.BestFirstGuess(cmd.Context(), lists.Allowed, pool, tie)
		_ = bar.Finish()
		if err != nil {
			return err
		}

		// scores are cached, so ranking the vocabulary again is cheap
		ranked, err := calc.Rank(cmd.Context(), lists.Allowed, pool, tie)
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(fmt.Sprintf("Best openings against %d answers", pool.Len()))
		t.AppendHeader(table.Row{"#", "Guess", "Entropy", "Exp. left", "Worst"})
		for i, s := range ranked[:max(0, min(firstGuessTop, len(ranked)))] {
			t.AppendRow(table.Row{i + 1, string(s.Word), fmt.Sprintf("%.4f", s.Entropy), fmt.Sprintf("%.1f", s.ExpectedRemaining), s.Largest})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		C.Best.Printf("Best first guess: %s", fg.Best.Word)
		if len(fg.Tied) > 1 {
			fmt.Printf("  (tied with %s)", joinWords(fg.Tied))
		}
		fmt.Println()

		if firstGuessSave {
			if err := config.SaveEnvValue(envFile, "OPTIMAL_FIRST_GUESS", string(fg.Best.Word)); err != nil {
				return err
			}
			log.Info().Str("file", envFile).Str("word", string(fg.Best.Word)).Msg("saved first guess")
		}
		return nil
	},
}

func init() {
	firstGuessCmd.Flags().BoolVar(&firstGuessSave, "save", false, "write the result to OPTIMAL_FIRST_GUESS in the dotenv file")
	firstGuessCmd.Flags().IntVar(&firstGuessTop, "top", 10, "openings to list")
}
