package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded games",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		hist, closeDB, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		if hist == nil {
			return errors.New("no history database configured (set DATABASE_PATH)")
		}

		sum, err := hist.Summary(ctx)
		if err != nil {
			return err
		}
		by, err := hist.ByStrategy(ctx)
		if err != nil {
			return err
		}
		printSummary(os.Stdout, "Solve history", sum, by)

		if statsRecent <= 0 {
			return nil
		}
		recent, err := hist.Recent(ctx, statsRecent)
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("Recent games")
		t.AppendHeader(table.Row{"When", "Answer", "Guesses", "Result", "Strategy", "Source", "Sequence"})
		for _, r := range recent {
			result := C.Hit.Sprint(" won ")
			if !r.Won {
				result = C.Absent.Sprint(" lost ")
			}
			t.AppendRow(table.Row{
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Solution,
				r.Guesses,
				result,
				fmt.Sprintf("%s/%d", r.Strategy, r.Depth),
				r.Source,
				strings.Join(r.Sequence, " "),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 10, "recent games to list (0 hides the list)")
}
