package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/solver"
	"github.com/wortmanb/wordlebot/internal/words"
)

// C holds the terminal palette.
var C = struct {
	Hit, Present, Absent, Info, Warn, Header, Best *color.Color
}{
	Hit:     color.New(color.BgGreen, color.FgBlack, color.Bold),
	Present: color.New(color.BgYellow, color.FgBlack, color.Bold),
	Absent:  color.New(color.BgHiBlack, color.FgWhite, color.Bold),
	Info:    color.New(color.FgCyan),
	Warn:    color.New(color.FgHiYellow),
	Header:  color.New(color.FgWhite, color.Bold),
	Best:    color.New(color.FgGreen, color.Bold),
}

// tiles renders a guess as coloured letter tiles.
func tiles(guess words.Word, p game.Pattern) string {
	var b strings.Builder
	for i := 0; i < p.Len() && i < len(guess); i++ {
		c := C.Absent
		switch p.At(i) {
		case game.MarkHit:
			c = C.Hit
		case game.MarkPresent:
			c = C.Present
		}
		b.WriteString(c.Sprintf(" %c ", guess[i]-'a'+'A'))
	}
	return b.String()
}

// printBoard shows every turn so far.
func printBoard(w io.Writer, turns []solver.Turn) {
	for _, t := range turns {
		fmt.Fprintf(w, "  %s  %d left\n", tiles(t.Guess, t.Pattern), t.Remaining)
	}
}

// printRecommendation shows the ranking table and the chosen move.
func printRecommendation(w io.Writer, rec solver.Recommendation) {
	if rec.Remaining == 0 {
		C.Warn.Fprintln(w, "No candidates match that feedback. Check the responses entered so far.")
		return
	}

	if rec.Remaining <= 10 {
		C.Info.Fprintf(w, "%d candidates: %s\n", rec.Remaining, joinWords(rec.Candidates))
	} else {
		C.Info.Fprintf(w, "%d candidates remain\n", rec.Remaining)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Guess", "Entropy", "Exp. left", "Worst", "Answer?"})
	for i, s := range rec.Ranked {
		t.AppendRow(table.Row{i + 1, string(s.Word), fmt.Sprintf("%.3f", s.Entropy), fmt.Sprintf("%.2f", s.ExpectedRemaining), s.Largest, yesNo(s.Candidate)})
	}
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()

	label := "Suggested"
	if rec.Opening {
		label = "Opening"
	}
	C.Best.Fprintf(w, "%s: %s", label, strings.ToUpper(string(rec.Best.Word)))
	fmt.Fprintf(w, "  (%.3f expected guesses, %s, depth %d, %s)\n", rec.Best.Cost, rec.Strategy, rec.Depth, rec.Elapsed.Round(time.Millisecond))
	if rec.Advice != nil {
		C.Info.Fprintf(w, "Advisor picks %s: %s\n", strings.ToUpper(string(rec.Advice.Word)), rec.Advice.Reasoning)
	}
}

// printSummary renders history aggregates.
func printSummary(w io.Writer, title string, sum history.Summary, by []history.StrategySummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Strategy", "Depth", "Games", "Wins", "Win %", "Avg guesses", "Worst"})
	for _, s := range by {
		t.AppendRow(table.Row{s.Strategy, s.Depth, s.Games, s.Wins, percent(s.Wins, s.Games), fmt.Sprintf("%.3f", s.AvgGuesses), s.Worst})
	}
	t.AppendFooter(table.Row{"all", "", sum.Games, sum.Wins, percent(sum.Wins, sum.Games), fmt.Sprintf("%.3f", sum.AvgGuesses), sum.Worst})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func percent(n, d int) string {
	if d == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", 100*float64(n)/float64(d))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func joinWords(ws []words.Word) string {
	s := make([]string, len(ws))
	for i, w := range ws {
		s[i] = string(w)
	}
	return strings.Join(s, " ")
}
