package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/lookahead"
	"github.com/wortmanb/wordlebot/internal/solver"
)

// solveHelp is the solve command's long help, also printed by /help.
const solveHelp = `Suggests a guess, then asks what you played and the feedback you got.

Press enter at the guess prompt to play the suggestion. Commands:
  /strategy <name>  switch between aggressive, safe and balanced
  /depth <n>        change the lookahead depth
  /reset            start a new game
  /help             show this text
  /quit             exit`

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Interactive assistant for a game you are playing",
	Long:  solveHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := loadLists()
		if err != nil {
			return err
		}
		scfg, err := solverConfig(cfg)
		if err != nil {
			return err
		}
		sess := solver.NewSession(lists, scfg, sessionOptions(cfg)...)

		hist, closeHist, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeHist()
		var recorder solveRecorder
		if hist != nil {
			recorder = hist
		}

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		return runSolve(cmd.Context(), sess, line, os.Stdout, recorder)
	},
}

// prompter reads one line of input; *liner.State satisfies it.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// historian is implemented by prompters that keep input history.
type historian interface {
	AppendHistory(item string)
}

// solveRecorder stores finished games; *history.Store satisfies it.
type solveRecorder interface {
	Insert(ctx context.Context, r history.Result) (int64, error)
}

// solveState is the per-loop search override set by commands.
type solveState struct {
	req   solver.Request
	depth int
	start time.Time
}

// runSolve drives one interactive game until it is solved or the user quits.
// Solved games are written to recorder when it is not nil.
func runSolve(ctx context.Context, sess *solver.Session, in prompter, out io.Writer, recorder solveRecorder) error {
	st := &solveState{start: time.Now()}
	for {
		rec, err := sess.Recommend(ctx, st.req)
		if errors.Is(err, lookahead.ErrDepthExceeded) {
			C.Warn.Fprintln(out, err)
			st.req.Depth = nil
			continue
		}
		if err != nil {
			return err
		}
		printBoard(out, sess.Turns())
		printRecommendation(out, rec)
		if rec.Remaining == 0 {
			C.Info.Fprintln(out, "Type /reset to start over or /quit to exit.")
		}

		quit, err := st.readTurn(sess, rec, in, out)
		if err != nil || quit {
			return err
		}
		if sess.Solved() {
			printBoard(out, sess.Turns())
			C.Best.Fprintf(out, "Solved in %d!\n", len(sess.Turns()))
			st.record(ctx, sess, recorder)
			return nil
		}
	}
}

// record logs a solved game. Failures are reported but never end the session.
func (st *solveState) record(ctx context.Context, sess *solver.Session, rec solveRecorder) {
	if rec == nil {
		return
	}
	turns := sess.Turns()
	r := history.Result{
		SessionID: sess.ID,
		Solution:  string(turns[len(turns)-1].Guess),
		Guesses:   len(turns),
		Strategy:  sess.Config().Strategy.String(),
		Depth:     sess.Config().Depth,
		Won:       true,
		ElapsedMs: time.Since(st.start).Milliseconds(),
		Sequence:  lo.Map(turns, func(t solver.Turn, _ int) string { return string(t.Guess) }),
		Source:    "interactive",
		CreatedAt: time.Now(),
	}
	if st.req.Strategy.Valid() {
		r.Strategy = st.req.Strategy.String()
	}
	if st.req.Depth != nil {
		r.Depth = *st.req.Depth
	}
	if _, err := rec.Insert(ctx, r); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("failed to record solve")
	}
}

// readTurn prompts until a guess is applied or a command asks for a fresh
// recommendation. It reports whether the user quit.
func (st *solveState) readTurn(sess *solver.Session, rec solver.Recommendation, in prompter, out io.Writer) (bool, error) {
	for {
		input, err := in.Prompt(fmt.Sprintf("guess [%s]: ", rec.Choice()))
		if err != nil {
			return aborted(err, out)
		}
		input = strings.TrimSpace(input)
		if h, ok := in.(historian); ok && input != "" {
			h.AppendHistory(input)
		}

		if input == "quit" || input == "q" || strings.HasPrefix(input, "/") {
			quit, err := st.command(sess, input, out)
			if err != nil {
				C.Warn.Fprintln(out, err)
				continue
			}
			return quit, nil
		}

		guess := input
		if guess == "" {
			guess = string(rec.Choice())
		}
		if guess == "" {
			continue
		}

		resp, err := in.Prompt("feedback (G/Y/X, 2/1/0 or case): ")
		if err != nil {
			return aborted(err, out)
		}
		if _, err := sess.Apply(guess, strings.TrimSpace(resp)); err != nil {
			C.Warn.Fprintln(out, err)
			continue
		}
		return false, nil
	}
}

// aborted turns Ctrl-C and end of input into a clean exit.
func aborted(err error, out io.Writer) (bool, error) {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		C.Info.Fprintln(out, "Goodbye!")
		return true, nil
	}
	return true, fmt.Errorf("read input: %w", err)
}

// command handles slash commands. It reports whether to exit; an error means
// the input was not understood and the prompt should repeat.
func (st *solveState) command(sess *solver.Session, input string, out io.Writer) (bool, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimPrefix(input, "/")))
	if len(fields) == 0 {
		return false, errors.New("empty command, try /help")
	}
	switch fields[0] {
	case "quit", "q", "exit":
		return true, nil
	case "reset":
		sess.Reset()
		st.req = solver.Request{}
		st.start = time.Now()
		return false, nil
	case "help", "h":
		fmt.Fprintln(out, solveHelp)
		return false, nil
	case "strategy":
		if len(fields) != 2 {
			return false, errors.New("usage: /strategy <aggressive|safe|balanced>")
		}
		s, err := lookahead.ParseStrategy(fields[1])
		if err != nil {
			return false, err
		}
		st.req.Strategy = s
		return false, nil
	case "depth":
		if len(fields) != 2 {
			return false, errors.New("usage: /depth <n>")
		}
		d, err := strconv.Atoi(fields[1])
		if err != nil || d < 0 {
			return false, fmt.Errorf("depth must be a non-negative integer, got %q", fields[1])
		}
		st.depth = d
		st.req.Depth = &st.depth
		return false, nil
	}
	return false, fmt.Errorf("unknown command %q, try /help", fields[0])
}
