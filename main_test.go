package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wortmanb/wordlebot/internal/config"
	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/lookahead"
	"github.com/wortmanb/wordlebot/internal/solver"
	"github.com/wortmanb/wordlebot/internal/words"
)

func init() { color.NoColor = true }

var alWords = []string{"usual", "metal", "moral", "final", "rural", "ideal", "legal", "trial"}

func testLists() *words.Lists { return words.NewLists(alWords, []string{"zonal"}, 5) }

// script answers prompts from a fixed list, then reports end of input.
type script struct {
	lines   []string
	prompts []string
	history []string
}

func (s *script) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) AppendHistory(item string) { s.history = append(s.history, item) }

func TestRunSolveAcceptsSuggestions(t *testing.T) {
	sess := solver.NewSession(testLists(), solver.Config{Depth: 2})
	in := &script{lines: []string{"", "XXXGG", "", "GGGGG"}}
	var out bytes.Buffer

	require.NoError(t, runSolve(context.Background(), sess, in, &out, nil))
	assert.True(t, sess.Solved())
	assert.Equal(t, "guess [metal]: ", in.prompts[0])
	assert.Equal(t, "guess [rural]: ", in.prompts[2])
	assert.Contains(t, out.String(), "Opening: METAL")
	assert.Contains(t, out.String(), "Solved in 2!")
}

func TestRunSolveRecordsSolve(t *testing.T) {
	ctx := context.Background()
	db, err := history.Open(ctx, filepath.Join(t.TempDir(), "solves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	hist := history.NewStore(db)

	sess := solver.NewSession(testLists(), solver.Config{Depth: 2})
	in := &script{lines: []string{"", "XXXGG", "", "GGGGG"}}
	var out bytes.Buffer
	require.NoError(t, runSolve(ctx, sess, in, &out, hist))

	recent, err := hist.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	r := recent[0]
	assert.Equal(t, sess.ID, r.SessionID)
	assert.Equal(t, "rural", r.Solution)
	assert.Equal(t, 2, r.Guesses)
	assert.True(t, r.Won)
	assert.Equal(t, []string{"metal", "rural"}, r.Sequence)
	assert.Equal(t, "interactive", r.Source)
	assert.Equal(t, "balanced", r.Strategy)
	assert.Equal(t, 2, r.Depth)
}

func TestRunSolveQuitRecordsNothing(t *testing.T) {
	ctx := context.Background()
	db, err := history.Open(ctx, filepath.Join(t.TempDir(), "solves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	hist := history.NewStore(db)

	sess := solver.NewSession(testLists(), solver.Config{Depth: 1})
	in := &script{lines: []string{"", "XXXGG", "/quit"}}
	require.NoError(t, runSolve(ctx, sess, in, io.Discard, hist))

	sum, err := hist.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Games)
}

func TestRunSolveCommands(t *testing.T) {
	sess := solver.NewSession(testLists(), solver.Config{Depth: 1})
	in := &script{lines: []string{
		"/strategy safe",
		"/depth x",
		"/bogus",
		"trial", "XXQGG", // bad feedback is reported and the prompt repeats
		"trial", "???AL",
		"/reset",
		"quit",
	}}
	var out bytes.Buffer

	require.NoError(t, runSolve(context.Background(), sess, in, &out, nil))
	s := out.String()
	assert.Contains(t, s, "depth must be a non-negative integer")
	assert.Contains(t, s, "unknown command")
	assert.Contains(t, s, "invalid response")
	assert.Contains(t, s, "safe")
	assert.Empty(t, sess.Turns(), "reset clears the game")
	assert.Contains(t, in.history, "/strategy safe")
}

func TestRunSolveEndOfInput(t *testing.T) {
	sess := solver.NewSession(testLists(), solver.Config{})
	var out bytes.Buffer
	require.NoError(t, runSolve(context.Background(), sess, &script{}, &out, nil))
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunSolveTooDeep(t *testing.T) {
	sess := solver.NewSession(testLists(), solver.Config{})
	in := &script{lines: []string{"", "XXXGG", "/depth 40", "quit"}}
	var out bytes.Buffer
	require.NoError(t, runSolve(context.Background(), sess, in, &out, nil))
	assert.Contains(t, out.String(), lookahead.ErrDepthExceeded.Error())
}

func TestSelfPlay(t *testing.T) {
	ctx := context.Background()
	lists := testLists()
	scfg := solver.Config{Depth: 2, FirstGuess: "metal"}

	r, err := selfPlay(ctx, lists, scfg, "rural", game.DefaultRows)
	require.NoError(t, err)
	assert.True(t, r.Won)
	assert.Equal(t, 2, r.Guesses)
	assert.Equal(t, []string{"metal", "rural"}, r.Sequence)
	assert.Equal(t, "selfplay", r.Source)
	assert.Equal(t, "balanced", r.Strategy)

	r, err = selfPlay(ctx, lists, scfg, "usual", 1)
	require.NoError(t, err)
	assert.False(t, r.Won)
	assert.Equal(t, 1, r.Guesses)
}

func TestPlayAll(t *testing.T) {
	lists := testLists()
	var done int
	results, err := playAll(context.Background(), lists, solver.Config{Depth: 1, FirstGuess: "metal"}, lists.Answers, 4, game.DefaultRows, func() { done++ })
	require.NoError(t, err)
	require.Len(t, results, len(lists.Answers))
	for i, r := range results {
		assert.Equal(t, string(lists.Answers[i]), r.Solution)
		assert.True(t, r.Won, r.Solution)
		assert.Equal(t, "metal", r.Sequence[0])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = playAll(ctx, lists, solver.Config{Depth: 1, FirstGuess: "metal"}, lists.Answers, 2, game.DefaultRows, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolverConfig(t *testing.T) {
	c := config.Default()
	sc, err := solverConfig(c)
	require.NoError(t, err)
	assert.Equal(t, lookahead.Balanced, sc.Strategy)
	assert.Equal(t, 2, sc.Depth)
	assert.Empty(t, sc.FirstGuess)

	c.Solver.FirstGuess = "CRANE"
	sc, err = solverConfig(c)
	require.NoError(t, err)
	assert.Equal(t, words.Word("crane"), sc.FirstGuess)

	c.Solver.Strategy = "reckless"
	_, err = solverConfig(c)
	assert.ErrorIs(t, err, lookahead.ErrUnknownStrategy)

	c = config.Default()
	c.Solver.Depth = -1
	_, err = solverConfig(c)
	assert.ErrorIs(t, err, lookahead.ErrNegativeDepth)
}

func TestPlayTargetList(t *testing.T) {
	lists := testLists()
	cfg = config.Default()
	t.Cleanup(func() { playTargets, playDaily, playSample = nil, false, 0 })

	ts, err := playTargetList(lists)
	require.NoError(t, err)
	assert.Equal(t, lists.Answers, ts)

	playTargets = []string{"Metal", "usual"}
	ts, err = playTargetList(lists)
	require.NoError(t, err)
	assert.Equal(t, []words.Word{"metal", "usual"}, ts)

	playTargets = []string{"toolong"}
	_, err = playTargetList(lists)
	assert.ErrorIs(t, err, words.ErrInvalidWordLength)

	playTargets, playDaily = nil, true
	ts, err = playTargetList(lists)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Contains(t, lists.Answers, ts[0])

	playDaily, playSample = false, 3
	ts, err = playTargetList(lists)
	require.NoError(t, err)
	assert.Len(t, ts, 3)
	assert.Subset(t, lists.Answers, ts)
}

func TestTiles(t *testing.T) {
	p, err := game.NewPattern(game.MarkHit, game.MarkPresent, game.MarkAbsent)
	require.NoError(t, err)
	assert.Equal(t, " A  B  C ", tiles("abc", p))
}
