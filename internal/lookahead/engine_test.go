package lookahead

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/words"
)

func pool(ws ...string) words.Pool {
	out := make([]words.Word, len(ws))
	for i, w := range ws {
		out[i] = words.Word(w)
	}
	return words.NewPool(out)
}

// Eight words ending in "al". "metal" splits them into buckets of at most
// three with a good average; "trial" never leaves more than two.
var alPool = pool("usual", "metal", "moral", "final", "rural", "ideal", "legal", "trial")

// Six words that differ only in the first letter: every guess leaves the
// other five together.
var oundPool = pool("bound", "found", "pound", "round", "sound", "wound")

func TestBestMoveDepthZero(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		st   Strategy
		word words.Word
		cost float64
	}{
		{Aggressive, "trial", 2.25},
		{Safe, "trial", 3.0},
		{Balanced, "trial", 2.52},
	}
	for _, tc := range cases {
		t.Run(tc.st.String(), func(t *testing.T) {
			m, err := New(nil).BestMove(ctx, alPool, 0, tc.st)
			require.NoError(t, err)
			assert.True(t, m.Found())
			assert.Equal(t, tc.word, m.Word)
			assert.InDelta(t, tc.cost, m.Cost, 1e-9)
			assert.Len(t, m.Ranked, alPool.Len())
			assert.Equal(t, tc.word, m.Ranked[0].Word)
			for i := 1; i < len(m.Ranked); i++ {
				assert.LessOrEqual(t, m.Ranked[i-1].Cost, m.Ranked[i].Cost+1e-9)
			}
		})
	}
}

func TestEvaluateMoveDepthZero(t *testing.T) {
	e := New(nil)
	ctx := context.Background()

	c, err := e.EvaluateMove(ctx, "metal", alPool, 0, Aggressive)
	require.NoError(t, err)
	assert.InDelta(t, 2.4693609377704338, c, 1e-9)

	c, err = e.EvaluateMove(ctx, "metal", alPool, 0, Safe)
	require.NoError(t, err)
	assert.InDelta(t, 3.584963, c, 1e-6)

	c, err = e.EvaluateMove(ctx, "trial", alPool, 0, Aggressive)
	require.NoError(t, err)
	assert.InDelta(t, 2.25, c, 1e-9)
}

func TestSmallBucketsCostTheSameAtEveryDepth(t *testing.T) {
	ctx := context.Background()
	// "trial" splits alPool into buckets of 2, 1, 2, 2 and 1
	want := map[Strategy]float64{Aggressive: 2.25, Safe: 3.0, Balanced: 2.52}
	for _, st := range Strategies {
		t.Run(st.String(), func(t *testing.T) {
			e := New(nil)
			for depth := 0; depth <= 3; depth++ {
				c, err := e.EvaluateMove(ctx, "trial", alPool, depth, st)
				require.NoError(t, err)
				assert.InDelta(t, want[st], c, 1e-9, "depth %d", depth)
			}
		})
	}
}

func TestHeuristicCost(t *testing.T) {
	pair, err := New(nil).Calculator().Partition("zzzzz", pool("metal", "petal"))
	require.NoError(t, err)
	require.Len(t, pair.Buckets, 1)
	assert.InDelta(t, 2.5, heuristicCost(pair.Buckets[0], Aggressive), 1e-12)
	assert.InDelta(t, 3.0, heuristicCost(pair.Buckets[0], Safe), 1e-12)
	assert.InDelta(t, 2.7, heuristicCost(pair.Buckets[0], Balanced), 1e-12)

	single, err := New(nil).Calculator().Partition("zzzzz", pool("metal"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, heuristicCost(single.Buckets[0], Safe))
}

func TestDepthZeroNeverRecurses(t *testing.T) {
	e := New(cache.Nop{})
	_, err := e.EvaluateMove(context.Background(), "usual", alPool, 0, Balanced)
	require.NoError(t, err)
	assert.Equal(t, Stats{Expansions: 0, Evaluations: 1}, e.Stats())

	e.ResetStats()
	_, err = e.EvaluateMove(context.Background(), "usual", alPool, 1, Balanced)
	require.NoError(t, err)
	assert.Greater(t, e.Stats().Expansions, int64(0))
}

func TestBestMoveDeeper(t *testing.T) {
	ctx := context.Background()

	m, err := New(nil).BestMove(ctx, alPool, 1, Aggressive)
	require.NoError(t, err)
	assert.Equal(t, words.Word("metal"), m.Word)
	assert.InDelta(t, 2.125, m.Cost, 1e-9)
	assert.Equal(t, words.Word("moral"), m.Ranked[1].Word)
	assert.InDelta(t, 2.25, m.Ranked[1].Cost, 1e-9)

	m, err = New(nil).BestMove(ctx, alPool, 1, Balanced)
	require.NoError(t, err)
	assert.Equal(t, words.Word("metal"), m.Word)
	assert.InDelta(t, 2.425, m.Cost, 1e-9)

	// everything but "final" ties at three guesses; first seen wins
	m, err = New(nil).BestMove(ctx, alPool, 1, Safe)
	require.NoError(t, err)
	assert.Equal(t, words.Word("usual"), m.Word)
	assert.InDelta(t, 3.0, m.Cost, 1e-9)

	alpha := WithTieBreak(func(a, b words.Word) bool { return a < b })
	m, err = New(nil, alpha).BestMove(ctx, alPool, 1, Safe)
	require.NoError(t, err)
	assert.Equal(t, words.Word("ideal"), m.Word)
	assert.Equal(t, words.Word("ideal"), m.Ranked[0].Word)
}

func TestDeeperSearchRefinesCost(t *testing.T) {
	ctx := context.Background()
	e := New(nil)

	c1, err := e.EvaluateMove(ctx, "bound", oundPool, 1, Aggressive)
	require.NoError(t, err)
	c3, err := e.EvaluateMove(ctx, "bound", oundPool, 3, Aggressive)
	require.NoError(t, err)
	assert.InDelta(t, 23.0/6, c1, 1e-9)
	assert.InDelta(t, 3.5, c3, 1e-9, "one word ruled out per guess")

	c, err := e.EvaluateMove(ctx, "bound", oundPool, 3, Safe)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, c, 1e-9)
}

func TestSingleWordPool(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	one := pool("metal")
	for _, st := range Strategies {
		for depth := 0; depth <= 3; depth++ {
			c, err := e.EvaluateMove(ctx, "metal", one, depth, st)
			require.NoError(t, err)
			assert.Equal(t, 1.0, c)
			c, err = e.EvaluateMove(ctx, "trial", one, depth, st)
			require.NoError(t, err)
			assert.Equal(t, 1.0, c)
		}
		m, err := e.BestMove(ctx, one, 2, st)
		require.NoError(t, err)
		assert.Equal(t, words.Word("metal"), m.Word)
		assert.Equal(t, 1.0, m.Cost)
		assert.True(t, m.Tree.Closed)
	}
}

func TestTwoWordClosedForm(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	pair := pool("metal", "petal")

	cases := []struct {
		guess words.Word
		st    Strategy
		want  float64
	}{
		{"metal", Aggressive, 1.5},
		{"metal", Safe, 2},
		{"metal", Balanced, 1.7},
		{"pixie", Aggressive, 2}, // tells them apart
		{"pixie", Safe, 2},
		{"zzzzz", Aggressive, 2.5}, // cannot tell them apart
		{"zzzzz", Safe, 3},
	}
	for _, tc := range cases {
		for _, depth := range []int{0, 3} {
			c, err := e.EvaluateMove(ctx, tc.guess, pair, depth, tc.st)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, c, 1e-9, "%s %s depth %d", tc.guess, tc.st, depth)
		}
	}

	m, err := e.BestMove(ctx, pair, 2, Aggressive)
	require.NoError(t, err)
	assert.Equal(t, words.Word("metal"), m.Word)
	assert.InDelta(t, 1.5, m.Cost, 1e-9)
}

func TestEmptyPool(t *testing.T) {
	e := New(nil)
	m, err := e.BestMove(context.Background(), words.Pool{}, 2, Balanced)
	require.NoError(t, err)
	assert.False(t, m.Found())
	assert.Nil(t, m.Tree)

	c, err := e.EvaluateMove(context.Background(), "metal", words.Pool{}, 2, Balanced)
	require.NoError(t, err)
	assert.Zero(t, c)
}

func TestInvalidArguments(t *testing.T) {
	ctx := context.Background()
	e := New(nil, WithMaxDepth(3))

	_, err := e.EvaluateMove(ctx, "metal", alPool, -1, Safe)
	assert.ErrorIs(t, err, ErrNegativeDepth)
	_, err = e.BestMove(ctx, alPool, -1, Safe)
	assert.ErrorIs(t, err, ErrNegativeDepth)

	_, err = e.BestMove(ctx, alPool, 4, Safe)
	assert.ErrorIs(t, err, ErrDepthExceeded)

	_, err = e.BestMove(ctx, alPool, 1, Strategy(0))
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = e.EvaluateMove(ctx, "metals", alPool, 1, Safe)
	assert.ErrorIs(t, err, words.ErrInvalidWordLength)
}

func TestPruning(t *testing.T) {
	ctx := context.Background()

	e := New(nil, WithPruneThreshold(3))
	c, err := e.EvaluateMove(ctx, "bound", oundPool, 3, Aggressive)
	require.NoError(t, err)
	assert.InDelta(t, 23.0/6, c, 1e-9, "capped at one level")

	e = New(nil, WithCandidateLimit(3))
	m, err := e.BestMove(ctx, alPool, 0, Safe)
	require.NoError(t, err)
	assert.Equal(t, words.Word("trial"), m.Word)
	require.Len(t, m.Ranked, 3)
	assert.ElementsMatch(t, []words.Word{"metal", "trial", "moral"},
		[]words.Word{m.Ranked[0].Word, m.Ranked[1].Word, m.Ranked[2].Word})
}

func TestTree(t *testing.T) {
	m, err := New(nil).BestMove(context.Background(), alPool, 1, Aggressive)
	require.NoError(t, err)

	root := m.Tree
	require.NotNil(t, root)
	assert.Equal(t, words.Word("metal"), root.Guess)
	assert.Equal(t, 8, root.PoolSize)
	assert.InDelta(t, m.Cost, root.Cost, 1e-12)
	require.Len(t, root.Branches, 6)

	big := root.Branches[0]
	assert.Equal(t, "XXXGG", big.Pattern.String())
	assert.Equal(t, []words.Word{"usual", "final", "rural"}, big.Words)
	assert.InDelta(t, 3.0/8, big.Probability, 1e-12)
	assert.InDelta(t, 1+5.0/3, big.Cost, 1e-9)
	require.NotNil(t, big.Next)
	assert.Equal(t, words.Word("usual"), big.Next.Guess)
	assert.True(t, big.Next.Heuristic)

	solved := root.Branches[1]
	assert.True(t, solved.Pattern.AllHit())
	assert.Equal(t, 1.0, solved.Cost)
	assert.Nil(t, solved.Next)

	avg := 0.0
	for _, b := range root.Branches {
		avg += b.Probability * b.Cost
	}
	assert.InDelta(t, root.Cost, avg, 1e-9)
	assert.InDelta(t, 1+5.0/3, root.Worst(), 1e-9)

	nodes := 0
	root.Walk(func(*Node) { nodes++ })
	assert.Equal(t, 6, nodes)
}

func TestTreeDoesNotShareCachedWords(t *testing.T) {
	e := New(cache.NewMemory())
	m, err := e.BestMove(context.Background(), alPool, 1, Aggressive)
	require.NoError(t, err)
	m.Tree.Branches[0].Words[0] = "zzzzz"

	pm, err := e.Calculator().Partition(m.Word, alPool)
	require.NoError(t, err)
	assert.Equal(t, []words.Word{"usual", "final", "rural"}, pm.Buckets[0].Words)
}

func TestCacheIsShared(t *testing.T) {
	ctx := context.Background()
	shared := cache.NewMemory()

	first := New(shared)
	want, err := first.BestMove(ctx, alPool, 1, Balanced)
	require.NoError(t, err)
	assert.Greater(t, shared.Len(), 0)

	second := New(shared)
	got, err := second.BestMove(ctx, alPool, 1, Balanced)
	require.NoError(t, err)
	assert.Equal(t, want.Word, got.Word)
	assert.Equal(t, want.Cost, got.Cost)
	assert.Equal(t, Stats{}, second.Stats(), "pre-seeded cache answers everything")
}

// cancelingCache cancels a context after a number of writes and remembers
// every value written.
type cancelingCache struct {
	*cache.Memory
	mu     sync.Mutex
	after  int
	cancel context.CancelFunc
	puts   map[cache.Key]any
}

func (c *cancelingCache) Put(k cache.Key, v any) {
	c.Memory.Put(k, v)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts[k] = v
	if len(c.puts) >= c.after {
		c.cancel()
	}
}

func TestCancellationLeavesCacheConsistent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	partial := &cancelingCache{Memory: cache.NewMemory(), after: 10, cancel: cancel, puts: map[cache.Key]any{}}

	_, err := New(partial).BestMove(ctx, alPool, 2, Aggressive)
	require.ErrorIs(t, err, context.Canceled)
	require.NotEmpty(t, partial.puts)

	ref := cache.NewMemory()
	_, err = New(ref).BestMove(context.Background(), alPool, 2, Aggressive)
	require.NoError(t, err)

	for k, v := range partial.puts {
		want, ok := ref.Get(k)
		require.True(t, ok, "key %+v", k)
		assert.Equal(t, want, v, "key %+v", k)
	}
}

func TestLargePoolIsDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("searches the full answer list")
	}
	lists, err := words.Load("", "", 5)
	require.NoError(t, err)
	p := lists.AnswerPool()

	a, err := New(nil).BestMove(context.Background(), p, 1, Balanced)
	require.NoError(t, err)
	b, err := New(nil).BestMove(context.Background(), p, 1, Balanced)
	require.NoError(t, err)

	assert.Len(t, a.Ranked, DefaultCandidateLimit)
	assert.Equal(t, a.Word, b.Word)
	assert.Equal(t, a.Cost, b.Cost)
	assert.Greater(t, a.Cost, 1.0)
}
