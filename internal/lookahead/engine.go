// internal/lookahead/engine.go
//
// Bounded-depth minimax search over candidate pools.
//
// Cost model (guesses still needed, counting the one being evaluated):
//   - empty pool: 0; one word: 1.
//   - two words: closed form, each word equally likely:
//       guess is one of them        → outcomes {1, 2}
//       guess tells them apart      → outcomes {2, 2}
//       guess cannot tell them apart → outcomes {2, 3}
//   - depth 0: per bucket, 1 if solved, else 2 + log2(size).
//   - otherwise: per bucket, 1 if solved, else 1 + best cost of the bucket
//     at depth-1.
// Outcomes are combined by the Strategy. Pools larger than PruneThreshold
// recurse at most one level; pools larger than CandidateLimit only consider
// their top guesses by single-step entropy.

package lookahead

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/infogain"
	"github.com/wortmanb/wordlebot/internal/words"
)

const (
	DefaultPruneThreshold = 100
	DefaultCandidateLimit = 50
	DefaultMaxDepth       = 6

	// costs closer than this are equal
	tolerance = 1e-9
)

var (
	ErrNegativeDepth = errors.New("negative lookahead depth")
	ErrDepthExceeded = errors.New("lookahead depth exceeds maximum")
)

// Engine evaluates guesses by simulating the rest of the game.
// It is safe for concurrent use when its cache is.
type Engine struct {
	calc           *infogain.Calculator
	cache          cache.Cache
	pruneThreshold int
	candidateLimit int
	maxDepth       int
	tie            words.TieBreak
	log            zerolog.Logger

	expansions  atomic.Int64
	evaluations atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPruneThreshold sets the pool size above which search depth is capped at 1.
func WithPruneThreshold(n int) Option { return func(e *Engine) { e.pruneThreshold = n } }

// WithCandidateLimit sets how many top-entropy guesses a large pool considers.
func WithCandidateLimit(k int) Option { return func(e *Engine) { e.candidateLimit = k } }

// WithMaxDepth sets the deepest search a caller may request.
func WithMaxDepth(d int) Option { return func(e *Engine) { e.maxDepth = d } }

// WithTieBreak orders guesses whose costs are equal. Without it the first
// guess considered wins.
func WithTieBreak(tb words.TieBreak) Option { return func(e *Engine) { e.tie = tb } }

// WithLogger attaches a logger for pruning decisions.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// New builds an Engine memoizing into c. A nil cache gets a private
// in-memory one.
func New(c cache.Cache, opts ...Option) *Engine {
	if c == nil {
		c = cache.NewMemory()
	}
	e := &Engine{
		calc:           infogain.NewCalculator(c),
		cache:          c,
		pruneThreshold: DefaultPruneThreshold,
		candidateLimit: DefaultCandidateLimit,
		maxDepth:       DefaultMaxDepth,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculator is the information-gain calculator sharing the engine's cache.
func (e *Engine) Calculator() *infogain.Calculator { return e.calc }

// Stats counts work done since the engine was built or last reset.
type Stats struct {
	Expansions  int64 `json:"expansions"`  // best-move searches computed
	Evaluations int64 `json:"evaluations"` // guess evaluations computed
}

// Stats returns the work counters.
func (e *Engine) Stats() Stats {
	return Stats{Expansions: e.expansions.Load(), Evaluations: e.evaluations.Load()}
}

// ResetStats zeroes the work counters.
func (e *Engine) ResetStats() {
	e.expansions.Store(0)
	e.evaluations.Store(0)
}

// Candidate is one guess considered by BestMove with its cost.
type Candidate struct {
	Word words.Word `json:"word"`
	Cost float64    `json:"cost"`
}

// Move is the result of BestMove.
type Move struct {
	Word   words.Word  `json:"word"`
	Cost   float64     `json:"cost"`
	Tree   *Node       `json:"tree,omitempty"`
	Ranked []Candidate `json:"ranked"` // every guess considered, cheapest first
}

// Found reports whether a move was selected; it is false for an empty pool.
func (m Move) Found() bool { return m.Word != "" }

// best is the cached form of a best-move search.
type best struct {
	word words.Word
	cost float64
}

func (e *Engine) check(depth int, st Strategy) error {
	if depth < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDepth, depth)
	}
	if depth > e.maxDepth {
		return fmt.Errorf("%w: %d > %d", ErrDepthExceeded, depth, e.maxDepth)
	}
	if !st.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(st))
	}
	return nil
}

// EvaluateMove estimates how many guesses remain, this one included, if
// guess is played against pool.
func (e *Engine) EvaluateMove(ctx context.Context, guess words.Word, pool words.Pool, depth int, st Strategy) (float64, error) {
	if err := e.check(depth, st); err != nil {
		return 0, err
	}
	if !pool.Empty() && len(guess) != len(pool.At(0)) {
		return 0, fmt.Errorf("%w: guess %q against %d-letter pool", words.ErrInvalidWordLength, guess, len(pool.At(0)))
	}
	return e.evaluate(ctx, guess, pool, depth, st)
}

// BestMove evaluates every pool word as the next guess (or the top
// CandidateLimit of them by entropy for large pools) and returns the
// cheapest, with its evaluation tree. An empty pool yields a zero Move.
func (e *Engine) BestMove(ctx context.Context, pool words.Pool, depth int, st Strategy) (Move, error) {
	if err := e.check(depth, st); err != nil {
		return Move{}, err
	}
	if pool.Empty() {
		return Move{}, nil
	}

	cands, err := e.candidates(ctx, pool)
	if err != nil {
		return Move{}, err
	}
	ranked := make([]Candidate, 0, len(cands))
	for _, w := range cands {
		if err := ctx.Err(); err != nil {
			return Move{}, err
		}
		c, err := e.evaluate(ctx, w, pool, depth, st)
		if err != nil {
			return Move{}, err
		}
		ranked = append(ranked, Candidate{Word: w, Cost: c})
	}

	top := e.pick(ranked)
	e.cache.Put(bestKey(pool, depth, st), top)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if math.Abs(a.Cost-b.Cost) > tolerance {
			return a.Cost < b.Cost
		}
		if e.tie != nil {
			return e.tie(a.Word, b.Word)
		}
		return false
	})
	// keep the chosen word first even when its cost ties with others
	for i, c := range ranked {
		if c.Word == top.word {
			copy(ranked[1:i+1], ranked[:i])
			ranked[0] = c
			break
		}
	}

	tree, err := e.explain(ctx, top.word, pool, depth, st)
	if err != nil {
		return Move{}, err
	}
	return Move{Word: top.word, Cost: top.cost, Tree: tree, Ranked: ranked}, nil
}

// pick returns the cheapest candidate: first seen on ties, or the tie-break
// winner when one is configured.
func (e *Engine) pick(cs []Candidate) best {
	var b best
	for i, c := range cs {
		switch {
		case i == 0, c.Cost < b.cost-tolerance:
			b = best{word: c.Word, cost: c.Cost}
		case e.tie != nil && math.Abs(c.Cost-b.cost) <= tolerance && e.tie(c.Word, b.word):
			b = best{word: c.Word, cost: c.Cost}
		}
	}
	return b
}

// candidates lists the guesses worth evaluating for pool.
func (e *Engine) candidates(ctx context.Context, pool words.Pool) ([]words.Word, error) {
	if e.candidateLimit <= 0 || pool.Len() <= e.candidateLimit {
		return pool.Words(), nil
	}
	ranked, err := e.calc.Rank(ctx, pool.Words(), pool, nil)
	if err != nil {
		return nil, err
	}
	out := make([]words.Word, e.candidateLimit)
	for i := range out {
		out[i] = ranked[i].Word
	}
	e.log.Debug().Int("pool", pool.Len()).Int("limit", e.candidateLimit).Msg("subsampled candidate guesses")
	return out, nil
}

// bestMove is the memoized recursive search used inside evaluations.
func (e *Engine) bestMove(ctx context.Context, pool words.Pool, depth int, st Strategy) (best, error) {
	switch pool.Len() {
	case 0:
		return best{}, nil
	case 1:
		return best{word: pool.At(0), cost: 1}, nil
	}
	key := bestKey(pool, depth, st)
	if v, ok := e.cache.Get(key); ok {
		return v.(best), nil
	}
	e.expansions.Add(1)

	cands, err := e.candidates(ctx, pool)
	if err != nil {
		return best{}, err
	}
	scored := make([]Candidate, 0, len(cands))
	for _, w := range cands {
		if err := ctx.Err(); err != nil {
			return best{}, err
		}
		c, err := e.evaluate(ctx, w, pool, depth, st)
		if err != nil {
			return best{}, err
		}
		scored = append(scored, Candidate{Word: w, Cost: c})
	}
	b := e.pick(scored)
	e.cache.Put(key, b)
	return b, nil
}

func (e *Engine) evaluate(ctx context.Context, guess words.Word, pool words.Pool, depth int, st Strategy) (float64, error) {
	n := pool.Len()
	switch n {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	case 2:
		return st.aggregate(pairOutcomes(guess, pool)), nil
	}

	key := cache.Key{Kind: cache.KindEvaluation, Guess: string(guess), Pool: pool.Fingerprint(), Depth: depth, Strategy: uint8(st)}
	if v, ok := e.cache.Get(key); ok {
		return v.(float64), nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.evaluations.Add(1)

	pm, err := e.calc.Partition(guess, pool)
	if err != nil {
		return 0, err
	}

	outs := make([]outcome, 0, len(pm.Buckets))
	if depth == 0 {
		for _, b := range pm.Buckets {
			outs = append(outs, outcome{p: prob(b, n), cost: heuristicCost(b, st)})
		}
	} else {
		d := e.effectiveDepth(n, depth)
		for _, b := range pm.Buckets {
			cost := 1.0
			if !b.Pattern.AllHit() {
				child, err := e.bestMove(ctx, words.NewPool(b.Words), d-1, st)
				if err != nil {
					return 0, err
				}
				cost = 1 + child.cost
			}
			outs = append(outs, outcome{p: prob(b, n), cost: cost})
		}
	}

	cost := st.aggregate(outs)
	e.cache.Put(key, cost)
	return cost, nil
}

func (e *Engine) effectiveDepth(n, depth int) int {
	if e.pruneThreshold > 0 && n > e.pruneThreshold && depth > 1 {
		e.log.Debug().Int("pool", n).Int("depth", depth).Msg("pool over prune threshold, searching one level")
		return 1
	}
	return depth
}

// pairOutcomes is the closed form for a two-word pool.
func pairOutcomes(guess words.Word, pool words.Pool) []outcome {
	a, b := pool.At(0), pool.At(1)
	switch {
	case guess == a || guess == b:
		return []outcome{{0.5, 1}, {0.5, 2}}
	case game.Score(guess, a) != game.Score(guess, b):
		return []outcome{{0.5, 2}, {0.5, 2}}
	default:
		return []outcome{{0.5, 2}, {0.5, 3}}
	}
}

// heuristicCost estimates a bucket without searching it. Solved buckets
// cost 1 and buckets of one or two words use the same closed form as the
// search; larger ones cost one more guess plus log2 of their size.
func heuristicCost(b infogain.Bucket, st Strategy) float64 {
	switch {
	case b.Pattern.AllHit():
		return 1
	case b.Size() == 1:
		return 2
	case b.Size() == 2:
		return 1 + st.aggregate(pairOutcomes(b.Words[0], words.NewPool(b.Words)))
	}
	return 2 + math.Log2(float64(b.Size()))
}

func prob(b infogain.Bucket, n int) float64 { return float64(b.Size()) / float64(n) }

func bestKey(pool words.Pool, depth int, st Strategy) cache.Key {
	return cache.Key{Kind: cache.KindBestMove, Pool: pool.Fingerprint(), Depth: depth, Strategy: uint8(st)}
}
