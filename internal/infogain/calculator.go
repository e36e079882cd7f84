package infogain

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/words"
)

// tolerance for treating two entropies as equal
const epsilon = 1e-9

// Scored is the single-step value of one guess against a pool.
type Scored struct {
	Word              words.Word `json:"word"`
	Entropy           float64    `json:"entropy"`
	ExpectedRemaining float64    `json:"expectedRemaining"`
	Largest           int        `json:"largest"`
	Buckets           int        `json:"buckets"`
	Candidate         bool       `json:"candidate"` // the guess could itself be the answer
}

// Calculator partitions and scores guesses, memoizing results in a
// session cache.
type Calculator struct {
	cache    cache.Cache
	workers  int
	progress func()
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithWorkers bounds the goroutines BestFirstGuess uses. n < 1 means
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

// WithProgress installs a callback run once per guess scored by
// BestFirstGuess. It may be called from several goroutines.
func WithProgress(fn func()) Option {
	return func(c *Calculator) { c.progress = fn }
}

// NewCalculator returns a Calculator backed by c. A nil cache disables
// memoization.
func NewCalculator(c cache.Cache, opts ...Option) *Calculator {
	if c == nil {
		c = cache.Nop{}
	}
	calc := &Calculator{cache: c, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(calc)
	}
	return calc
}

// Cache exposes the session cache the calculator writes to.
func (c *Calculator) Cache() cache.Cache { return c.cache }

// Partition is the package-level Partition with memoization.
func (c *Calculator) Partition(guess words.Word, pool words.Pool) (PartitionMap, error) {
	key := cache.Key{Kind: cache.KindPartition, Guess: string(guess), Pool: pool.Fingerprint()}
	if v, ok := c.cache.Get(key); ok {
		return v.(PartitionMap), nil
	}
	pm, err := Partition(guess, pool)
	if err != nil {
		return PartitionMap{}, err
	}
	c.cache.Put(key, pm)
	return pm, nil
}

// Score evaluates guess against pool without keeping the partition.
func (c *Calculator) Score(guess words.Word, pool words.Pool) (Scored, error) {
	key := cache.Key{Kind: cache.KindScore, Guess: string(guess), Pool: pool.Fingerprint()}
	if v, ok := c.cache.Get(key); ok {
		return v.(Scored), nil
	}
	pm, err := Partition(guess, pool)
	if err != nil {
		return Scored{}, err
	}
	s := Scored{
		Word:              guess,
		Entropy:           pm.Entropy(),
		ExpectedRemaining: pm.ExpectedRemaining(),
		Largest:           pm.Largest(),
		Buckets:           len(pm.Buckets),
		Candidate:         pm.Solves(),
	}
	c.cache.Put(key, s)
	return s, nil
}

// Rank scores every guess against pool and orders them by entropy, highest
// first. Equal entropies keep input order unless tie is non-nil.
func (c *Calculator) Rank(ctx context.Context, guesses []words.Word, pool words.Pool, tie words.TieBreak) ([]Scored, error) {
	out := make([]Scored, 0, len(guesses))
	for _, g := range guesses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := c.Score(g, pool)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	SortScored(out, tie)
	return out, nil
}

// SortScored orders scores by entropy descending, stable on ties.
func SortScored(s []Scored, tie words.TieBreak) {
	sort.SliceStable(s, func(i, j int) bool {
		if d := s[i].Entropy - s[j].Entropy; math.Abs(d) > epsilon {
			return d > 0
		}
		if tie != nil {
			return tie(s[i].Word, s[j].Word)
		}
		return false
	})
}

// FirstGuess is the outcome of BestFirstGuess.
type FirstGuess struct {
	Best Scored       `json:"best"`
	Tied []words.Word `json:"tied"` // every guess within tolerance of the best entropy, vocabulary order
}

// BestFirstGuess scores every word of vocab against pool and returns the
// highest-entropy guess. Guesses are scored concurrently; the result does not
// depend on scheduling. Ties go to the earliest vocabulary word unless tie is
// supplied. An empty vocab or pool yields the zero FirstGuess.
func (c *Calculator) BestFirstGuess(ctx context.Context, vocab []words.Word, pool words.Pool, tie words.TieBreak) (FirstGuess, error) {
	if len(vocab) == 0 || pool.Empty() {
		return FirstGuess{}, nil
	}

	scores := make([]Scored, len(vocab))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, w := range vocab {
		i, w := i, w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := c.Score(w, pool)
			if err != nil {
				return fmt.Errorf("score %q: %w", w, err)
			}
			scores[i] = s
			if c.progress != nil {
				c.progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FirstGuess{}, err
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Entropy > best.Entropy+epsilon {
			best = s
		} else if tie != nil && math.Abs(s.Entropy-best.Entropy) <= epsilon && tie(s.Word, best.Word) {
			best = s
		}
	}

	res := FirstGuess{Best: best}
	for _, s := range scores {
		if math.Abs(s.Entropy-best.Entropy) <= epsilon {
			res.Tied = append(res.Tied, s.Word)
		}
	}
	return res, nil
}
