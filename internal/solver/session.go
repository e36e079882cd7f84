// internal/solver/session.go
//
// One solving session: the constraint state, the remaining candidates and the
// search cache for a single game.
//
// Responsibilities:
//   - Fold guesses and their feedback in order and refilter the pool.
//   - Recommend the next guess: entropy ranking, opening book on turn one,
//     lookahead search afterwards, optional advisor pick on top.
//   - Snapshot and replay so sessions can be stored between requests.

package solver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/constraint"
	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/infogain"
	"github.com/wortmanb/wordlebot/internal/lookahead"
	"github.com/wortmanb/wordlebot/internal/words"
)

// Config tunes recommendations.
type Config struct {
	Depth          int
	Strategy       lookahead.Strategy
	RankLimit      int        // entries kept in Recommendation.Ranked
	FirstGuess     words.Word // fixed opening; empty computes one
	PruneThreshold int
	CandidateLimit int
	MaxDepth       int
}

// DefaultConfig is used for zero fields of a Config.
func DefaultConfig() Config {
	return Config{
		Depth:          2,
		Strategy:       lookahead.Balanced,
		RankLimit:      10,
		PruneThreshold: lookahead.DefaultPruneThreshold,
		CandidateLimit: lookahead.DefaultCandidateLimit,
		MaxDepth:       lookahead.DefaultMaxDepth,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Depth < 0 {
		c.Depth = d.Depth
	}
	if !c.Strategy.Valid() {
		c.Strategy = d.Strategy
	}
	if c.RankLimit <= 0 {
		c.RankLimit = d.RankLimit
	}
	if c.PruneThreshold <= 0 {
		c.PruneThreshold = d.PruneThreshold
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = d.CandidateLimit
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	return c
}

// Turn is one folded guess.
type Turn struct {
	Guess     words.Word   `json:"guess"`
	Pattern   game.Pattern `json:"pattern"`
	Remaining int          `json:"remaining"`
}

// Session tracks one game. Methods are safe for concurrent use; guesses
// are applied one at a time in call order.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	lists   *words.Lists
	cfg     Config
	tie     words.TieBreak
	advisor Advisor
	log     zerolog.Logger

	state   constraint.State
	pool    words.Pool
	turns   []Turn
	cache   *cache.Memory
	engine  *lookahead.Engine
	opening *infogain.FirstGuess
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session identifier instead of a random one.
func WithID(id string) Option { return func(s *Session) { s.ID = id } }

// WithAdvisor attaches an external advisor consulted after each search.
func WithAdvisor(a Advisor) Option { return func(s *Session) { s.advisor = a } }

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithTieBreak replaces the default positional-frequency tie-break.
func WithTieBreak(tb words.TieBreak) Option { return func(s *Session) { s.tie = tb } }

// NewSession starts a game over the answers in lists.
func NewSession(lists *words.Lists, cfg Config, opts ...Option) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		lists:   lists,
		cfg:     cfg.withDefaults(),
		tie:     words.NewFrequency(lists.Answers).TieBreak(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session", s.ID).Logger()
	s.reset()
	return s
}

func (s *Session) reset() {
	s.state = constraint.New(s.lists.Length)
	s.pool = s.lists.AnswerPool()
	s.turns = nil
	s.cache = cache.NewMemory()
	s.engine = lookahead.New(s.cache,
		lookahead.WithPruneThreshold(s.cfg.PruneThreshold),
		lookahead.WithCandidateLimit(s.cfg.CandidateLimit),
		lookahead.WithMaxDepth(s.cfg.MaxDepth),
		lookahead.WithTieBreak(s.tie),
		lookahead.WithLogger(s.log),
	)
	s.opening = nil
}

// Reset starts a new game, dropping all knowledge and cached results.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.log.Debug().Msg("session reset")
}

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// Apply parses a guess and its feedback in any notation ParseResponse
// accepts, then folds it in.
func (s *Session) Apply(guess, response string) (Turn, error) {
	w, err := words.Parse(guess, s.lists.Length)
	if err != nil {
		return Turn{}, err
	}
	p, err := game.ParseResponse(w, response)
	if err != nil {
		return Turn{}, err
	}
	return s.ApplyPattern(w, p)
}

// ApplyPattern folds guess with pattern p and refilters the candidates.
func (s *Session) ApplyPattern(guess words.Word, p game.Pattern) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := constraint.Fold(s.state, guess, p)
	if err != nil {
		return Turn{}, err
	}
	s.state = next
	s.pool = constraint.Filter(s.pool, next)
	t := Turn{Guess: guess, Pattern: p, Remaining: s.pool.Len()}
	s.turns = append(s.turns, t)

	lvl := zerolog.DebugLevel
	if s.pool.Empty() {
		lvl = zerolog.WarnLevel
	}
	s.log.WithLevel(lvl).Str("guess", string(guess)).Str("pattern", p.String()).Int("remaining", t.Remaining).Msg("applied guess")
	return t, nil
}

// Candidates is the current pool.
func (s *Session) Candidates() words.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool
}

// State is the current constraint state.
func (s *Session) State() constraint.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turns lists the guesses applied so far.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Solved reports whether the last guess was all hits.
func (s *Session) Solved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns) > 0 && s.turns[len(s.turns)-1].Pattern.AllHit()
}

// Engine exposes the session's lookahead engine. Reset replaces it.
func (s *Session) Engine() *lookahead.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Request overrides the configured search for one recommendation.
// Zero values keep the session configuration.
type Request struct {
	Depth    *int
	Strategy lookahead.Strategy
	Limit    int
}

// Recommendation is everything the display layer needs for one turn.
type Recommendation struct {
	Remaining  int                `json:"remaining"`
	Candidates []words.Word       `json:"candidates"`
	Ranked     []infogain.Scored  `json:"ranked"`
	Best       lookahead.Move     `json:"best"`
	Opening    bool               `json:"opening"`
	Tied       []words.Word       `json:"tied,omitempty"`
	Strategy   lookahead.Strategy `json:"strategy"`
	Depth      int                `json:"depth"`
	Advice     *Advice            `json:"advice,omitempty"`
	Elapsed    time.Duration      `json:"elapsedNs"`
}

// Choice is the word to play: the advisor's pick when there is one,
// otherwise the search result.
func (r Recommendation) Choice() words.Word {
	if r.Advice != nil && r.Advice.Word != "" {
		return r.Advice.Word
	}
	return r.Best.Word
}

// Recommend ranks the remaining candidates and searches for the best guess.
// With no candidates left it returns an empty recommendation, not an error.
func (s *Session) Recommend(ctx context.Context, req Request) (Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	depth := s.cfg.Depth
	if req.Depth != nil {
		depth = *req.Depth
	}
	st := s.cfg.Strategy
	if req.Strategy != 0 {
		st = req.Strategy
	}
	limit := s.cfg.RankLimit
	if req.Limit > 0 {
		limit = req.Limit
	}

	rec := Recommendation{Remaining: s.pool.Len(), Strategy: st, Depth: depth}
	if s.pool.Empty() {
		s.log.Warn().Msg("no candidates remain")
		return rec, nil
	}
	rec.Candidates = lo.Slice(s.pool.Words(), 0, limit)

	ranked, err := s.engine.Calculator().Rank(ctx, s.pool.Words(), s.pool, s.tie)
	if err != nil {
		return Recommendation{}, fmt.Errorf("rank candidates: %w", err)
	}
	rec.Ranked = lo.Slice(ranked, 0, limit)

	if len(s.turns) == 0 {
		if err := s.recommendOpening(ctx, &rec, depth, st); err != nil {
			return Recommendation{}, err
		}
	} else {
		move, err := s.engine.BestMove(ctx, s.pool, depth, st)
		if err != nil {
			return Recommendation{}, fmt.Errorf("lookahead: %w", err)
		}
		rec.Best = move
	}

	s.consultAdvisor(ctx, &rec)
	rec.Elapsed = time.Since(start)
	s.log.Info().
		Str("best", string(rec.Best.Word)).
		Float64("cost", rec.Best.Cost).
		Int("remaining", rec.Remaining).
		Str("strategy", st.String()).
		Int("depth", depth).
		Dur("elapsed", rec.Elapsed).
		Msg("recommendation")
	return rec, nil
}

// recommendOpening fills rec.Best on the first turn from the configured
// opening or the best first guess over the full vocabulary.
func (s *Session) recommendOpening(ctx context.Context, rec *Recommendation, depth int, st lookahead.Strategy) error {
	rec.Opening = true
	word := s.cfg.FirstGuess
	if word == "" {
		if s.opening == nil {
			fg, err := s.engine.Calculator().BestFirstGuess(ctx, s.lists.Allowed, s.pool, s.tie)
			if err != nil {
				return fmt.Errorf("first guess: %w", err)
			}
			s.opening = &fg
		}
		word = s.opening.Best.Word
		rec.Tied = s.opening.Tied
	}
	// a shallow cost keeps turn one fast over the full pool
	cost, err := s.engine.EvaluateMove(ctx, word, s.pool, min(depth, 1), st)
	if err != nil {
		return fmt.Errorf("evaluate opening %q: %w", word, err)
	}
	rec.Best = lookahead.Move{Word: word, Cost: cost, Ranked: []lookahead.Candidate{{Word: word, Cost: cost}}}
	return nil
}

// Snapshot is the persistable form of a session.
type Snapshot struct {
	ID        string             `json:"id"`
	Strategy  lookahead.Strategy `json:"strategy"`
	Depth     int                `json:"depth"`
	Turns     []Turn             `json:"turns"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Snapshot captures the session's guesses and settings.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		Strategy:  s.cfg.Strategy,
		Depth:     s.cfg.Depth,
		Turns:     append([]Turn(nil), s.turns...),
		CreatedAt: s.Created,
		UpdatedAt: time.Now().UTC(),
	}
}

// Restore rebuilds a session by replaying a snapshot's turns in order.
func Restore(lists *words.Lists, cfg Config, snap Snapshot, opts ...Option) (*Session, error) {
	cfg.Strategy = snap.Strategy
	cfg.Depth = snap.Depth
	s := NewSession(lists, cfg, append(opts, WithID(snap.ID))...)
	if !snap.CreatedAt.IsZero() {
		s.Created = snap.CreatedAt
	}
	for i, t := range snap.Turns {
		if _, err := s.ApplyPattern(t.Guess, t.Pattern); err != nil {
			return nil, fmt.Errorf("replay turn %d: %w", i+1, err)
		}
	}
	return s, nil
}
