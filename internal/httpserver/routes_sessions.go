// internal/httpserver/routes_sessions.go
//
// HTTP routes for solving sessions.
//   - POST   /sessions                        → start a session
//   - GET    /sessions                        → list stored session IDs
//   - GET    /sessions/{id}                   → snapshot, constraints and remaining candidates
//   - POST   /sessions/{id}/guesses           → apply a guess and its feedback
//   - GET    /sessions/{id}/recommendation    → rank and search for the next guess
//   - DELETE /sessions/{id}                   → drop a session
//
// Snapshots are the source of truth. The live solver (with its search cache)
// is kept in memory and rebuilt by replay when it is missing or behind the
// stored snapshot, e.g. after a restart or when another instance advanced it.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/wortmanb/wordlebot/internal/constraint"
	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/lookahead"
	"github.com/wortmanb/wordlebot/internal/solver"
	"github.com/wortmanb/wordlebot/internal/store"
	"github.com/wortmanb/wordlebot/internal/words"
)

// candidates shown in session responses
const candidatePreview = 50

// mountSessions registers all /sessions routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleNewSession)
		r.Get("/", s.handleListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/guesses", s.handleGuess)
			r.Get("/recommendation", s.handleRecommendation)
		})
	})
}

// sessionOptions are the per-session solver options.
func (s *Server) sessionOptions() []solver.Option {
	opts := []solver.Option{solver.WithLogger(log.Logger)}
	if s.opts.Advisor != nil {
		opts = append(opts, solver.WithAdvisor(s.opts.Advisor))
	}
	return opts
}

// session returns the live session for id, replaying the stored snapshot
// when needed.
func (s *Server) session(ctx context.Context, id string) (*solver.Session, error) {
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.sessions[id]; ok && len(live.Turns()) == len(snap.Turns) {
		return live, nil
	}
	live, err := solver.Restore(s.lists, s.opts.Solver, snap, s.sessionOptions()...)
	if err != nil {
		return nil, err
	}
	s.sessions[id] = live
	log.Debug().Str("session", id).Int("turns", len(snap.Turns)).Msg("session restored")
	return live, nil
}

// loadSession resolves {id} and writes the error response itself.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*solver.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.session(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	case err != nil:
		log.Error().Err(err).Str("session", id).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	return sess, true
}

type newSessionReq struct {
	Strategy string `json:"strategy"`
	Depth    *int   `json:"depth"`
}

type sessionRes struct {
	ID          string             `json:"id"`
	Strategy    lookahead.Strategy `json:"strategy"`
	Depth       int                `json:"depth"`
	Remaining   int                `json:"remaining"`
	Turns       []solver.Turn      `json:"turns"`
	Candidates  []words.Word       `json:"candidates"`
	Constraints constraint.Summary `json:"constraints"`
	Solved      bool               `json:"solved"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func describe(sess *solver.Session) sessionRes {
	cfg := sess.Config()
	pool := sess.Candidates()
	turns := sess.Turns()
	if turns == nil {
		turns = []solver.Turn{}
	}
	return sessionRes{
		ID:          sess.ID,
		Strategy:    cfg.Strategy,
		Depth:       cfg.Depth,
		Remaining:   pool.Len(),
		Turns:       turns,
		Candidates:  lo.Slice(pool.Words(), 0, candidatePreview),
		Constraints: sess.State().Summary(),
		Solved:      sess.Solved(),
		CreatedAt:   sess.Created,
	}
}

// handleNewSession creates a session with optional strategy/depth overrides.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	cfg := s.opts.Solver
	if req.Strategy != "" {
		st, err := lookahead.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Strategy = st
	}
	if req.Depth != nil {
		if err := s.checkDepth(*req.Depth); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Depth = *req.Depth
	}

	sess := solver.NewSession(s.lists, cfg, s.sessionOptions()...)
	if err := s.store.Save(r.Context(), sess.Snapshot()); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Info().Str("session", sess.ID).Str("strategy", sess.Config().Strategy.String()).Int("depth", sess.Config().Depth).Msg("session created")
	writeJSON(w, http.StatusCreated, describe(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list sessions")
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("session", id).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type guessReq struct {
	Guess    string `json:"guess"`
	Response string `json:"response"` // GYX, 210 or case notation
}

type guessRes struct {
	Pattern    game.Pattern `json:"pattern"`
	Feedback   string       `json:"feedback"` // case notation of the pattern
	Remaining  int          `json:"remaining"`
	Candidates []words.Word `json:"candidates"`
	Solved     bool         `json:"solved"`
}

// handleGuess folds one guess into the session and persists the snapshot.
// Solving the puzzle records the game in the history when one is configured.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if sess.Solved() {
		writeError(w, http.StatusConflict, "session already solved")
		return
	}

	turn, err := sess.Apply(req.Guess, req.Response)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.Save(r.Context(), sess.Snapshot()); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	solved := turn.Pattern.AllHit()
	if solved {
		s.recordSolve(r.Context(), sess)
	}
	writeJSON(w, http.StatusOK, guessRes{
		Pattern:    turn.Pattern,
		Feedback:   turn.Pattern.Render(turn.Guess),
		Remaining:  turn.Remaining,
		Candidates: lo.Slice(sess.Candidates().Words(), 0, candidatePreview),
		Solved:     solved,
	})
}

// recordSolve writes a finished session to the history (best effort).
func (s *Server) recordSolve(ctx context.Context, sess *solver.Session) {
	if s.history == nil {
		return
	}
	turns := sess.Turns()
	cfg := sess.Config()
	_, err := s.history.Insert(ctx, history.Result{
		SessionID: sess.ID,
		Solution:  string(turns[len(turns)-1].Guess),
		Guesses:   len(turns),
		Strategy:  cfg.Strategy.String(),
		Depth:     cfg.Depth,
		Won:       true,
		ElapsedMs: time.Since(sess.Created).Milliseconds(),
		Sequence:  lo.Map(turns, func(t solver.Turn, _ int) string { return string(t.Guess) }),
		Source:    "api",
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("record solve")
	}
}

// handleRecommendation runs the ranking and lookahead search.
// Query: depth, strategy, limit, tree=1 to include the evaluation tree.
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req solver.Request
	if v := q.Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "depth must be an integer")
			return
		}
		if err := s.checkDepth(d); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Depth = &d
	}
	if v := q.Get("strategy"); v != "" {
		st, err := lookahead.ParseStrategy(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Strategy = st
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		req.Limit = n
	}

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	rec, err := sess.Recommend(r.Context(), req)
	switch {
	case errors.Is(err, lookahead.ErrNegativeDepth), errors.Is(err, lookahead.ErrDepthExceeded):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeSearchError(w, err)
		return
	}
	if q.Get("tree") != "1" {
		rec.Best.Tree = nil
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) checkDepth(d int) error {
	maxDepth := s.opts.Solver.MaxDepth
	if maxDepth <= 0 {
		maxDepth = lookahead.DefaultMaxDepth
	}
	switch {
	case d < 0:
		return lookahead.ErrNegativeDepth
	case d > maxDepth:
		return lookahead.ErrDepthExceeded
	}
	return nil
}
