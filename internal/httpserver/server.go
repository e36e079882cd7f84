// internal/httpserver/server.go
//
// HTTP server wiring for the solver API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "POST /auth/token".
//   - Session endpoints under /sessions (see routes_sessions.go).
//   - Opening book ("/first-guess") and solve history ("/stats").
//
// Notes:
//   - Auth is enabled only when an API key hash is configured. Clients trade
//     the API key for a short-lived HS256 JWT and send it as a bearer token.
//   - Session snapshots live in the Store; solver caches live in this process
//     and are rebuilt from the snapshot when missing or stale.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/wortmanb/wordlebot/internal/cache"
	"github.com/wortmanb/wordlebot/internal/history"
	"github.com/wortmanb/wordlebot/internal/infogain"
	"github.com/wortmanb/wordlebot/internal/solver"
	"github.com/wortmanb/wordlebot/internal/store"
	"github.com/wortmanb/wordlebot/internal/words"
)

// Options configures a Server. Zero values pick defaults.
type Options struct {
	Solver         solver.Config
	Advisor        solver.Advisor // nil disables advice
	JWTSecret      string
	APIKeyHash     string // bcrypt hash; empty disables auth
	TokenTTL       time.Duration
	ClientOrigin   string
	RequestTimeout time.Duration
}

// Server bundles router, session store, live solver sessions and history.
type Server struct {
	r       *chi.Mux
	lists   *words.Lists
	store   store.Store
	history *history.Store // nil when no database is configured
	opts    Options

	mu       sync.Mutex                 // guards sessions
	sessions map[string]*solver.Session // live sessions keyed by ID

	openingMu sync.Mutex // guards opening
	opening   *infogain.FirstGuess
}

// New constructs a Server, installs middleware, and registers routes.
func New(lists *words.Lists, st store.Store, hist *history.Store, opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		r:        chi.NewRouter(),
		lists:    lists,
		store:    st,
		history:  hist,
		opts:     opts,
		sessions: make(map[string]*solver.Session),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                          // one log line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound search time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "wordlebot",
			"endpoints": []string{
				"/health", "POST /auth/token", "POST /sessions", "GET /sessions/{id}",
				"POST /sessions/{id}/guesses", "GET /sessions/{id}/recommendation",
				"DELETE /sessions/{id}", "/first-guess", "/stats",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "answers": len(lists.Answers), "allowed": len(lists.Allowed)})
	})

	s.r.Post("/auth/token", s.handleToken)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		s.mountSessions(r)
		r.Get("/first-guess", s.handleFirstGuess)
		r.Get("/stats", s.handleStats)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		lvl := zerolog.DebugLevel
		if ww.Status() >= http.StatusInternalServerError {
			lvl = zerolog.WarnLevel
		}
		log.WithLevel(lvl).
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// ------------------------------- AUTH --------------------------------------

func (s *Server) authEnabled() bool { return s.opts.APIKeyHash != "" }

type tokenReq struct {
	APIKey string `json:"apiKey"`
}

type tokenRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleToken trades the API key for a signed JWT.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.authEnabled() {
		writeError(w, http.StatusNotFound, "auth_disabled")
		return
	}
	var body tokenReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(s.opts.APIKeyHash), []byte(body.APIKey)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}
	tok, exp, err := s.signJWT()
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: tok, ExpiresAt: exp})
}

// signJWT creates an HS256 JWT valid for the configured TTL.
func (s *Server) signJWT() (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "api",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp.UTC(), err
}

// requireAuth enforces a valid bearer JWT when auth is enabled.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authEnabled() {
			next.ServeHTTP(w, r)
			return
		}
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.opts.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.Subject != "api" {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// ---------------------------- opening & stats ------------------------------

type firstGuessRes struct {
	Word    words.Word   `json:"word"`
	Entropy float64      `json:"entropy,omitempty"`
	Tied    []words.Word `json:"tied,omitempty"`
	Source  string       `json:"source"` // "config" or "computed"
}

// handleFirstGuess returns the configured opening or computes the
// highest-entropy guess over the allowed list once per process.
func (s *Server) handleFirstGuess(w http.ResponseWriter, r *http.Request) {
	if fg := s.opts.Solver.FirstGuess; fg != "" {
		writeJSON(w, http.StatusOK, firstGuessRes{Word: fg, Source: "config"})
		return
	}

	s.openingMu.Lock()
	defer s.openingMu.Unlock()
	if s.opening == nil {
		calc := infogain.NewCalculator(cache.NewMemory())
		tie := words.NewFrequency(s.lists.Answers).TieBreak()
		fg, err := calc.BestFirstGuess(r.Context(), s.lists.Allowed, s.lists.AnswerPool(), tie)
		if err != nil {
			writeSearchError(w, err)
			return
		}
		s.opening = &fg
	}
	writeJSON(w, http.StatusOK, firstGuessRes{
		Word:    s.opening.Best.Word,
		Entropy: s.opening.Best.Entropy,
		Tied:    s.opening.Tied,
		Source:  "computed",
	})
}

// handleStats summarizes the solve history.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history_disabled")
		return
	}
	sum, err := s.history.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats summary")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	by, err := s.history.ByStrategy(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats by strategy")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	recent, err := s.history.Recent(r.Context(), 10)
	if err != nil {
		log.Error().Err(err).Msg("stats recent")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":    sum,
		"byStrategy": by,
		"recent":     recent,
	})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSearchError maps a failed search to a status code.
func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "search timed out")
	default:
		log.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search_failed")
	}
}
