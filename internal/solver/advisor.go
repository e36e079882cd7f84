package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wortmanb/wordlebot/internal/infogain"
	"github.com/wortmanb/wordlebot/internal/lookahead"
	"github.com/wortmanb/wordlebot/internal/words"
)

// AdviceRequest is what an advisor sees: the candidates and the engine's
// numeric results.
type AdviceRequest struct {
	Turn       int                `json:"turn"`
	Remaining  int                `json:"remaining"`
	Candidates []words.Word       `json:"candidates"`
	Ranked     []infogain.Scored  `json:"ranked"`
	Best       words.Word         `json:"best"`
	BestCost   float64            `json:"bestCost"`
	Strategy   lookahead.Strategy `json:"strategy"`
}

// Advice is an advisor's pick and its free-text reasoning.
type Advice struct {
	Word      words.Word `json:"word"`
	Reasoning string     `json:"reasoning,omitempty"`
}

// Advisor is an external service that may override the engine's choice.
// Returning an empty Word means no selection.
type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) (Advice, error)
}

// consultAdvisor asks the advisor, if any, and keeps its answer only when it
// names a guessable word. Failures are logged and otherwise ignored.
func (s *Session) consultAdvisor(ctx context.Context, rec *Recommendation) {
	if s.advisor == nil || !rec.Best.Found() {
		return
	}
	req := AdviceRequest{
		Turn:       len(s.turns) + 1,
		Remaining:  rec.Remaining,
		Candidates: rec.Candidates,
		Ranked:     rec.Ranked,
		Best:       rec.Best.Word,
		BestCost:   rec.Best.Cost,
		Strategy:   rec.Strategy,
	}
	adv, err := s.advisor.Advise(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Msg("advisor failed; using engine ranking")
		return
	}
	if adv.Word == "" {
		return
	}
	w, err := words.Parse(string(adv.Word), s.lists.Length)
	if err != nil || !s.lists.IsAllowed(string(w)) {
		s.log.Warn().Str("word", string(adv.Word)).Msg("advisor picked an unknown word; ignoring")
		return
	}
	adv.Word = w
	rec.Advice = &adv
}

// HTTPAdvisor posts AdviceRequests as JSON and decodes an Advice reply.
type HTTPAdvisor struct {
	url     string
	client  *http.Client
	retries int
	backoff time.Duration
}

// HTTPAdvisorOption configures an HTTPAdvisor.
type HTTPAdvisorOption func(*HTTPAdvisor)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) HTTPAdvisorOption {
	return func(a *HTTPAdvisor) { a.client.Timeout = d }
}

// WithRetries sets how many times a failed request is retried, waiting
// backoff, then twice that, and so on.
func WithRetries(n int, backoff time.Duration) HTTPAdvisorOption {
	return func(a *HTTPAdvisor) {
		a.retries = n
		a.backoff = backoff
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HTTPAdvisorOption {
	return func(a *HTTPAdvisor) { a.client = c }
}

// NewHTTPAdvisor returns an advisor for the endpoint at url.
func NewHTTPAdvisor(url string, opts ...HTTPAdvisorOption) *HTTPAdvisor {
	a := &HTTPAdvisor{
		url:     url,
		client:  &http.Client{Timeout: 30 * time.Second},
		backoff: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

var errAdvisorStatus = errors.New("advisor returned an error status")

// Advise implements Advisor.
func (a *HTTPAdvisor) Advise(ctx context.Context, req AdviceRequest) (Advice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Advice{}, fmt.Errorf("encode advice request: %w", err)
	}

	wait := a.backoff
	for attempt := 0; ; attempt++ {
		adv, err := a.post(ctx, body)
		if err == nil || attempt >= a.retries || ctx.Err() != nil {
			return adv, err
		}
		select {
		case <-ctx.Done():
			return Advice{}, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func (a *HTTPAdvisor) post(ctx context.Context, body []byte) (Advice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return Advice{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Advice{}, fmt.Errorf("advisor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Advice{}, fmt.Errorf("%w: %d %s", errAdvisorStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var adv Advice
	if err := json.NewDecoder(resp.Body).Decode(&adv); err != nil {
		return Advice{}, fmt.Errorf("decode advice: %w", err)
	}
	return adv, nil
}
