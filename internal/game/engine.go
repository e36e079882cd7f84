// internal/game/engine.go
//
// Game engine for a single self-play game.
// Responsibilities:
//   - Create games against a known or random answer.
//   - Validate and apply guesses (length, alphabet, allowed list).
//   - Score guesses with Score.
//   - Track state transitions: playing → won/lost.

package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wortmanb/wordlebot/internal/words"
)

const DefaultRows = 6

var (
	ErrGameFinished = errors.New("game finished")
	ErrNotAllowed   = errors.New("not in word list")
)

// Vocabulary decides whether a word may be guessed.
type Vocabulary interface {
	IsAllowed(w string) bool
}

// New starts a game against answer with the default number of rows.
func New(answer words.Word) *Game {
	return &Game{
		ID:      uuid.NewString(),
		Answer:  answer,
		Rows:    DefaultRows,
		Cols:    len(answer),
		Guesses: []words.Word{},
	}
}

// ApplyGuess validates and scores a guess, mutating the game state.
// A nil vocab accepts any well-formed word.
//
// State transitions:
//   - All tiles Hit → Finished, Won.
//   - Otherwise, reaching Rows guesses → Finished (loss).
func (g *Game) ApplyGuess(guess string, vocab Vocabulary) (Pattern, State, error) {
	if g.Finished {
		return Pattern{}, g.State(), ErrGameFinished
	}
	w, err := words.Parse(guess, g.Cols)
	if err != nil {
		return Pattern{}, g.State(), err
	}
	if vocab != nil && !vocab.IsAllowed(string(w)) {
		return Pattern{}, g.State(), fmt.Errorf("%w: %q", ErrNotAllowed, w)
	}

	p := Score(w, g.Answer)
	g.Guesses = append(g.Guesses, w)
	g.Patterns = append(g.Patterns, p)

	if p.AllHit() {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return p, g.State(), nil
}

// State reports the current game state.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}
