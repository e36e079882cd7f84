// internal/game/types.go
//
// Core feedback types.
// Defines:
//   - Mark: per-letter result of a guess (hit/present/absent).
//   - Pattern: the ordered marks for one guess, packed into a comparable value.
//   - Game: state for a single self-play game with a hidden answer.

package game

import (
	"fmt"
	"strings"

	"github.com/wortmanb/wordlebot/internal/words"
)

// Mark is the evaluation result for a single letter in a guess.
type Mark uint8

const (
	MarkAbsent  Mark = iota // letter not in the answer beyond copies already marked
	MarkPresent             // letter in the answer at another position
	MarkHit                 // letter in this exact position
)

func (m Mark) String() string {
	switch m {
	case MarkHit:
		return "hit"
	case MarkPresent:
		return "present"
	default:
		return "absent"
	}
}

// Symbol is the single-character marker form: G, Y or X.
func (m Mark) Symbol() byte {
	switch m {
	case MarkHit:
		return 'G'
	case MarkPresent:
		return 'Y'
	default:
		return 'X'
	}
}

// MarshalText encodes the mark as "hit", "present" or "absent".
func (m Mark) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (m *Mark) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "hit":
		*m = MarkHit
	case "present":
		*m = MarkPresent
	case "absent", "miss":
		*m = MarkAbsent
	default:
		return fmt.Errorf("%w: unknown mark %q", ErrInvalidResponse, b)
	}
	return nil
}

// pow3[i] is 3^i, the weight of position i in a packed pattern.
var pow3 = func() [words.MaxLength + 1]uint32 {
	var p [words.MaxLength + 1]uint32
	p[0] = 1
	for i := 1; i <= words.MaxLength; i++ {
		p[i] = p[i-1] * 3
	}
	return p
}()

// Pattern is the feedback for one guess, one Mark per position, stored as a
// base-3 number so it can be compared and used as a map key.
type Pattern struct {
	code uint32
	size uint8
}

// NewPattern builds a pattern from explicit marks.
func NewPattern(marks ...Mark) (Pattern, error) {
	if len(marks) == 0 || len(marks) > words.MaxLength {
		return Pattern{}, fmt.Errorf("%w: %d marks", words.ErrInvalidWordLength, len(marks))
	}
	p := Pattern{size: uint8(len(marks))}
	for i, m := range marks {
		if m > MarkHit {
			return Pattern{}, fmt.Errorf("%w: mark %d at position %d", ErrInvalidResponse, m, i)
		}
		p.code += uint32(m) * pow3[i]
	}
	return p, nil
}

// AllHitPattern is the solved pattern for words of length n.
func AllHitPattern(n int) Pattern {
	p := Pattern{size: uint8(n)}
	for i := 0; i < n; i++ {
		p.code += uint32(MarkHit) * pow3[i]
	}
	return p
}

// Len is the number of positions.
func (p Pattern) Len() int { return int(p.size) }

// At returns the mark at position i.
func (p Pattern) At(i int) Mark { return Mark(p.code / pow3[i] % 3) }

// Marks expands the pattern into a slice.
func (p Pattern) Marks() []Mark {
	out := make([]Mark, p.size)
	for i := range out {
		out[i] = p.At(i)
	}
	return out
}

// AllHit reports whether every position is a hit.
func (p Pattern) AllHit() bool { return p.size > 0 && p == AllHitPattern(int(p.size)) }

// String renders the pattern with G/Y/X markers.
func (p Pattern) String() string {
	b := make([]byte, p.size)
	for i := range b {
		b[i] = p.At(i).Symbol()
	}
	return string(b)
}

// Render shows the pattern in case notation against guess: uppercase hit,
// lowercase present, '?' absent.
func (p Pattern) Render(guess words.Word) string {
	b := make([]byte, p.size)
	for i := range b {
		switch p.At(i) {
		case MarkHit:
			b[i] = guess[i] - 'a' + 'A'
		case MarkPresent:
			b[i] = guess[i]
		default:
			b[i] = '?'
		}
	}
	return string(b)
}

// MarshalText encodes the pattern as G/Y/X markers.
func (p Pattern) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes marker or digit notation.
func (p *Pattern) UnmarshalText(b []byte) error {
	marks, ok := parseMarkers(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidResponse, b)
	}
	np, err := NewPattern(marks...)
	if err != nil {
		return err
	}
	*p = np
	return nil
}

// State is the coarse status of a Game.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Game holds the state of a single game against a hidden answer.
type Game struct {
	ID       string       // unique game identifier
	Answer   words.Word   // the solution word
	Rows     int          // maximum number of guesses (typically 6)
	Cols     int          // letters per word
	Guesses  []words.Word // guesses made so far
	Patterns []Pattern    // feedback for each guess
	Finished bool         // true once the game is over
	Won      bool         // true if finished with a win
}
