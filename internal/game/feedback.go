// internal/game/feedback.go
//
// Feedback simulation and response parsing.
//
// Score implements the standard two-pass algorithm:
//
// Pass 1:
//   - Mark exact matches as Hit.
//   - Count remaining (non-hit) answer letters.
//
// Pass 2, in position order:
//   - For each non-hit guess letter: if a count remains for that letter,
//     mark Present and decrement; otherwise mark Absent.
//
// A guess that repeats a letter more often than the answer therefore only
// gets as many Hit/Present marks as the answer has copies, earliest first.

package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wortmanb/wordlebot/internal/words"
)

// ErrInvalidResponse is returned for feedback strings that cannot be parsed.
var ErrInvalidResponse = errors.New("invalid response")

// Simulate returns the pattern the game shows for guess when target is hidden.
func Simulate(guess, target words.Word) (Pattern, error) {
	if len(guess) != len(target) || len(guess) == 0 || len(guess) > words.MaxLength {
		return Pattern{}, fmt.Errorf("%w: guess %q vs target %q", words.ErrInvalidWordLength, guess, target)
	}
	if !guess.Valid() || !target.Valid() {
		return Pattern{}, fmt.Errorf("%w: guess %q vs target %q", words.ErrInvalidLetter, guess, target)
	}
	return Score(guess, target), nil
}

// Score is Simulate without validation. guess and target must be
// equal-length lowercase words of at most words.MaxLength letters.
func Score(guess, target words.Word) Pattern {
	n := len(guess)
	var counts [26]int
	var hit [words.MaxLength]bool
	p := Pattern{size: uint8(n)}

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			hit[i] = true
			p.code += uint32(MarkHit) * pow3[i]
		} else {
			counts[target[i]-'a']++
		}
	}
	for i := 0; i < n; i++ {
		if hit[i] {
			continue
		}
		j := guess[i] - 'a'
		if counts[j] > 0 {
			counts[j]--
			p.code += uint32(MarkPresent) * pow3[i]
		}
	}
	return p
}

// ParseResponse turns user-entered feedback for guess into a Pattern.
// Three notations are accepted:
//   - case notation: the guess letters themselves, uppercase for a hit,
//     lowercase for present, and any non-letter ('?', '.', '-', '_') for absent,
//     e.g. "c??N?";
//   - marker notation: G (hit), Y (present), X or B (absent), any case;
//   - digit notation: 2 (hit), 1 (present), 0 (absent).
//
// Case notation wins when every letter in s is the guess letter at that
// position.
func ParseResponse(guess words.Word, s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(guess) {
		return Pattern{}, fmt.Errorf("%w: %q has %d positions, want %d", ErrInvalidResponse, s, len(s), len(guess))
	}
	if marks, ok := parseCase(guess, s); ok {
		return NewPattern(marks...)
	}
	if marks, ok := parseMarkers(s); ok {
		return NewPattern(marks...)
	}
	return Pattern{}, fmt.Errorf("%w: %q matches no notation for %q", ErrInvalidResponse, s, guess)
}

func parseCase(guess words.Word, s string) ([]Mark, bool) {
	marks := make([]Mark, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			if c-'A'+'a' != guess[i] {
				return nil, false
			}
			marks[i] = MarkHit
		case c >= 'a' && c <= 'z':
			if c != guess[i] {
				return nil, false
			}
			marks[i] = MarkPresent
		case c == '?' || c == '.' || c == '-' || c == '_':
			marks[i] = MarkAbsent
		default:
			return nil, false
		}
	}
	return marks, true
}

func parseMarkers(s string) ([]Mark, bool) {
	marks := make([]Mark, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'G', 'g', '2':
			marks[i] = MarkHit
		case 'Y', 'y', '1':
			marks[i] = MarkPresent
		case 'X', 'x', 'B', 'b', '0':
			marks[i] = MarkAbsent
		default:
			return nil, false
		}
	}
	return marks, true
}
