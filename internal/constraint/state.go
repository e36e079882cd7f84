// Package constraint accumulates what feedback has revealed about the hidden
// word and filters word pools down to the words still consistent with it.
package constraint

import (
	"fmt"
	"sort"

	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/words"
)

// State is the knowledge gathered from the guesses of one game.
// It is a plain value: Fold returns an updated copy and never touches its input.
type State struct {
	length    int
	guesses   int
	confirmed [words.MaxLength]byte // letter proven at each position, 0 if unknown
	excluded  [26]uint32            // per letter, bitmask of positions it cannot occupy
	forbidden [26]bool
	minCount  [26]int
	maxCount  [26]int
	capped    [26]bool
	// set when two observations disagree; such a state matches nothing
	contradiction bool
}

// New returns the empty state for words of the given length.
func New(length int) State { return State{length: length} }

// Length is the word length the state applies to.
func (s State) Length() int { return s.length }

// Guesses is the number of patterns folded in so far.
func (s State) Guesses() int { return s.guesses }

// Contradictory reports whether the folded feedback cannot come from any word.
func (s State) Contradictory() bool {
	if s.contradiction {
		return true
	}
	for c := 0; c < 26; c++ {
		if s.forbidden[c] && s.minCount[c] > 0 {
			return true
		}
		if s.capped[c] && s.maxCount[c] < s.minCount[c] {
			return true
		}
	}
	return false
}

// Fold records guess and its feedback pattern:
//   - Hit positions go into the confirmed positions.
//   - Present positions are excluded for that letter.
//   - A letter's minimum count becomes the number of its non-Absent marks,
//     if that is larger than what was known.
//   - A letter with no non-Absent marks and no known minimum is forbidden.
//   - A letter with both Absent and non-Absent marks is capped at its
//     non-Absent count, and its Absent positions are excluded.
//
// Inconsistent feedback never fails; it leaves a state that matches no word.
func Fold(s State, guess words.Word, p game.Pattern) (State, error) {
	if len(guess) != s.length || p.Len() != s.length {
		return s, fmt.Errorf("%w: guess %q and %d-mark pattern for %d-letter state",
			words.ErrInvalidWordLength, guess, p.Len(), s.length)
	}
	if !guess.Valid() {
		return s, fmt.Errorf("%w: %q", words.ErrInvalidLetter, guess)
	}
	next := s
	next.guesses++

	var seen, absent [26]int
	for i := 0; i < len(guess); i++ {
		c := guess[i] - 'a'
		switch p.At(i) {
		case game.MarkHit:
			seen[c]++
			if prev := next.confirmed[i]; prev != 0 && prev != guess[i] {
				next.contradiction = true
			}
			if next.excluded[c]&(1<<i) != 0 {
				next.contradiction = true
			}
			next.confirmed[i] = guess[i]
		case game.MarkPresent:
			seen[c]++
			next.exclude(c, i)
		default:
			absent[c]++
		}
	}

	for i := 0; i < len(guess); i++ {
		c := guess[i] - 'a'
		if p.At(i) != game.MarkAbsent {
			continue
		}
		switch {
		case seen[c] > 0:
			next.exclude(c, i)
			if !next.capped[c] || seen[c] < next.maxCount[c] {
				next.maxCount[c] = seen[c]
			}
			next.capped[c] = true
		case s.minCount[c] > 0:
			next.exclude(c, i)
		default:
			next.forbidden[c] = true
		}
	}

	for c := 0; c < 26; c++ {
		if seen[c] > next.minCount[c] {
			next.minCount[c] = seen[c]
		}
	}
	return next, nil
}

func (s *State) exclude(c byte, i int) {
	if s.confirmed[i] == c+'a' {
		s.contradiction = true
	}
	s.excluded[c] |= 1 << i
}

// Matches reports whether w is consistent with everything folded into s.
func (s State) Matches(w words.Word) bool {
	if len(w) != s.length || s.contradiction || !w.Valid() {
		return false
	}
	var counts [26]int
	for i := 0; i < len(w); i++ {
		if s.confirmed[i] != 0 && w[i] != s.confirmed[i] {
			return false
		}
		c := w[i] - 'a'
		if s.forbidden[c] || s.excluded[c]&(1<<i) != 0 {
			return false
		}
		counts[c]++
	}
	for c := 0; c < 26; c++ {
		n := counts[c]
		if s.excluded[c] != 0 && n == 0 {
			return false
		}
		if n < s.minCount[c] {
			return false
		}
		if s.capped[c] && n > s.maxCount[c] {
			return false
		}
	}
	return true
}

// Filter returns the words of pool that match s, in pool order.
// A contradictory state yields an empty pool.
func Filter(pool words.Pool, s State) words.Pool {
	out := make([]words.Word, 0, pool.Len())
	for _, w := range pool.Words() {
		if s.Matches(w) {
			out = append(out, w)
		}
	}
	return words.NewPool(out)
}

// Summary is a read-only view of a State for display and JSON output.
type Summary struct {
	Guesses   int              `json:"guesses"`
	Confirmed map[int]string   `json:"confirmed"`
	Excluded  map[string][]int `json:"excluded"`
	Forbidden []string         `json:"forbidden"`
	MinCounts map[string]int   `json:"minCounts"`
	MaxCounts map[string]int   `json:"maxCounts,omitempty"`
}

// Summary exposes the state's contents.
func (s State) Summary() Summary {
	sum := Summary{
		Guesses:   s.guesses,
		Confirmed: map[int]string{},
		Excluded:  map[string][]int{},
		Forbidden: []string{},
		MinCounts: map[string]int{},
	}
	for i := 0; i < s.length; i++ {
		if s.confirmed[i] != 0 {
			sum.Confirmed[i] = string(s.confirmed[i])
		}
	}
	for c := 0; c < 26; c++ {
		letter := string(rune('a' + c))
		if mask := s.excluded[c]; mask != 0 {
			var pos []int
			for i := 0; i < s.length; i++ {
				if mask&(1<<i) != 0 {
					pos = append(pos, i)
				}
			}
			sum.Excluded[letter] = pos
		}
		if s.forbidden[c] {
			sum.Forbidden = append(sum.Forbidden, letter)
		}
		if s.minCount[c] > 0 {
			sum.MinCounts[letter] = s.minCount[c]
		}
		if s.capped[c] {
			if sum.MaxCounts == nil {
				sum.MaxCounts = map[string]int{}
			}
			sum.MaxCounts[letter] = s.maxCount[c]
		}
	}
	sort.Strings(sum.Forbidden)
	return sum
}
