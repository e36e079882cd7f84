// internal/words/word.go
//
// Word and Pool value types shared by the solver packages.
//
// Responsibilities:
//   - Parse user or file input into a validated, lowercase Word.
//   - Hold an ordered, de-duplicated Pool with a content fingerprint
//     used to key cached search results.

package words

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/lo"
)

const (
	// DefaultLength is the word length of the classic game.
	DefaultLength = 5
	// MaxLength bounds the word length a feedback pattern can encode.
	MaxLength = 20
)

var (
	ErrInvalidWordLength = errors.New("invalid word length")
	ErrInvalidLetter     = errors.New("invalid letter")
)

// Word is an immutable lowercase a–z word.
type Word string

// Parse trims and lowercases s and checks it is exactly length letters a–z.
func Parse(s string, length int) (Word, error) {
	w := strings.ToLower(strings.TrimSpace(s))
	if length <= 0 || length > MaxLength || len(w) != length {
		return "", fmt.Errorf("%w: %q has %d letters, want %d", ErrInvalidWordLength, s, len(w), length)
	}
	if !isAlpha(w) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLetter, s)
	}
	return Word(w), nil
}

// ParseAll parses every entry, stopping at the first invalid one.
func ParseAll(list []string, length int) ([]Word, error) {
	out := make([]Word, 0, len(list))
	for _, s := range list {
		w, err := Parse(s, length)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (w Word) String() string { return string(w) }

// Valid reports whether w holds only lowercase letters a–z.
func (w Word) Valid() bool { return isAlpha(string(w)) }

// Len is the number of letters in w.
func (w Word) Len() int { return len(w) }

// TieBreak reports whether a should rank ahead of b when their scores tie.
type TieBreak func(a, b Word) bool

// Pool is an ordered set of equal-length words.
// The zero value is an empty pool.
type Pool struct {
	words []Word
	fp    uint64
}

// NewPool builds a pool from ws, keeping the first occurrence of duplicates.
// The input slice is not retained.
func NewPool(ws []Word) Pool {
	uniq := lo.Uniq(ws)
	return Pool{words: uniq, fp: fingerprint(uniq)}
}

// Len is the number of words in the pool.
func (p Pool) Len() int { return len(p.words) }

// Empty reports whether no words remain.
func (p Pool) Empty() bool { return len(p.words) == 0 }

// At returns the i-th word in pool order.
func (p Pool) At(i int) Word { return p.words[i] }

// Words returns the pool contents in order. Callers must not modify the slice.
func (p Pool) Words() []Word { return p.words }

// Contains reports whether w is in the pool.
func (p Pool) Contains(w Word) bool { return lo.Contains(p.words, w) }

// Fingerprint is a hash of the pool's sorted contents; pools holding the same
// words in a different order share a fingerprint.
func (p Pool) Fingerprint() uint64 { return p.fp }

// Strings returns the words as plain strings.
func (p Pool) Strings() []string {
	return lo.Map(p.words, func(w Word, _ int) string { return string(w) })
}

func fingerprint(ws []Word) uint64 {
	sorted := make([]string, len(ws))
	for i, w := range ws {
		sorted[i] = string(w)
	}
	sort.Strings(sorted)
	d := xxhash.New()
	for _, s := range sorted {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64()
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
