// internal/words/words.go
//
// Word list management for the solver and the self-play game.
//
// Responsibilities:
//   - Load answer and allowed-guess lists from files or the embedded defaults.
//   - Keep lookup sets (answers only, answers ∪ guesses).
//   - Supply RandomAnswer, IsAllowed, IsAnswer and Stats.
//
// Loading behavior (Load):
//   1. answersPath and allowedPath both set: answers from the first,
//      extra guesses from the second.
//   2. Only allowedPath set: that file serves as both lists.
//   3. Neither set: the embedded assets/answers.txt and assets/allowed.txt.
//
// Lines are trimmed and lowercased; blank lines, '#' comments and words of the
// wrong length or alphabet are dropped. Duplicates keep their first position.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/wortmanb/wordlebot/assets"
)

// ErrEmptyAnswers is returned when no usable answer words were loaded.
var ErrEmptyAnswers = errors.New("answers list is empty")

// Lists holds the solution vocabulary and the wider guess vocabulary.
type Lists struct {
	Length  int
	Answers []Word // canonical answers
	Allowed []Word // answers first, then extra guesses

	answersSet map[Word]struct{}
	allowedSet map[Word]struct{}
}

// Load reads the word lists following the rules in the file header.
func Load(answersPath, allowedPath string, length int) (*Lists, error) {
	var ansList, allowList []string

	switch {
	case answersPath != "" && allowedPath != "":
		var err error
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}

	case answersPath == "" && allowedPath != "":
		var err error
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList

	default:
		var err error
		if ansList, err = assets.AnswersList(); err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		if allowList, err = assets.AllowedList(); err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
	}

	l := NewLists(ansList, allowList, length)
	if len(l.Answers) == 0 {
		return nil, ErrEmptyAnswers
	}
	return l, nil
}

// NewLists builds Lists from raw strings, silently dropping invalid entries.
func NewLists(answers, allowed []string, length int) *Lists {
	if length <= 0 {
		length = DefaultLength
	}
	ans := normalize(answers, length)
	all := lo.Uniq(append(append([]Word{}, ans...), normalize(allowed, length)...))
	return &Lists{
		Length:     length,
		Answers:    ans,
		Allowed:    all,
		answersSet: toSet(ans),
		allowedSet: toSet(all),
	}
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// normalize keeps valid words of the given length, deduplicated in order.
func normalize(lines []string, length int) []Word {
	out := make([]Word, 0, len(lines))
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if w, err := Parse(s, length); err == nil {
			out = append(out, w)
		}
	}
	return lo.Uniq(out)
}

func toSet(list []Word) map[Word]struct{} {
	m := make(map[Word]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// AnswerPool is the answers as a candidate pool.
func (l *Lists) AnswerPool() Pool { return NewPool(l.Answers) }

// AllowedPool is the full guess vocabulary as a pool.
func (l *Lists) AllowedPool() Pool { return NewPool(l.Allowed) }

// RandomAnswer returns a cryptographically random answer.
func (l *Lists) RandomAnswer() Word {
	if len(l.Answers) == 0 {
		return ""
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(l.Answers))))
	return l.Answers[n.Int64()]
}

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (l *Lists) IsAllowed(w string) bool {
	_, ok := l.allowedSet[Word(strings.ToLower(w))]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *Lists) IsAnswer(w string) bool {
	_, ok := l.answersSet[Word(strings.ToLower(w))]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *Lists) Stats() (answersCount int, allowedCount int) {
	return len(l.Answers), len(l.Allowed)
}
