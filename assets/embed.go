// Package assets embeds the default word lists so the binary works without
// any files on disk.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// readLines returns the non-empty, non-comment lines of an embedded file,
// trimmed and lowercased.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// AnswersList is the embedded solution vocabulary.
func AnswersList() ([]string, error) { return readLines("answers.txt") }

// AllowedList is the embedded list of extra guessable words (answers excluded).
func AllowedList() ([]string, error) { return readLines("allowed.txt") }
