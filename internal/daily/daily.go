// internal/daily/daily.go
//
// Deterministic daily target selection.
// The same date and salt always map to the same answer index, so every
// process (CLI self-play, API) agrees on "today's word" without shared state.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/wortmanb/wordlebot/internal/words"
)

// DefaultSalt is used when no salt is configured.
const DefaultSalt = "wordlebot"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Target returns the answer for date, or "" when the list is empty.
func Target(lists *words.Lists, date time.Time, salt string) words.Word {
	if lists == nil || len(lists.Answers) == 0 {
		return ""
	}
	return lists.Answers[WordIndex(date, salt, len(lists.Answers))]
}
