// Package infogain scores guesses by how well they split a candidate pool.
package infogain

import (
	"fmt"
	"math"

	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/words"
)

// Bucket is the part of a pool that would answer a guess with one pattern.
type Bucket struct {
	Pattern game.Pattern `json:"pattern"`
	Words   []words.Word `json:"words"`
}

// Size is the number of words in the bucket.
func (b Bucket) Size() int { return len(b.Words) }

// PartitionMap groups a pool by the pattern each word would produce against
// Guess. Buckets keep the order in which their pattern first appeared, and
// words keep pool order within a bucket. Every pool word is in exactly one
// bucket.
type PartitionMap struct {
	Guess   words.Word `json:"guess"`
	Total   int        `json:"total"`
	Buckets []Bucket   `json:"buckets"`
}

// Partition splits pool by the feedback guess would receive from each word.
// An empty pool gives an empty map.
func Partition(guess words.Word, pool words.Pool) (PartitionMap, error) {
	pm := PartitionMap{Guess: guess, Total: pool.Len()}
	if pool.Empty() {
		return pm, nil
	}
	if len(guess) != len(pool.At(0)) || len(guess) > words.MaxLength {
		return PartitionMap{}, fmt.Errorf("%w: guess %q against %d-letter pool",
			words.ErrInvalidWordLength, guess, len(pool.At(0)))
	}
	if !guess.Valid() {
		return PartitionMap{}, fmt.Errorf("%w: guess %q", words.ErrInvalidLetter, guess)
	}

	index := make(map[game.Pattern]int)
	for _, w := range pool.Words() {
		p := game.Score(guess, w)
		i, ok := index[p]
		if !ok {
			i = len(pm.Buckets)
			index[p] = i
			pm.Buckets = append(pm.Buckets, Bucket{Pattern: p})
		}
		pm.Buckets[i].Words = append(pm.Buckets[i].Words, w)
	}
	return pm, nil
}

// Sizes lists the bucket sizes in bucket order.
func (pm PartitionMap) Sizes() []int {
	out := make([]int, len(pm.Buckets))
	for i, b := range pm.Buckets {
		out[i] = len(b.Words)
	}
	return out
}

// Lookup returns the bucket for pattern p.
func (pm PartitionMap) Lookup(p game.Pattern) (Bucket, bool) {
	for _, b := range pm.Buckets {
		if b.Pattern == p {
			return b, true
		}
	}
	return Bucket{}, false
}

// Entropy is the Shannon entropy of the partition in bits.
func (pm PartitionMap) Entropy() float64 { return Entropy(pm.Sizes()) }

// ExpectedRemaining is the expected pool size after the guess, Σ n_i²/N.
func (pm PartitionMap) ExpectedRemaining() float64 {
	if pm.Total == 0 {
		return 0
	}
	sum := 0
	for _, b := range pm.Buckets {
		sum += len(b.Words) * len(b.Words)
	}
	return float64(sum) / float64(pm.Total)
}

// Largest is the size of the biggest bucket.
func (pm PartitionMap) Largest() int {
	m := 0
	for _, b := range pm.Buckets {
		if len(b.Words) > m {
			m = len(b.Words)
		}
	}
	return m
}

// Solves reports whether the guess itself is one of the pool words.
func (pm PartitionMap) Solves() bool {
	for _, b := range pm.Buckets {
		if b.Pattern.AllHit() {
			return true
		}
	}
	return false
}

// Entropy computes -Σ (n_i/N)·log2(n_i/N) over bucket sizes, N = Σ n_i.
// It is zero for N ≤ 1 and for a single bucket, and log2(N) when every
// bucket holds one word.
func Entropy(sizes []int) float64 {
	total := 0
	for _, n := range sizes {
		total += n
	}
	if total <= 1 {
		return 0
	}
	h := 0.0
	for _, n := range sizes {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		h -= p * math.Log2(p)
	}
	if h < 0 {
		return 0
	}
	return h
}
