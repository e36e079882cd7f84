package words

// Frequency scores words by how common each of their letters is at its
// position across a reference list (normally the answers).
type Frequency struct {
	counts [][26]int
}

// NewFrequency tallies positional letter counts over ref.
func NewFrequency(ref []Word) *Frequency {
	f := &Frequency{}
	for _, w := range ref {
		for len(f.counts) < len(w) {
			f.counts = append(f.counts, [26]int{})
		}
		for i := 0; i < len(w); i++ {
			f.counts[i][w[i]-'a']++
		}
	}
	return f
}

// Score sums the positional counts of w's letters.
func (f *Frequency) Score(w Word) int {
	total := 0
	for i := 0; i < len(w) && i < len(f.counts); i++ {
		total += f.counts[i][w[i]-'a']
	}
	return total
}

// TieBreak prefers the word with the higher score, then the alphabetically
// earlier one.
func (f *Frequency) TieBreak() TieBreak {
	return func(a, b Word) bool {
		sa, sb := f.Score(a), f.Score(b)
		if sa != sb {
			return sa > sb
		}
		return a < b
	}
}
