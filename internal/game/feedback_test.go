package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wortmanb/wordlebot/internal/words"
)

func TestSimulate(t *testing.T) {
	cases := []struct {
		guess, target, want string
	}{
		{"crane", "crane", "GGGGG"},
		{"slate", "brick", "XXXXX"},
		// guess repeats a letter more than the target
		{"llama", "alarm", "XGGYY"},
		{"speed", "abide", "XXYXY"},
		{"eerie", "there", "YXYXG"},
		{"lolly", "hello", "XYGGX"},
		// target repeats a letter more than the guess
		{"alarm", "llama", "YGGXY"},
		{"geese", "eerie", "XGYXG"},
		{"abbey", "kebab", "YYGYX"},
		{"crane", "nacre", "YYYYG"},
	}
	for _, tc := range cases {
		t.Run(tc.guess+"/"+tc.target, func(t *testing.T) {
			p, err := Simulate(words.Word(tc.guess), words.Word(tc.target))
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.String())
		})
	}
}

func TestSimulateMarkCountsNeverExceedTarget(t *testing.T) {
	p, err := Simulate("eerie", "there")
	require.NoError(t, err)
	marked := 0
	for i, m := range p.Marks() {
		if "eerie"[i] == 'e' && m != MarkAbsent {
			marked++
		}
	}
	assert.Equal(t, 2, marked)
}

func TestSimulateLengthMismatch(t *testing.T) {
	_, err := Simulate("crane", "cranes")
	assert.ErrorIs(t, err, words.ErrInvalidWordLength)
}

func TestSimulateRejectsNonLetters(t *testing.T) {
	for _, tc := range []struct{ guess, target words.Word }{
		{"CRANE", "crane"},
		{"crane", "cr4ne"},
		{"cra e", "crane"},
	} {
		_, err := Simulate(tc.guess, tc.target)
		assert.ErrorIs(t, err, words.ErrInvalidLetter, "%q vs %q", tc.guess, tc.target)
	}
}

func TestPattern(t *testing.T) {
	p, err := NewPattern(MarkHit, MarkAbsent, MarkPresent, MarkAbsent, MarkHit)
	require.NoError(t, err)
	assert.Equal(t, "GXYXG", p.String())
	assert.Equal(t, 5, p.Len())
	assert.Equal(t, MarkPresent, p.At(2))
	assert.Equal(t, []Mark{MarkHit, MarkAbsent, MarkPresent, MarkAbsent, MarkHit}, p.Marks())
	assert.False(t, p.AllHit())
	assert.Equal(t, "S?a?E", p.Render("slate"))

	assert.True(t, AllHitPattern(5).AllHit())
	assert.Equal(t, "GGGGG", AllHitPattern(5).String())
	assert.False(t, Pattern{}.AllHit())

	_, err = NewPattern()
	assert.ErrorIs(t, err, words.ErrInvalidWordLength)
	_, err = NewPattern(Mark(3))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestPatternText(t *testing.T) {
	p, _ := Simulate("llama", "alarm")
	b, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "XGGYY", string(b))

	var q Pattern
	require.NoError(t, q.UnmarshalText([]byte("02211")))
	assert.Equal(t, p, q)
	assert.Error(t, q.UnmarshalText([]byte("GQ")))

	var m Mark
	require.NoError(t, m.UnmarshalText([]byte("present")))
	assert.Equal(t, MarkPresent, m)
	assert.Error(t, m.UnmarshalText([]byte("green")))
}

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name, guess, in, want string
	}{
		{"markers", "slate", "GYXXB", "GYXXX"},
		{"lowercase markers", "slate", "gyxxb", "GYXXX"},
		{"digits", "slate", "21000", "GYXXX"},
		{"case notation", "crane", "c??N?", "YXXGX"},
		{"case notation all absent", "crane", "?.-_?", "XXXXX"},
		{"case notation beats markers", "gybxx", "GYbxx", "GGYYY"},
		{"surrounding space", "slate", " XXXXG ", "XXXXG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseResponse(words.Word(tc.guess), tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.String())
		})
	}

	for _, bad := range []string{"GYX", "GYXXXX", "GYXQX", "c??Z?"} {
		_, err := ParseResponse("crane", bad)
		assert.ErrorIs(t, err, ErrInvalidResponse, bad)
	}
}
