package lookahead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, st := range Strategies {
		got, err := ParseStrategy(" " + st.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, st, got)
		assert.NotEmpty(t, st.Description())
	}
	got, err := ParseStrategy("SAFE")
	require.NoError(t, err)
	assert.Equal(t, Safe, got)

	_, err = ParseStrategy("reckless")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.False(t, Strategy(9).Valid())
	assert.Equal(t, "strategy(9)", Strategy(9).String())
}

func TestStrategyText(t *testing.T) {
	b, err := Balanced.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "balanced", string(b))

	var st Strategy
	require.NoError(t, st.UnmarshalText([]byte("aggressive")))
	assert.Equal(t, Aggressive, st)

	_, err = Strategy(0).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestAggregate(t *testing.T) {
	outs := []outcome{{0.5, 1}, {0.25, 2}, {0.25, 5}}
	assert.InDelta(t, 2.25, Aggressive.aggregate(outs), 1e-12)
	assert.InDelta(t, 5.0, Safe.aggregate(outs), 1e-12)
	assert.InDelta(t, 0.6*2.25+0.4*5, Balanced.aggregate(outs), 1e-12)
	assert.Zero(t, Safe.aggregate(nil))
}
