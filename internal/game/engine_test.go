package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wortmanb/wordlebot/internal/words"
)

func TestGameWin(t *testing.T) {
	g := New("metal")
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, 5, g.Cols)
	assert.Equal(t, StatePlaying, g.State())

	p, st, err := g.ApplyGuess("TRIAL", nil)
	require.NoError(t, err)
	assert.Equal(t, "YXXGG", p.String())
	assert.Equal(t, StatePlaying, st)

	p, st, err = g.ApplyGuess("metal", nil)
	require.NoError(t, err)
	assert.True(t, p.AllHit())
	assert.Equal(t, StateWon, st)
	assert.Len(t, g.Patterns, 2)

	_, _, err = g.ApplyGuess("metal", nil)
	assert.ErrorIs(t, err, ErrGameFinished)
}

func TestGameLoss(t *testing.T) {
	g := New("metal")
	g.Rows = 2
	_, st, err := g.ApplyGuess("usual", nil)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, st)
	_, st, err = g.ApplyGuess("final", nil)
	require.NoError(t, err)
	assert.Equal(t, StateLost, st)
	assert.True(t, g.Finished)
	assert.False(t, g.Won)
}

func TestGameValidation(t *testing.T) {
	vocab := words.NewLists([]string{"metal"}, []string{"trial"}, 5)
	g := New("metal")

	_, _, err := g.ApplyGuess("meta", vocab)
	assert.ErrorIs(t, err, words.ErrInvalidWordLength)

	_, _, err = g.ApplyGuess("met4l", vocab)
	assert.ErrorIs(t, err, words.ErrInvalidLetter)

	_, _, err = g.ApplyGuess("usual", vocab)
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, _, err = g.ApplyGuess("trial", vocab)
	assert.NoError(t, err)
	assert.Len(t, g.Guesses, 1)
}
