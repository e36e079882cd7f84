package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORDLEBOT_CONFIG", "")
	t.Setenv("WORDLEBOT_DEPTH", "")
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "balanced", cfg.Solver.Strategy)
	assert.Equal(t, 2, cfg.Solver.Depth)
	assert.Equal(t, 100, cfg.Solver.PruneThreshold)
	assert.Equal(t, 50, cfg.Solver.CandidateLimit)
	assert.Equal(t, 6, cfg.Solver.MaxDepth)
	assert.Equal(t, "5175", cfg.Server.Port)
	assert.Equal(t, "./data/wordlebot.db", cfg.Database.Path)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordlebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
solver:
  strategy: safe
  depth: 3
  first_guess: crane
server:
  port: "9000"
advisor:
  url: http://advisor.local
  timeout: 3s
`), 0o644))

	t.Setenv("WORDLEBOT_DEPTH", "1")
	t.Setenv("ADVISOR_TIMEOUT", "7")
	t.Setenv("PORT", "")
	t.Setenv("OPTIMAL_FIRST_GUESS", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "safe", cfg.Solver.Strategy)
	assert.Equal(t, 1, cfg.Solver.Depth, "env overrides file")
	assert.Equal(t, "crane", cfg.Solver.FirstGuess)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://advisor.local", cfg.Advisor.URL)
	assert.Equal(t, 7*time.Second, cfg.Advisor.Timeout)
	assert.Equal(t, 50, cfg.Solver.CandidateLimit, "untouched defaults survive")
}

func TestLoadFromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  strategy: aggressive\n"), 0o644))
	t.Setenv("WORDLEBOT_CONFIG", path)
	t.Setenv("WORDLEBOT_STRATEGY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "aggressive", cfg.Solver.Strategy)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("solver: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestMalformedEnvIgnored(t *testing.T) {
	t.Setenv("WORDLEBOT_CONFIG", "")
	t.Setenv("WORDLEBOT_DEPTH", "deep")
	t.Setenv("ADVISOR_TIMEOUT", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Solver.Depth)
	assert.Equal(t, 10*time.Second, cfg.Advisor.Timeout)
}

func TestSaveEnvValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, SaveEnvValue(path, "OPTIMAL_FIRST_GUESS", "trace"))
	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", env["OPTIMAL_FIRST_GUESS"])

	require.NoError(t, os.WriteFile(path, []byte("PORT=8080\nOPTIMAL_FIRST_GUESS=trace\n"), 0o644))
	require.NoError(t, SaveEnvValue(path, "OPTIMAL_FIRST_GUESS", "salet"))
	env, err = godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PORT": "8080", "OPTIMAL_FIRST_GUESS": "salet"}, env)
}
