// internal/config/config.go
//
// Runtime configuration.
// Resolution order, lowest to highest precedence:
//   - built-in defaults
//   - optional YAML file (--config or WORDLEBOT_CONFIG)
//   - environment variables (including those loaded from .env)

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Words    WordsConfig    `yaml:"words"`
	Solver   SolverConfig   `yaml:"solver"`
	Server   ServerConfig   `yaml:"server"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
}

type WordsConfig struct {
	AnswersFile string `yaml:"answers_file"`
	AllowedFile string `yaml:"allowed_file"`
	Length      int    `yaml:"length"`
}

type SolverConfig struct {
	Strategy       string `yaml:"strategy"`
	Depth          int    `yaml:"depth"`
	PruneThreshold int    `yaml:"prune_threshold"`
	CandidateLimit int    `yaml:"candidate_limit"`
	MaxDepth       int    `yaml:"max_depth"`
	RankLimit      int    `yaml:"rank_limit"`
	FirstGuess     string `yaml:"first_guess"`
	DailySalt      string `yaml:"daily_salt"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ClientOrigin    string        `yaml:"client_origin"`
	JWTSecret       string        `yaml:"jwt_secret"`
	APIKeyHash      string        `yaml:"api_key_hash"`
	JWTExpiresHours int           `yaml:"jwt_expires_hours"`
	RedisURL        string        `yaml:"redis_url"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
}

type AdvisorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Words: WordsConfig{Length: 5},
		Solver: SolverConfig{
			Strategy:       "balanced",
			Depth:          2,
			PruneThreshold: 100,
			CandidateLimit: 50,
			MaxDepth:       6,
			RankLimit:      10,
			DailySalt:      "wordlebot",
		},
		Server: ServerConfig{
			Port:            "5175",
			ClientOrigin:    "http://localhost:5173",
			JWTSecret:       "dev_secret_change_me",
			JWTExpiresHours: 24,
			SessionTTL:      24 * time.Hour,
		},
		Advisor:  AdvisorConfig{Timeout: 10 * time.Second},
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "./data/wordlebot.db"},
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error, while malformed env values are ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WORDLEBOT_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Words.AnswersFile = envOrDefault("WORDS_ANSWERS_FILE", cfg.Words.AnswersFile)
	cfg.Words.AllowedFile = envOrDefault("WORDS_ALLOWED_FILE", cfg.Words.AllowedFile)

	cfg.Solver.Strategy = envOrDefault("WORDLEBOT_STRATEGY", cfg.Solver.Strategy)
	cfg.Solver.Depth = envInt("WORDLEBOT_DEPTH", cfg.Solver.Depth)
	cfg.Solver.PruneThreshold = envInt("WORDLEBOT_PRUNE_THRESHOLD", cfg.Solver.PruneThreshold)
	cfg.Solver.CandidateLimit = envInt("WORDLEBOT_CANDIDATE_LIMIT", cfg.Solver.CandidateLimit)
	cfg.Solver.FirstGuess = envOrDefault("OPTIMAL_FIRST_GUESS", cfg.Solver.FirstGuess)
	cfg.Solver.DailySalt = envOrDefault("DAILY_SALT", cfg.Solver.DailySalt)

	cfg.Server.Port = envOrDefault("PORT", cfg.Server.Port)
	cfg.Server.ClientOrigin = envOrDefault("CLIENT_ORIGIN", cfg.Server.ClientOrigin)
	cfg.Server.JWTSecret = envOrDefault("JWT_SECRET", cfg.Server.JWTSecret)
	cfg.Server.APIKeyHash = envOrDefault("API_KEY_HASH", cfg.Server.APIKeyHash)
	cfg.Server.JWTExpiresHours = envInt("JWT_EXPIRES_HOURS", cfg.Server.JWTExpiresHours)
	cfg.Server.RedisURL = envOrDefault("REDIS_URL", cfg.Server.RedisURL)
	cfg.Server.SessionTTL = envDuration("SESSION_TTL", cfg.Server.SessionTTL)

	cfg.Advisor.URL = envOrDefault("ADVISOR_URL", cfg.Advisor.URL)
	cfg.Advisor.Timeout = envDuration("ADVISOR_TIMEOUT", cfg.Advisor.Timeout)

	cfg.Logging.Level = envOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = envOrDefault("LOG_FILE", cfg.Logging.File)

	cfg.Database.Path = envOrDefault("DATABASE_PATH", cfg.Database.Path)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("15s") or plain seconds ("15").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// SaveEnvValue sets key=value in the dotenv file at path, keeping the other
// entries. The file is created when missing.
func SaveEnvValue(path, key, value string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		env = map[string]string{}
	}
	env[key] = value
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
