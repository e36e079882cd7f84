package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wortmanb/wordlebot/internal/httpserver"
	"github.com/wortmanb/wordlebot/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API",
	Long: `Serves solving sessions over HTTP. Sessions are kept in Redis when
REDIS_URL is set, in memory otherwise. Setting API_KEY_HASH (a bcrypt hash)
turns on bearer-token auth via POST /auth/token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lists, err := loadLists()
		if err != nil {
			return err
		}
		scfg, err := solverConfig(cfg)
		if err != nil {
			return err
		}

		var st store.Store = store.NewMemoryStore()
		if cfg.Server.RedisURL != "" {
			rs, err := store.NewRedis(ctx, cfg.Server.RedisURL, cfg.Server.SessionTTL)
			if err != nil {
				return err
			}
			defer rs.Close()
			st = rs
			log.Info().Msg("sessions stored in redis")
		}

		hist, closeDB, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		opts := httpserver.Options{
			Solver:       scfg,
			JWTSecret:    cfg.Server.JWTSecret,
			APIKeyHash:   cfg.Server.APIKeyHash,
			TokenTTL:     time.Duration(cfg.Server.JWTExpiresHours) * time.Hour,
			ClientOrigin: cfg.Server.ClientOrigin,
		}
		if cfg.Advisor.URL != "" {
			opts.Advisor = sessionAdvisor(cfg)
		}
		srv := httpserver.New(lists, st, hist, opts)

		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Bool("auth", opts.APIKeyHash != "").Str("strategy", scfg.Strategy.String()).Int("depth", scfg.Depth).Msg("starting server")
		if err := srv.Start(ctx, addr); err != nil {
			log.Error().Err(err).Msg("server exited")
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	},
}
