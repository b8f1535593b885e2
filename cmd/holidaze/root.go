package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"holidaze/internal/config"
	"holidaze/internal/venueapi"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "holidaze",
		Short:         "Telegram bot for browsing and booking Holidaze venues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default $HOLIDAZE_CONFIG_PATH or "+config.DefaultPath+")")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCalendarCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("HOLIDAZE_CONFIG_PATH")
	}
	return config.Load(path)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Logging.Console {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.LogLevel()).With().Timestamp().Logger()
}

// newAPIClient builds the remote client. The returned redis client is nil
// when caching is off or redis is unreachable.
func newAPIClient(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*venueapi.Client, *redis.Client) {
	client := venueapi.NewClient(cfg.API.BaseURL, cfg.API.APIKey, cfg.APITimeout())
	client.UseRateLimit(cfg.RateLimit())

	if cfg.Redis.Address == "" || cfg.CacheTTL() <= 0 {
		return client, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("redis unavailable, venue cache disabled")
		_ = rdb.Close()
		return client, nil
	}
	client.UseRedisCache(rdb, cfg.CacheTTL())
	return client, rdb
}
