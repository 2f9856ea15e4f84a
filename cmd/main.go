package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketplace-service/internal/config"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var configFile string

var rootCmd = &cobra.Command{
	Use:   "marketplace-service",
	Short: "Template marketplace API",
	Long: `marketplace-service serves the template, user, purchase and bank info API.

Environment variables (prefix MARKETPLACE_):
  MARKETPLACE_SERVER_PORT        Server port (default: 5000)
  MARKETPLACE_SERVER_MODE        development or production
  MARKETPLACE_DATABASE_DRIVER    Database driver: mysql, sqlite
  MARKETPLACE_DATABASE_DSN       Database connection string (overrides host/user/name)
  MARKETPLACE_REDIS_ADDR         Enables Idempotent-Key checks on purchases
  MARKETPLACE_KAFKA_BROKERS      Comma separated brokers; enables domain events`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a config file (default: ./config.yaml)")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
