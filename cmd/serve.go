package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketplace-service/internal/api"
	"marketplace-service/internal/config"
	"marketplace-service/internal/db"
	"marketplace-service/internal/repository"
	"marketplace-service/internal/service"
	"marketplace-service/migrations"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := migrations.AutoMigrate(ctx, conn, cfg.Database.Driver, cfg.Database.MigrateRetries); err != nil {
		return err
	}

	var events service.EventPublisher
	if writer := config.NewKafkaWriter(cfg.Kafka); writer != nil {
		publisher := service.NewKafkaPublisher(writer)
		defer publisher.Close()
		events = publisher
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Publishing domain events")
	}

	var guard service.IdempotencyGuard
	if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msgf("Redis at %s unreachable, idempotency keys disabled", cfg.Redis.Addr)
		} else {
			guard = service.NewRedisIdempotencyGuard(rdb, cfg.Redis.IdempotencyTTL)
		}
	}

	store := repository.NewStore(conn)
	e := api.NewServer(cfg, api.Services{
		Templates: service.NewTemplateService(store, events),
		Users:     service.NewUserService(store, events),
		Purchases: service.NewPurchaseService(store, events, guard),
		BankInfo:  service.NewBankInfoService(store, events),
	}, store)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("mode", cfg.Server.Mode).Msgf("Server listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}
