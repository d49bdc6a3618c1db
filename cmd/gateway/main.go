package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/illmade-knight/go-pubsub-gateway/pkg/gateway"
	"github.com/illmade-knight/go-pubsub-gateway/pkg/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "pubsub-gateway").Logger()
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("Gateway terminated")
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := gateway.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The default client serves requests on the process's ambient identity.
	// Requests carrying their own credentials get a dedicated client from the
	// factory, closed when the request ends.
	busClient, err := messaging.CreateGoogleClient(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to create bus client: %w", err)
	}
	defer func() {
		if closeErr := busClient.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close bus client")
		}
	}()

	relay, err := gateway.NewRelay(cfg.ProjectID, busClient, messaging.CreateGoogleClient, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := gateway.NewMetrics(registry)

	api := gateway.NewAPI(relay, metrics, logger)
	srv := gateway.NewServer(cfg.ListenAddr, gateway.NewRouter(api, cfg, logger, registry))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Str("project_id", cfg.ProjectID).Msg("Publish gateway listening")
		if listenErr := srv.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			return listenErr
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info().Msg("Shutting down publish gateway...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
