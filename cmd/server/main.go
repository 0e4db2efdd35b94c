package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/felixggj/happy-robot-fde/internal/api"
	"github.com/felixggj/happy-robot-fde/internal/config"
	httpapi "github.com/felixggj/happy-robot-fde/internal/http"
	"github.com/felixggj/happy-robot-fde/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "carrier-dashboard").Logger()

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.APIKey == "" {
		logger.Warn().Msg("API_KEY is empty, upstream will reject protected calls")
	}

	client := api.New(cfg.APIBaseURL, cfg.APIKey)
	client.HTTPClient = telemetry.InstrumentClient(client.HTTPClient)
	client.Logger = logger.With().Str("component", "api").Logger()

	router := httpapi.Router(cfg, client, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("upstream", client.BaseURL).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
