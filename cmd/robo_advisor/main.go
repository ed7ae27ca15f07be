package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"robo_advisor/internal/config"
	"robo_advisor/internal/dialog"
	"robo_advisor/internal/logger"
	"robo_advisor/internal/market/alpaca"
	"robo_advisor/internal/server"
	"robo_advisor/internal/simulation"
	"robo_advisor/internal/telegram"

	"github.com/rs/zerolog/log"
)

const VersionFile = "version.latest"

// main is the entry point of the application.
func main() {
	// 1. Initialization
	// Load configuration first to get logger settings
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.Version = readVersion()

	appLog, logCloser := logger.Setup(logger.Options{
		Level:      cfg.LogLevel,
		Pretty:     cfg.LogPretty,
		Filename:   cfg.LogFile,
		MaxSizeMB:  cfg.MaxLogSizeMB,
		MaxBackups: cfg.MaxLogBackups,
	})

	// 2. Dependencies
	prices := alpaca.NewProvider(alpaca.Options{
		APIKey:    cfg.AlpacaAPIKey,
		APISecret: cfg.AlpacaAPISecret,
		BaseURL:   cfg.AlpacaDataURL,
		Feed:      cfg.AlpacaFeed,
	}, appLog)

	simulator := simulation.NewHTTPClient(cfg.SimulationServiceURL, appLog)

	// A nil *telegram.Notifier must not reach the interface as a typed nil.
	var notifier dialog.Notifier
	if n := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, appLog); n != nil {
		notifier = n
	}

	advisor := dialog.NewAdvisor(prices, simulator, notifier, dialog.AdvisorOptions{
		BondTicker:   cfg.BondTicker,
		EquityTicker: cfg.EquityTicker,
		HistoryDays:  cfg.PriceHistoryDays,
		Trials:       cfg.SimulationTrials,
		Years:        cfg.SimulationYears,
	}, appLog)

	dispatcher := dialog.NewDispatcher(appLog)
	dispatcher.Register(dialog.IntentRecommendPortfolio, advisor)

	srv := server.New(server.Config{
		Log:        appLog,
		Dispatcher: dispatcher,
		Port:       cfg.Port,
		Version:    cfg.Version,
	})

	// 3. Serve
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	appLog.Info().
		Str("version", cfg.Version).
		Str("bond", cfg.BondTicker).
		Str("equity", cfg.EquityTicker).
		Int("intents", dispatcher.Intents()).
		Msg("Robo advisor initialized")

	// 4. Signal Handling (Graceful Shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLog.Warn().Str("signal", sig.String()).Msg("Shutting down: system signal received")
	case err := <-errCh:
		appLog.Error().Err(err).Msg("HTTP server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error().Err(err).Msg("Server forced to shutdown")
	}
	appLog.Info().Msg("Stopped")
	if err := logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
	}
}

func readVersion() string {
	version, err := os.ReadFile(VersionFile)
	if err != nil {
		return "v0.0.0-dev"
	}
	return strings.TrimSpace(string(version))
}
