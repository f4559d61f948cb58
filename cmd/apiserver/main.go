package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lingopal-ai/lingopal-reference/internal/apiserver"
	"github.com/lingopal-ai/lingopal-reference/internal/metrics"
)

func main() {
	address := flag.String("address", "0.0.0.0", "Bind address")
	port := flag.Int("port", 8000, "Listen port")
	apiKey := flag.String("api-key", "", "Require this X-API-Key on requests (empty disables auth)")
	completeAfter := flag.Int("complete-after", 3, "Number of status polls before a job reports completed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	appMetrics := metrics.NewMetrics()

	server := apiserver.New(apiserver.Config{
		Address:       *address,
		Port:          *port,
		APIKey:        *apiKey,
		CompleteAfter: *completeAfter,
	}, logger, appMetrics)

	if err := server.Start(); err != nil {
		logger.Error("Failed to start mock API server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping mock API server", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
}
