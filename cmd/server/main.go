package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floatchat.com/core/internal/answer"
	"floatchat.com/core/internal/api"
	"floatchat.com/core/internal/config"
	"floatchat.com/core/internal/core"
	"floatchat.com/core/internal/telemetry"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup structured logging and telemetry
	logger, err := telemetry.InitLogger(config.AppConfig.LogDir, config.AppConfig.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	_, _, telemetryCleanup, err := telemetry.InitTelemetry(context.Background(), config.AppConfig.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer telemetryCleanup()

	// Initialize the answer service client
	answerClient := answer.NewClient(
		config.AppConfig.AnswerServiceURL,
		time.Duration(config.AppConfig.AnswerTimeoutSec)*time.Second,
	)

	// Initialize the state coordinator
	coordinator := core.NewCoordinator(answerClient)
	defer coordinator.Close()

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(coordinator)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // The websocket state stream stays open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("starting server", "addr", serverAddr, "answer_service", config.AppConfig.AnswerServiceURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received
	logger.Info("shutting down server")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited gracefully")
}
