// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	flag "github.com/spf13/pflag"

	"kata_lens/internal/config"
	"kata_lens/internal/handlers"
	"kata_lens/internal/logging"
	"kata_lens/internal/recognizer"
	"kata_lens/internal/repository"
	"kata_lens/internal/service"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	// temporary logger until the configured one exists
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// 1. Load configuration
	if err := config.LoadConfig(*configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	appEnv := os.Getenv("APP_ENV")
	logger := logging.New(os.Stderr, config.Cfg.Log.Level, appEnv)
	slog.SetDefault(logger)
	slog.Info("Application starting...",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("APP_ENV", appEnv),
	)

	// 2. Open the key-value store behind /api/storage
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := repository.OpenStore(startCtx, &config.Cfg, logger)
	cancelStart()
	if err != nil {
		slog.Error("Error initializing storage", slog.String("driver", config.Cfg.Storage.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing storage", slog.Any("error", err))
		} else {
			slog.Info("Storage closed.")
		}
	}()

	// 3. Dependency Injection
	historyService := service.NewHistoryService(store, &config.Cfg, logger)
	flashcardService := service.NewFlashcardService(store, logger)

	// the backend always calls the model itself; it is what proxied clients talk to
	rec, err := recognizer.New(recognizer.Config{
		Mode:        recognizer.ModeDirect,
		APIKey:      config.Cfg.OpenAI.APIKey,
		BaseURL:     config.Cfg.OpenAI.BaseURL,
		Model:       config.Cfg.OpenAI.Model,
		MaxTokens:   config.Cfg.OpenAI.MaxTokens,
		Temperature: config.Cfg.OpenAI.Temperature,
		Timeout:     config.Cfg.OpenAI.Timeout,
	}, logger)
	if err != nil {
		slog.Error("Error initializing recognizer", slog.Any("error", err))
		os.Exit(1)
	}

	translateHandler := handlers.NewTranslateHandler(rec, logger)
	storageHandler := handlers.NewStorageHandler(historyService, flashcardService, logger)

	// 4. Setup Router
	r := handlers.NewRouter(handlers.RouterConfig{
		Logger:    logger,
		Translate: translateHandler,
		Storage:   storageHandler,
		CORS: cors.Options{
			AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
			AllowedMethods:   config.Cfg.CORS.AllowedMethods,
			AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
			ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
			AllowCredentials: config.Cfg.CORS.AllowCredentials,
			MaxAge:           config.Cfg.CORS.MaxAge,
		},
		Health:  store.Ping,
		Timeout: config.Cfg.OpenAI.Timeout + 30*time.Second,
	})

	// 5. Start Server
	server := &http.Server{
		Addr:        config.Cfg.Server.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// a translate call may wait on the model for the whole client timeout
		WriteTimeout: config.Cfg.OpenAI.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
