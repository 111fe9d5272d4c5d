// cmd/katalens/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"kata_lens/internal/client"
	"kata_lens/internal/config"
	"kata_lens/internal/logging"
	"kata_lens/internal/middleware"
	"kata_lens/internal/recognizer"
	"kata_lens/internal/repository"
	"kata_lens/internal/service"
)

const usage = `Usage: katalens [--config DIR] [--json] <command> [args]

Commands:
  scan <image>                     recognize a photo and save it to history and flashcards
  history list [--page N] [--search KEYWORD]
  history search <keyword>
  history delete <id>
  history clear
  cards list
  cards review
  cards status <id> <not-learned|learning|learned>
  cards toggle <id>
  cards delete <id>
  cards progress
`

func main() {
	flag.CommandLine.SetInterspersed(false)
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	asJSON := flag.Bool("json", false, "print results as JSON")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// config loading reports through the standard logger; keep it off the output
	log.SetOutput(os.Stderr)
	if err := config.LoadConfig(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, config.Cfg.Log.Level, os.Getenv("APP_ENV"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	a, cleanup, err := newApp(ctx, &config.Cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	a.asJSON = *asJSON

	if err := a.run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %s\n", describeError(err))
		cleanup()
		os.Exit(1)
	}
}

// newApp resolves the storage and recognition modes from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, func(), error) {
	cleanup := func() {}

	var history service.HistoryService
	var flashcards service.FlashcardService
	switch cfg.Storage.Mode {
	case config.StorageModeRemote:
		c := client.NewStorageClient(cfg.Storage.RemoteURL, nil, logger)
		history = client.NewRemoteHistoryService(c, cfg.App.HistoryPageSize, logger)
		flashcards = client.NewRemoteFlashcardService(c, logger)
		logger.Debug("Using remote storage", slog.String("url", cfg.Storage.RemoteURL))
	case config.StorageModeLocal:
		store, err := repository.OpenStore(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Error closing storage", slog.Any("error", err))
			}
		}
		history = service.NewHistoryService(store, cfg, logger)
		flashcards = service.NewFlashcardService(store, logger)
		logger.Debug("Using local storage", slog.String("driver", cfg.Storage.Driver))
	default:
		return nil, nil, fmt.Errorf("unknown storage.mode %q", cfg.Storage.Mode)
	}

	rec, err := recognizer.New(recognizer.Config{
		Mode:        recognizer.Mode(cfg.Recognition.Mode),
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
		BackendURL:  cfg.Recognition.BackendURL,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{
		history:    history,
		flashcards: flashcards,
		ingest:     service.NewIngestService(rec, history, flashcards, logger),
		out:        os.Stdout,
		logger:     logger,
	}, cleanup, nil
}

// describeError renders err for the terminal.
func describeError(err error) string {
	switch {
	case client.IsUnavailable(err):
		return fmt.Sprintf("无法连接存储服务: %v", err)
	default:
		return err.Error()
	}
}
