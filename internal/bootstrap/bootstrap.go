// Package bootstrap turns a Config into a ready diary service.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ai-memories/internal/config"
	"ai-memories/internal/diary"
	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
	"ai-memories/internal/prompt"
	"ai-memories/internal/storage"
)

// App holds the wired service and the resources to release on exit.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Service *diary.Service

	closers []func() error
}

// NewLogger builds a zap logger writing to stderr, so stdout stays free for
// the MCP stdio transport.
func NewLogger(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
}

// OpenRecords opens the persistence backend selected by STORAGE_DRIVER.
func OpenRecords(ctx context.Context, cfg *config.Config) (storage.Records, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		db, err := storage.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		fs, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() error { return nil }, nil
	}
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	records, closeRecords, err := OpenRecords(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	templates, err := prompt.LoadTemplates(cfg.PromptsPath)
	if err != nil {
		_ = closeRecords()
		return nil, err
	}

	svc := diary.New(
		journal.NewStore(records, logger.Named("journal")),
		profile.NewStore(records, logger.Named("profile")),
		llm.NewFactory(cfg),
		prompt.NewAssembler(templates),
		diary.LimitsFromConfig(cfg),
		logger.Named("diary"),
	)

	logger.Info("diary ready",
		zap.String("storage", string(cfg.StorageDriver)),
		zap.String("llm_provider", string(cfg.LLMProvider)),
		zap.String("chat_model", cfg.OpenAIModel),
	)
	return &App{Config: cfg, Logger: logger, Service: svc, closers: []func() error{closeRecords}}, nil
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	_ = a.Logger.Sync()
	return first
}
