package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ai-memories/internal/bootstrap"
	"ai-memories/internal/config"
)

var version = "dev"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	root := &cobra.Command{
		Use:          "memories",
		Short:        "A private diary that remembers you",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(serveCmd())
	root.AddCommand(botCmd())
	root.AddCommand(addCmd())
	root.AddCommand(entriesCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(tagsCmd())
	root.AddCommand(statsCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp reads the environment and wires the diary service.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	logger, err := bootstrap.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
