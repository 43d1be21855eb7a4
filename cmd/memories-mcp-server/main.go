package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ai-memories/internal/bootstrap"
	"ai-memories/internal/config"
	"ai-memories/internal/mcpserver"
)

var version = "dev"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	logger, err := bootstrap.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to start diary: %v", err)
	}
	defer app.Close()

	server := mcpserver.New(app.Service, logger.Named("mcp")).MCP(version)
	logger.Info("serving MCP tools on stdio",
		zap.Strings("tools", []string{"list_entries", "knowledge_summary", "list_tags", "daily_stats"}),
	)

	transport := mcp.NewStdioTransport()
	if err := server.Run(ctx, transport); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
	}
}
