// Package mcpserver exposes the diary's read side as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ai-memories/internal/diary"
	"ai-memories/internal/journal"
)

type ListEntriesParams struct {
	YearStart *int `json:"year_start,omitempty" mcp:"first year of the era, inclusive"`
	YearEnd   *int `json:"year_end,omitempty" mcp:"last year of the era, inclusive"`
	Limit     int  `json:"limit,omitempty" mcp:"return only the latest N entries"`
}

type NoParams struct{}

type DailyStatsParams struct {
	Date string `json:"date,omitempty" mcp:"day to report on as YYYY-MM-DD; today (UTC) when empty"`
}

type Server struct {
	svc    *diary.Service
	logger *zap.Logger
}

func New(svc *diary.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger}
}

// MCP builds an MCP server with every diary tool registered.
func (s *Server) MCP(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ai-memories-mcp",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_entries",
		Description: "Lists journal entries in creation order, optionally limited to an inclusive year range",
	}, s.ListEntries)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "knowledge_summary",
		Description: "Returns everything the diary knows, grouped by tag type",
	}, s.KnowledgeSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tags",
		Description: "Lists every extracted tag with the entry it belongs to",
	}, s.ListTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "daily_stats",
		Description: "Returns journaling statistics for one day",
	}, s.DailyStats)

	return server
}

func (s *Server) ListEntries(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ListEntriesParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	era := journal.NewEra(args.YearStart, args.YearEnd, "")

	entries, err := s.svc.EntriesByEra(ctx, era)
	if err != nil {
		s.logger.Warn("list_entries rejected", zap.Error(err))
		return errorResult(err), nil
	}
	total := len(entries)
	if args.Limit > 0 && len(entries) > args.Limit {
		entries = entries[len(entries)-args.Limit:]
	}

	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString("No entries")
		if era.Bounded() {
			fmt.Fprintf(&b, " for %s", era.Name())
		}
		b.WriteString(".")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s] %s\n", e.Day(), e.Content)
		for _, t := range e.Tags {
			fmt.Fprintf(&b, "  - %s: %s\n", t.Type, t.Value)
		}
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: strings.TrimSpace(b.String())},
		},
		Meta: map[string]interface{}{
			"total":    total,
			"returned": len(entries),
		},
	}, nil
}

func (s *Server) KnowledgeSummary(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[NoParams]) (*mcp.CallToolResultFor[any], error) {
	sum := s.svc.Summary(ctx)
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sum.String()},
		},
		Meta: map[string]interface{}{
			"no_memories": sum.IsNoMemories(),
			"groups":      len(sum.Groups()),
		},
	}, nil
}

func (s *Server) ListTags(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[NoParams]) (*mcp.CallToolResultFor[any], error) {
	records := s.svc.Tags(ctx)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errorResult(err), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
		Meta: map[string]interface{}{
			"count": len(records),
		},
	}, nil
}

func (s *Server) DailyStats(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[DailyStatsParams]) (*mcp.CallToolResultFor[any], error) {
	date := time.Now().UTC()
	if v := strings.TrimSpace(params.Arguments.Date); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return errorResult(fmt.Errorf("date must be YYYY-MM-DD: %w", err)), nil
		}
		date = d
	}

	stats := s.svc.DailyStats(ctx, date)
	js, err := stats.ToJSON()
	if err != nil {
		return errorResult(err), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: stats.GenerateReportSummary()},
			&mcp.TextContent{Text: js},
		},
		Meta: map[string]interface{}{
			"date":    stats.Date,
			"entries": stats.Entries,
		},
	}, nil
}

func errorResult(err error) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("❌ %v", err)},
		},
	}
}
