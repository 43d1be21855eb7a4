package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-memories/internal/diary"
	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
	"ai-memories/internal/prompt"
	"ai-memories/internal/storage"
)

type fakeLLM struct{ reply string }

func (f fakeLLM) Generate(context.Context, []llm.Message) (llm.Response, error) {
	return llm.Response{Content: f.reply}, nil
}

type fakeClients struct{}

func (fakeClients) ChatClient(string) (llm.Client, error) { return fakeLLM{reply: "ok"}, nil }
func (fakeClients) ExtractionClient(string) (llm.Client, error) {
	return fakeLLM{reply: `[{"type":"Entity","value":"Rocco"}]`}, nil
}

func newServer(t *testing.T) *Server {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	clock := time.Date(2022, 7, 1, 9, 0, 0, 0, time.UTC)
	entries := journal.NewStore(fs, nil, journal.WithClock(func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}))
	svc := diary.New(entries, profile.NewStore(fs, nil), fakeClients{}, prompt.NewAssembler(prompt.DefaultTemplates()),
		diary.Limits{JournalHistoryWindow: 8, PastSelfHistoryWindow: 6, JournalRecentEntries: 3, PastSelfEntryLimit: 15}, nil)

	for _, c := range []string{"Fui al parque con mi perro Rocco", "Rocco learned to sit"} {
		_, err := svc.SubmitEntry(context.Background(), diary.SubmitEntryRequest{Content: c, APIKey: "k"})
		require.NoError(t, err)
	}
	return New(svc, nil)
}

func text(t *testing.T, res *mcp.CallToolResultFor[any], i int) string {
	t.Helper()
	require.Greater(t, len(res.Content), i)
	tc, ok := res.Content[i].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListEntries(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.ListEntries(ctx, nil, &mcp.CallToolParamsFor[ListEntriesParams]{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res, 0), "[2022-07-01] Fui al parque con mi perro Rocco")
	assert.Contains(t, text(t, res, 0), "  - Entity: Rocco")
	assert.Equal(t, 2, res.Meta["total"])

	res, err = s.ListEntries(ctx, nil, &mcp.CallToolParamsFor[ListEntriesParams]{Arguments: ListEntriesParams{Limit: 1}})
	require.NoError(t, err)
	assert.NotContains(t, text(t, res, 0), "parque")
	assert.Equal(t, 1, res.Meta["returned"])

	y := 2010
	res, err = s.ListEntries(ctx, nil, &mcp.CallToolParamsFor[ListEntriesParams]{Arguments: ListEntriesParams{YearStart: &y, YearEnd: &y}})
	require.NoError(t, err)
	assert.Equal(t, "No entries for 2010.", text(t, res, 0))

	end := 2000
	res, err = s.ListEntries(ctx, nil, &mcp.CallToolParamsFor[ListEntriesParams]{Arguments: ListEntriesParams{YearStart: &y, YearEnd: &end}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestKnowledgeAndTags(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.KnowledgeSummary(ctx, nil, &mcp.CallToolParamsFor[NoParams]{})
	require.NoError(t, err)
	assert.Equal(t, "[Entity]: Rocco", text(t, res, 0))
	assert.Equal(t, false, res.Meta["no_memories"])

	res, err = s.ListTags(ctx, nil, &mcp.CallToolParamsFor[NoParams]{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Meta["count"])
	assert.Contains(t, text(t, res, 0), `"entryId"`)
}

func TestDailyStats(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.DailyStats(ctx, nil, &mcp.CallToolParamsFor[DailyStatsParams]{Arguments: DailyStatsParams{Date: "2022-07-01"}})
	require.NoError(t, err)
	assert.Contains(t, text(t, res, 0), "Journal digest for 2022-07-01")
	assert.Equal(t, 2, res.Meta["entries"])

	res, err = s.DailyStats(ctx, nil, &mcp.CallToolParamsFor[DailyStatsParams]{Arguments: DailyStatsParams{Date: "July"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMCPRegistersTools(t *testing.T) {
	assert.NotNil(t, newServer(t).MCP("test"))
}
