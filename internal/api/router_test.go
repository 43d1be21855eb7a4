package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-memories/internal/diary"
	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
	"ai-memories/internal/prompt"
	"ai-memories/internal/storage"
)

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
}

func (f *fakeLLM) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeLLM) Generate(context.Context, []llm.Message) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return llm.Response{Content: f.reply}, f.err
}

// fakeClients records the credential each request resolved to.
type fakeClients struct {
	mu   sync.Mutex
	keys []string
	chat *fakeLLM
}

func (f *fakeClients) ChatClient(apiKey string) (llm.Client, error) {
	f.mu.Lock()
	f.keys = append(f.keys, apiKey)
	f.mu.Unlock()
	if apiKey == "" {
		return nil, llm.ErrMissingCredential
	}
	return f.chat, nil
}

func (f *fakeClients) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func (f *fakeClients) ExtractionClient(apiKey string) (llm.Client, error) {
	return &fakeLLM{reply: `[{"type":"Entity","value":"Rocco"}]`}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeClients) {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	clients := &fakeClients{chat: &fakeLLM{reply: "Tell me more about Rocco."}}
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := journal.NewStore(fs, nil, journal.WithClock(func() time.Time { return clock }))
	svc := diary.New(entries, profile.NewStore(fs, nil), clients, prompt.NewAssembler(prompt.DefaultTemplates()),
		diary.Limits{JournalHistoryWindow: 8, PastSelfHistoryWindow: 6, JournalRecentEntries: 3, PastSelfEntryLimit: 15}, nil)

	srv := httptest.NewServer(NewRouter(svc, nil, nil).Setup())
	t.Cleanup(srv.Close)
	return srv, clients
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.Header.Get("Content-Type") == "application/json" && !strings.HasPrefix(path, "/api/entries") && path != "/api/tags" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestJournalFlow(t *testing.T) {
	srv, clients := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/journal",
		`{"content":"Fui al parque con mi perro Rocco"}`, map[string]string{"X-API-Key": "header-key"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tell me more about Rocco.", body["aiResponse"])
	assert.Equal(t, []string{"header-key"}, clients.recorded())

	resp, body = do(t, srv, http.MethodGet, "/api/knowledge", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["noMemories"])
	assert.Equal(t, "[Entity]: Rocco", body["summary"])

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/entries?yearStart=2024&yearEnd=2024", nil)
	r, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer r.Body.Close()
	var entries []journal.Entry
	require.NoError(t, json.NewDecoder(r.Body).Decode(&entries))
	assert.Len(t, entries, 1)
}

func TestErrorStatuses(t *testing.T) {
	srv, clients := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/journal", `{"content":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body["kind"])

	resp, _ = do(t, srv, http.MethodPost, "/api/converse", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/api/converse", `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "external_service", body["kind"])

	clients.chat.fail(errors.New("quota"))
	resp, _ = do(t, srv, http.MethodPost, "/api/chat", `{"message":"hi","apiKey":"k"}`, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/stats?date=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/entries?yearStart=2021&yearEnd=2019", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConverse_BearerAndLegacyFields(t *testing.T) {
	srv, clients := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/chat",
		`{"message":"who am I?","modoYoPasado":true,"eraYearStart":2010,"eraYearEnd":2012,"eraLabel":"school"}`,
		map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tell me more about Rocco.", body["response"])
	assert.Equal(t, []string{"tok"}, clients.recorded())

	resp, _ = do(t, srv, http.MethodPost, "/api/converse/open", `{"mode":"past","apiKey":"k"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileAndOnboarding(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := do(t, srv, http.MethodGet, "/api/onboarding", "", nil)
	next := body["next"].(map[string]any)
	assert.Equal(t, profile.KeyNameAndLifeStage, next["key"])

	resp, body := do(t, srv, http.MethodPost, "/api/profile", `{"nameAndLifeStage":"Ana","onboardingComplete":true}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", body["nameAndLifeStage"])
	assert.NotEmpty(t, body["updatedAt"])

	_, body = do(t, srv, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, "Ana", body["nameAndLifeStage"])

	_, body = do(t, srv, http.MethodGet, "/api/onboarding", "", nil)
	assert.Nil(t, body["next"])
	assert.Equal(t, true, body["complete"])
}

func TestAPIKeyPrecedence(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-API-Key", "header")
	r.Header.Set("Authorization", "Bearer bearer")
	assert.Equal(t, "body", apiKey(r, "body"))
	assert.Equal(t, "header", apiKey(r, ""))

	r.Header.Del("X-API-Key")
	assert.Equal(t, "bearer", apiKey(r, ""))

	r.Header.Del("Authorization")
	assert.Equal(t, "", apiKey(r, ""))
}
