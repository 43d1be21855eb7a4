// Package diary is the request surface of the memories engine. It wires the
// entry store, the knowledge view, the context assembler and the LLM
// collaborators together for every front end.
package diary

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ai-memories/internal/analytics"
	"ai-memories/internal/apperr"
	"ai-memories/internal/config"
	"ai-memories/internal/extract"
	"ai-memories/internal/history"
	"ai-memories/internal/journal"
	"ai-memories/internal/knowledge"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
	"ai-memories/internal/prompt"
)

// ClientSource hands out LLM clients for an explicit credential.
// llm.Factory implements it.
type ClientSource interface {
	ChatClient(apiKey string) (llm.Client, error)
	ExtractionClient(apiKey string) (llm.Client, error)
}

// Limits bounds how much context goes into each prompt mode.
type Limits struct {
	JournalHistoryWindow  int
	PastSelfHistoryWindow int
	JournalRecentEntries  int
	PastSelfEntryLimit    int
}

func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		JournalHistoryWindow:  cfg.JournalHistoryWindow,
		PastSelfHistoryWindow: cfg.PastSelfHistoryWindow,
		JournalRecentEntries:  cfg.JournalRecentEntries,
		PastSelfEntryLimit:    cfg.PastSelfEntryLimit,
	}
}

type Service struct {
	entries   *journal.Store
	profiles  *profile.Store
	clients   ClientSource
	assembler *prompt.Assembler
	limits    Limits
	logger    *zap.Logger
}

func New(entries *journal.Store, profiles *profile.Store, clients ClientSource, assembler *prompt.Assembler, limits Limits, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entries:   entries,
		profiles:  profiles,
		clients:   clients,
		assembler: assembler,
		limits:    limits,
		logger:    logger,
	}
}

type SubmitEntryRequest struct {
	Content string        `json:"content" validate:"required,max=20000"`
	History []llm.Message `json:"history,omitempty"`
	APIKey  string        `json:"apiKey,omitempty"`
}

type SubmitEntryResult struct {
	Entry      journal.Entry `json:"entry"`
	AIResponse string        `json:"aiResponse"`
	Tags       []journal.Tag `json:"tags"`
}

// SubmitEntry asks the companion for a reply and extracts tags in parallel,
// then appends the entry. A failed extraction yields no tags; a failed
// reply creates no entry.
func (s *Service) SubmitEntry(ctx context.Context, req SubmitEntryRequest) (SubmitEntryResult, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest("submit entry", req); err != nil {
		return SubmitEntryResult{}, err
	}

	chat, err := s.clients.ChatClient(req.APIKey)
	if err != nil {
		return SubmitEntryResult{}, apperr.External("chat client", err)
	}

	all := s.entries.ListAll(ctx)
	turns := history.Normalize(history.Canonical(req.History), s.limits.JournalHistoryWindow)
	system := s.assembler.Journaling(prompt.JournalingInput{
		Profile: s.profiles.Get(ctx),
		Summary: knowledge.Summarize(all),
		History: turns,
	})

	var (
		reply string
		tags  []journal.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := chat.Generate(gctx, llm.Conversation(system, turns, req.Content))
		if err != nil {
			return apperr.External("journaling reply", err)
		}
		reply = resp.Content
		return nil
	})
	g.Go(func() error {
		tags = s.extractTags(gctx, req.APIKey, req.Content)
		return nil
	})
	if err := g.Wait(); err != nil {
		return SubmitEntryResult{}, err
	}

	entry, err := s.entries.Append(ctx, req.Content, reply, tags)
	if err != nil {
		return SubmitEntryResult{}, err
	}
	s.logger.Info("entry recorded", zap.Int64("id", entry.ID), zap.Int("tags", len(entry.Tags)))
	return SubmitEntryResult{Entry: entry, AIResponse: reply, Tags: entry.Tags}, nil
}

// extractTags never fails: every error is logged and becomes an empty list.
func (s *Service) extractTags(ctx context.Context, apiKey, content string) []journal.Tag {
	client, err := s.clients.ExtractionClient(apiKey)
	if err == nil {
		var tags []journal.Tag
		tags, err = extract.Tags(ctx, client, content)
		if err == nil {
			return tags
		}
	}
	s.logger.Warn("tag extraction failed, storing entry without tags",
		zap.Error(apperr.Extraction("extract tags", err)))
	return []journal.Tag{}
}

type ConverseRequest struct {
	Message string        `json:"message" validate:"required"`
	History []llm.Message `json:"history,omitempty"`
	Mode    history.Mode  `json:"mode,omitempty" validate:"omitempty,oneof=write companion past"`
	Era     journal.Era   `json:"era"`
	APIKey  string        `json:"apiKey,omitempty"`
}

type ConverseResult struct {
	Response string `json:"response"`
}

// Converse answers one user turn in the requested mode. The whole
// continuity of the conversation comes from req.History.
func (s *Service) Converse(ctx context.Context, req ConverseRequest) (ConverseResult, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := validateRequest("converse", req); err != nil {
		return ConverseResult{}, err
	}
	if err := req.Era.Validate(); err != nil {
		return ConverseResult{}, err
	}

	full := history.Canonical(req.History)
	var (
		system string
		turns  []llm.Message
	)
	if req.Mode == history.ModePastSelf {
		turns = history.Normalize(full, s.limits.PastSelfHistoryWindow)
		system = s.pastSelfPrompt(ctx, req.Era)
	} else {
		turns = history.Normalize(full, s.limits.JournalHistoryWindow)
		system = s.companionPrompt(ctx, turns)
	}
	return s.chat(ctx, req.APIKey, system, turns, req.Message)
}

type OpenRequest struct {
	Mode   history.Mode `json:"mode,omitempty" validate:"omitempty,oneof=write companion past"`
	Era    journal.Era  `json:"era"`
	Entry  string       `json:"entry,omitempty"`
	APIKey string       `json:"apiKey,omitempty"`
}

// Open produces the first assistant turn of a conversation. It is the only
// call made with an empty history.
func (s *Service) Open(ctx context.Context, req OpenRequest) (ConverseResult, error) {
	if err := validateRequest("open conversation", req); err != nil {
		return ConverseResult{}, err
	}
	if err := req.Era.Validate(); err != nil {
		return ConverseResult{}, err
	}

	var system string
	if req.Mode == history.ModePastSelf {
		system = s.pastSelfPrompt(ctx, req.Era)
	} else {
		system = s.companionPrompt(ctx, nil)
	}
	opening := s.assembler.Opening(prompt.OpeningInput{Mode: req.Mode, Era: req.Era, Entry: req.Entry})
	return s.chat(ctx, req.APIKey, system, nil, opening)
}

func (s *Service) companionPrompt(ctx context.Context, turns []llm.Message) string {
	all := s.entries.ListAll(ctx)
	return s.assembler.Journaling(prompt.JournalingInput{
		Profile: s.profiles.Get(ctx),
		Summary: knowledge.Summarize(all),
		History: turns,
		Recent:  lastN(all, s.limits.JournalRecentEntries),
	})
}

// pastSelfPrompt scopes both the recollections and the knowledge view to
// the era, so nothing after it leaks into the prompt.
func (s *Service) pastSelfPrompt(ctx context.Context, era journal.Era) string {
	known := journal.FilterByEra(s.entries.ListAll(ctx), era)
	return s.assembler.PastSelf(prompt.PastSelfInput{
		Profile: s.profiles.Get(ctx),
		Summary: knowledge.Summarize(known),
		Entries: lastN(known, s.limits.PastSelfEntryLimit),
		Era:     era,
	})
}

func (s *Service) chat(ctx context.Context, apiKey, system string, turns []llm.Message, message string) (ConverseResult, error) {
	client, err := s.clients.ChatClient(apiKey)
	if err != nil {
		return ConverseResult{}, apperr.External("chat client", err)
	}
	resp, err := client.Generate(ctx, llm.Conversation(system, turns, message))
	if err != nil {
		return ConverseResult{}, apperr.External("chat", err)
	}
	return ConverseResult{Response: resp.Content}, nil
}

func (s *Service) Entries(ctx context.Context) []journal.Entry {
	return s.entries.ListAll(ctx)
}

// EntriesByEra returns the entries written within era.
func (s *Service) EntriesByEra(ctx context.Context, era journal.Era) ([]journal.Entry, error) {
	if err := era.Validate(); err != nil {
		return nil, err
	}
	return journal.FilterByEra(s.entries.ListAll(ctx), era), nil
}

func (s *Service) Profile(ctx context.Context) profile.Profile {
	return s.profiles.Get(ctx)
}

// UpdateProfile bulk-merges fields into the profile.
func (s *Service) UpdateProfile(ctx context.Context, fields map[string]any) (profile.Profile, error) {
	if fields == nil {
		return nil, apperr.Validation("update profile", "profile body is required")
	}
	return s.profiles.Merge(ctx, fields)
}

func (s *Service) Summary(ctx context.Context) knowledge.Summary {
	return knowledge.Summarize(s.entries.ListAll(ctx))
}

func (s *Service) Tags(ctx context.Context) []knowledge.TagRecord {
	return knowledge.ListAllTags(s.entries.ListAll(ctx))
}

// DailyStats reports the journaling activity of the day containing date.
func (s *Service) DailyStats(ctx context.Context, date time.Time) *analytics.DailyStats {
	return analytics.AnalyzeDay(s.entries.ListAll(ctx), date)
}

func lastN(entries []journal.Entry, n int) []journal.Entry {
	if n <= 0 {
		return nil
	}
	if len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}
