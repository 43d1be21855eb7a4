package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-memories/internal/apperr"
	"ai-memories/internal/diary"
	"ai-memories/internal/history"
	"ai-memories/internal/journal"
	"ai-memories/internal/knowledge"
	"ai-memories/internal/profile"
)

const entriesShown = 10

const helpText = `Commands:
/write - every message becomes a journal entry
/chat - talk with your journaling companion
/past [from] [to] [label] - talk with your past self, e.g. /past 2015 2018 university
/entries - latest entries
/summary - what the diary knows about you
/tags - every tag with its date
/report - today's digest
/reset - forget the current conversation`

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if msg.Chat.ID != b.ownerChatID {
		b.logger.Warn("message from foreign chat ignored", zap.Int64("chat_id", msg.Chat.ID))
		b.sendMessage(msg.Chat.ID, "This diary is private.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if b.isOnboarding(msg.Chat.ID) {
		b.handleOnboardingAnswer(ctx, msg.Chat.ID, text)
		return
	}

	sess := b.history.Get(msg.Chat.ID)
	if sess.Mode == history.ModeWrite {
		b.handleEntry(ctx, msg.Chat.ID, sess, text)
		return
	}
	b.handleConverse(ctx, msg.Chat.ID, sess, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.sendMessage(chatID, helpText)
	case "write":
		b.setOnboarding(chatID, false)
		b.history.Begin(chatID, history.ModeWrite, journal.Era{})
		b.sendMessage(chatID, "Write mode. Everything you send now goes into your diary.")
	case "chat":
		b.setOnboarding(chatID, false)
		b.openConversation(ctx, chatID, history.ModeCompanion, journal.Era{})
	case "past":
		era, err := parseEra(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, err.Error()+"\nUsage: /past [from] [to] [label]")
			return
		}
		b.setOnboarding(chatID, false)
		b.openConversation(ctx, chatID, history.ModePastSelf, era)
	case "entries":
		b.sendMessage(chatID, formatEntries(b.svc.Entries(ctx), entriesShown))
	case "summary":
		b.sendMessage(chatID, b.svc.Summary(ctx).String())
	case "tags":
		b.sendMessage(chatID, formatTags(b.svc.Tags(ctx)))
	case "report":
		if err := b.SendDailyDigest(ctx); err != nil {
			b.sendMessage(chatID, fmt.Sprintf("Could not build the digest: %v", err))
		}
	case "reset":
		b.setOnboarding(chatID, false)
		b.history.Reset(chatID)
		b.sendMessage(chatID, "Conversation forgotten. Your entries are untouched.")
	default:
		b.sendMessage(chatID, helpText)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.history.Reset(chatID)
	p := b.svc.Profile(ctx)
	if q, ok := profile.NextQuestion(p); ok && !p.OnboardingComplete() {
		b.setOnboarding(chatID, true)
		b.sendMessage(chatID, q.Prompt)
		return
	}
	b.sendMessage(chatID, "Welcome back. Write anything to add it to your diary.\n\n"+helpText)
}

func (b *Bot) handleOnboardingAnswer(ctx context.Context, chatID int64, answer string) {
	q, ok := profile.NextQuestion(b.svc.Profile(ctx))
	fields := map[string]any{}
	if ok {
		fields[q.Key] = answer
	}

	p, err := b.svc.UpdateProfile(ctx, fields)
	if err != nil {
		b.logger.Error("profile update failed", zap.Error(err))
		b.sendMessage(chatID, "I could not save that, please try again.")
		return
	}
	if next, more := profile.NextQuestion(p); more {
		b.sendMessage(chatID, next.Prompt)
		return
	}

	if _, err := b.svc.UpdateProfile(ctx, map[string]any{profile.KeyOnboardingComplete: true}); err != nil {
		b.logger.Error("profile update failed", zap.Error(err))
	}
	b.setOnboarding(chatID, false)
	b.history.Begin(chatID, history.ModeWrite, journal.Era{})
	b.sendMessage(chatID, "Thank you. Your diary is ready: write your first entry whenever you like.\n\n"+helpText)
}

func (b *Bot) handleEntry(ctx context.Context, chatID int64, sess history.Session, text string) {
	res, err := b.svc.SubmitEntry(ctx, diary.SubmitEntryRequest{Content: text, History: sess.Transcript})
	if err != nil {
		b.history.Failed(chatID)
		b.replyError(chatID, err)
		return
	}
	b.history.Exchanged(chatID, text, res.AIResponse)

	reply := res.AIResponse
	if len(res.Tags) > 0 {
		values := make([]string, 0, len(res.Tags))
		for _, t := range res.Tags {
			values = append(values, t.Value)
		}
		reply += "\n\n🏷 " + strings.Join(values, ", ")
	}
	b.sendMessage(chatID, reply)
}

func (b *Bot) handleConverse(ctx context.Context, chatID int64, sess history.Session, text string) {
	res, err := b.svc.Converse(ctx, diary.ConverseRequest{
		Message: text,
		History: sess.Transcript,
		Mode:    sess.Mode,
		Era:     sess.Era,
	})
	if err != nil {
		b.history.Failed(chatID)
		b.replyError(chatID, err)
		return
	}
	b.history.Exchanged(chatID, text, res.Response)
	b.sendMessage(chatID, res.Response)
}

// openConversation starts a fresh session and asks for its opening turn.
func (b *Bot) openConversation(ctx context.Context, chatID int64, mode history.Mode, era journal.Era) {
	b.history.Begin(chatID, mode, era)
	res, err := b.svc.Open(ctx, diary.OpenRequest{Mode: mode, Era: era})
	if err != nil {
		b.history.Failed(chatID)
		b.replyError(chatID, err)
		return
	}
	b.history.Opened(chatID, res.Response)
	b.sendMessage(chatID, res.Response)
}

func (b *Bot) replyError(chatID int64, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		b.sendMessage(chatID, err.Error())
	case apperr.KindExternalService:
		b.logger.Warn("chat collaborator failed", zap.Error(err))
		b.sendMessage(chatID, "The AI did not answer: "+err.Error()+"\nSend your message again to retry.")
	default:
		b.logger.Error("request failed", zap.Error(err))
		b.sendMessage(chatID, "Something went wrong, nothing was saved.")
	}
}

// SendDailyDigest sends today's journaling digest to the owner chat.
func (b *Bot) SendDailyDigest(ctx context.Context) error {
	if b.ownerChatID == 0 {
		return errors.New("owner chat is not configured")
	}
	stats := b.svc.DailyStats(ctx, time.Now().UTC())
	b.sendMessage(b.ownerChatID, stats.GenerateReportSummary())
	return nil
}

// parseEra reads "[from] [to] [label...]". A single year means that year only.
func parseEra(args string) (journal.Era, error) {
	fields := strings.Fields(args)
	var years []int
	for len(fields) > 0 && len(years) < 2 {
		y, err := strconv.Atoi(fields[0])
		if err != nil {
			break
		}
		years = append(years, y)
		fields = fields[1:]
	}
	label := strings.Join(fields, " ")

	var era journal.Era
	switch len(years) {
	case 1:
		era = journal.Years(years[0], years[0])
	case 2:
		era = journal.Years(years[0], years[1])
	}
	era.Label = label
	if err := era.Validate(); err != nil {
		return journal.Era{}, err
	}
	return era, nil
}

func formatEntries(entries []journal.Entry, limit int) string {
	if len(entries) == 0 {
		return "No entries yet."
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	var bld strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&bld, "[%s] %s\n\n", e.Day(), e.Content)
	}
	return strings.TrimSpace(bld.String())
}

func formatTags(records []knowledge.TagRecord) string {
	if len(records) == 0 {
		return "No tags yet."
	}
	var bld strings.Builder
	for _, r := range records {
		day := "?"
		if !r.CreatedAt.IsZero() {
			day = r.CreatedAt.UTC().Format("2006-01-02")
		}
		fmt.Fprintf(&bld, "%s · %s: %s\n", day, r.Type, r.Value)
	}
	return strings.TrimSpace(bld.String())
}
