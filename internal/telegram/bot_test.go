package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-memories/internal/diary"
	"ai-memories/internal/history"
	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
	"ai-memories/internal/prompt"
	"ai-memories/internal/storage"
)

const owner = int64(100)

type fakeSender struct{ sent []string }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	sw := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, sw.Text)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeLLM struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Generate(_ context.Context, msgs []llm.Message) (llm.Response, error) {
	f.calls = append(f.calls, msgs)
	return llm.Response{Content: f.reply}, f.err
}

type fakeClients struct{ chat, extractor *fakeLLM }

func (f fakeClients) ChatClient(string) (llm.Client, error)       { return f.chat, nil }
func (f fakeClients) ExtractionClient(string) (llm.Client, error) { return f.extractor, nil }

func newTestBot(t *testing.T) (*Bot, *fakeSender, fakeClients) {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	clients := fakeClients{
		chat:      &fakeLLM{reply: "How did Rocco like it?"},
		extractor: &fakeLLM{reply: `[{"type":"Entity","value":"Rocco"}]`},
	}
	svc := diary.New(journal.NewStore(fs, nil), profile.NewStore(fs, nil), clients,
		prompt.NewAssembler(prompt.DefaultTemplates()),
		diary.Limits{JournalHistoryWindow: 8, PastSelfHistoryWindow: 6, JournalRecentEntries: 3, PastSelfEntryLimit: 15}, nil)

	sender := &fakeSender{}
	b := &Bot{
		s:           sender,
		svc:         svc,
		history:     history.NewManager(),
		ownerChatID: owner,
		logger:      zap.NewNop(),
		onboarding:  make(map[int64]bool),
	}
	return b, sender, clients
}

func text(chatID int64, s string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: s}
}

func command(chatID int64, cmd, args string) *tgbotapi.Message {
	full := "/" + cmd
	if args != "" {
		full += " " + args
	}
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     full,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}},
	}
}

func TestForeignChatIsRejected(t *testing.T) {
	b, sender, clients := newTestBot(t)
	b.handleIncomingMessage(context.Background(), text(555, "hello"))

	assert.Equal(t, []string{"This diary is private."}, sender.sent)
	assert.Empty(t, clients.chat.calls)
	assert.Empty(t, b.svc.Entries(context.Background()))
}

func TestOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	b, sender, _ := newTestBot(t)

	b.handleIncomingMessage(ctx, command(owner, "start", ""))
	assert.Contains(t, sender.last(), "What is your name")

	b.handleIncomingMessage(ctx, text(owner, "Ana, finishing university"))
	b.handleIncomingMessage(ctx, text(owner, "The summer in my grandmother's village"))
	b.handleIncomingMessage(ctx, text(owner, "dry and ironic"))
	assert.Contains(t, sender.last(), "Your diary is ready")

	p := b.svc.Profile(ctx)
	assert.Equal(t, "Ana, finishing university", p.NameAndLifeStage())
	assert.Equal(t, "dry and ironic", p.LinguisticStyle())
	assert.True(t, p.OnboardingComplete())
	assert.Empty(t, b.svc.Entries(ctx))
}

func TestWriteModeSubmitsEntries(t *testing.T) {
	ctx := context.Background()
	b, sender, _ := newTestBot(t)

	b.handleIncomingMessage(ctx, text(owner, "Fui al parque con mi perro Rocco"))

	entries := b.svc.Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "How did Rocco like it?", entries[0].AIResponse)
	assert.Contains(t, sender.last(), "🏷 Rocco")

	sess := b.history.Get(owner)
	assert.Equal(t, history.StateActive, sess.State)
	assert.Len(t, sess.Transcript, 2)
}

func TestPastSelfConversation(t *testing.T) {
	ctx := context.Background()
	b, sender, clients := newTestBot(t)

	b.handleIncomingMessage(ctx, command(owner, "past", "2015 2018 university"))
	sess := b.history.Get(owner)
	require.Equal(t, history.StateActive, sess.State)
	assert.Equal(t, history.ModePastSelf, sess.Mode)
	assert.Equal(t, "university", sess.Era.Label)
	require.Len(t, clients.chat.calls, 1)
	assert.Len(t, clients.chat.calls[0], 2)

	b.handleIncomingMessage(ctx, text(owner, "What worried us back then?"))
	assert.Equal(t, "How did Rocco like it?", sender.last())
	assert.Empty(t, b.svc.Entries(ctx))

	// opening reply is an assistant turn and gets dropped by normalization
	last := clients.chat.calls[1]
	assert.Equal(t, llm.RoleSystem, last[0].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "What worried us back then?"}, last[len(last)-1])
	assert.Len(t, last, 2)
}

func TestChatFailureMovesToError(t *testing.T) {
	ctx := context.Background()
	b, sender, clients := newTestBot(t)
	clients.chat.err = errors.New("quota")

	b.handleIncomingMessage(ctx, command(owner, "chat", ""))
	assert.Equal(t, history.StateError, b.history.Get(owner).State)
	assert.Contains(t, sender.last(), "Send your message again")

	clients.chat.err = nil
	b.handleIncomingMessage(ctx, text(owner, "hello again"))
	assert.Equal(t, history.StateActive, b.history.Get(owner).State)
}

func TestParseEra(t *testing.T) {
	era, err := parseEra("2019")
	require.NoError(t, err)
	assert.Equal(t, "2019", era.Name())

	era, err = parseEra("2015 2018 first job")
	require.NoError(t, err)
	assert.Equal(t, "first job", era.Name())
	assert.True(t, era.Contains(2016))

	era, err = parseEra("")
	require.NoError(t, err)
	assert.False(t, era.Bounded())

	_, err = parseEra("2020 2010")
	assert.Error(t, err)
}

func TestSendDailyDigest(t *testing.T) {
	ctx := context.Background()
	b, sender, _ := newTestBot(t)
	b.handleIncomingMessage(ctx, text(owner, "A long day"))

	require.NoError(t, b.SendDailyDigest(ctx))
	assert.Contains(t, sender.last(), "Journal digest for "+time.Now().UTC().Format("2006-01-02"))

	b.ownerChatID = 0
	assert.Error(t, b.SendDailyDigest(ctx))
}

func TestSplitMessage(t *testing.T) {
	long := strings.Repeat("line\n", 30)
	parts := splitMessage(long, 40)
	assert.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 40)
	}
	assert.Equal(t, []string{"short"}, splitMessage("short", 40))
}
