// Package telegram is the chat front end of the diary. It serves a single
// owner chat.
package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-memories/internal/diary"
	"ai-memories/internal/history"
)

const maxMessageLen = 4000

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	svc         *diary.Service
	history     *history.Manager
	ownerChatID int64
	parseMode   string
	logger      *zap.Logger

	mu         sync.Mutex
	onboarding map[int64]bool
}

func New(botToken string, ownerChatID int64, parseMode string, svc *diary.Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		svc:         svc,
		history:     history.NewManager(),
		ownerChatID: ownerChatID,
		parseMode:   parseMode,
		logger:      logger,
		onboarding:  make(map[int64]bool),
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	for _, part := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		if b.parseMode != "" {
			msg.ParseMode = b.parseMode
		}
		if _, err := b.s.Send(msg); err != nil {
			b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func (b *Bot) setOnboarding(chatID int64, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on {
		b.onboarding[chatID] = true
	} else {
		delete(b.onboarding, chatID)
	}
}

func (b *Bot) isOnboarding(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.onboarding[chatID]
}
