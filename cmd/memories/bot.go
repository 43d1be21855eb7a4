package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai-memories/internal/scheduler"
	"ai-memories/internal/telegram"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot for the owner chat, with the daily digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			cfg := app.Config
			if cfg.TelegramBotToken == "" || cfg.TelegramOwnerChatID == 0 {
				return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_OWNER_CHAT_ID are required")
			}

			bot, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramOwnerChatID, cfg.MessageParseMode,
				app.Service, app.Logger.Named("telegram"))
			if err != nil {
				return err
			}

			if cfg.DigestSchedule != "" {
				sched := scheduler.New(cfg.DigestSchedule, app.Logger.Named("scheduler"))
				sched.SetReportFunction(bot.SendDailyDigest)
				if err := sched.Start(); err != nil {
					return err
				}
				defer sched.Stop()
			} else {
				app.Logger.Info("daily digest disabled", zap.String("env", "DIGEST_SCHEDULE"))
			}

			bot.Start(ctx)
			return nil
		},
	}
}
