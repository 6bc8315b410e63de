package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anikonov/rent-radar/internal/botkit"
)

type ChannelDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// Убирает канал с мониторинга по ID из /listchannels
func ViewCmdRemoveChannel(deleter ChannelDeleter) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		id, err := strconv.ParseInt(strings.TrimSpace(update.Message.CommandArguments()), 10, 64)
		if err != nil {
			if _, err := bot.Send(tgbotapi.NewMessage(
				update.Message.Chat.ID,
				"Укажите числовой ID канала: /removechannel 42",
			)); err != nil {
				return err
			}
			return nil
		}

		if err := deleter.Delete(ctx, id); err != nil {
			return err
		}

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Канал убран с мониторинга")); err != nil {
			return err
		}
		return nil
	}
}
