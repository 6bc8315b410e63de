package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anikonov/rent-radar/internal/botkit"
	"github.com/anikonov/rent-radar/internal/model"
)

type ChannelStorage interface {
	Add(ctx context.Context, channel model.Channel) (int64, error)
}

// Добавляет канал на мониторинг.
// Аргументы команды — json вида {"name": "...", "feed_url": "..."}
func ViewCmdAddChannel(storage ChannelStorage) botkit.ViewFunc {
	type addChannelArgs struct {
		Name    string `json:"name"`
		FeedURL string `json:"feed_url"`
	}
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addChannelArgs](update.Message.CommandArguments())
		if err != nil {
			return err
		}

		channel := model.Channel{
			Name:    args.Name,
			FeedURL: args.FeedURL,
		}

		channelID, err := storage.Add(ctx, channel)
		if err != nil {
			return err
		}

		var (
			msgText = fmt.Sprintf(
				"Канал добавлен с ID: `%d`\\. Используйте этот ID для управления каналом\\.",
				channelID,
			)
			reply = tgbotapi.NewMessage(update.Message.Chat.ID, msgText)
		)

		reply.ParseMode = tgbotapi.ModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}
