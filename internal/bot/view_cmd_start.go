package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anikonov/rent-radar/internal/botkit"
)

func ViewCmdStart() botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		msgText := "Бот ищет квартиры в аренду по каналам Батуми.\n" +
			"/addchannel — добавить канал\n" +
			"/listchannels — список каналов\n" +
			"/removechannel — убрать канал\n" +
			"/matches — последние находки"

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, msgText)); err != nil {
			return err
		}
		return nil
	}
}
