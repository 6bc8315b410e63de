package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/anikonov/rent-radar/internal/botkit"
)

// Пускает к команде только администраторов канала ревью
func AdminOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		admins, err := bot.GetChatAdministrators(
			tgbotapi.ChatAdministratorsConfig{
				ChatConfig: tgbotapi.ChatConfig{
					ChatID: channelID,
				},
			},
		)
		if err != nil {
			return err
		}

		isAdmin := lo.ContainsBy(admins, func(admin tgbotapi.ChatMember) bool {
			return admin.User.ID == update.Message.From.ID
		})
		if isAdmin {
			return next(ctx, bot, update)
		}

		if _, err := bot.Send(tgbotapi.NewMessage(
			update.Message.Chat.ID,
			"Команда доступна только администраторам",
		)); err != nil {
			return err
		}
		return nil
	}
}
