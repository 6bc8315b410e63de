package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/anikonov/rent-radar/internal/botkit"
	"github.com/anikonov/rent-radar/internal/botkit/markup"
	"github.com/anikonov/rent-radar/internal/model"
)

type ChannelLister interface {
	Channels(ctx context.Context) ([]model.Channel, error)
}

func ViewCmdListChannels(lister ChannelLister) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		channels, err := lister.Channels(ctx)
		if err != nil {
			return err
		}

		var (
			channelInfos = lo.Map(channels, func(channel model.Channel, _ int) string {
				return formatChannel(channel)
			})
			msgText = fmt.Sprintf(
				"Каналы на мониторинге \\(всего %d\\):\n\n%s",
				len(channels),
				strings.Join(channelInfos, "\n\n"),
			)
		)

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, msgText)
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}
		return nil
	}
}

func formatChannel(channel model.Channel) string {
	return fmt.Sprintf(
		"📡 *%s*\nID: `%d`\nЗеркало: %s",
		markup.Escape(channel.Name),
		channel.ID,
		markup.Escape(channel.FeedURL),
	)
}
