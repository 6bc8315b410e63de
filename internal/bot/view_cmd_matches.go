package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/anikonov/rent-radar/internal/botkit"
	"github.com/anikonov/rent-radar/internal/model"
	"github.com/anikonov/rent-radar/internal/notifier"
	"github.com/anikonov/rent-radar/internal/storage"
)

type ListingLister interface {
	All(ctx context.Context, query storage.ListingQuery) ([]model.Listing, error)
}

const matchesLimit = 5

// Последние находки, прошедшие фильтр
func ViewCmdMatches(lister ListingLister) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		listings, err := lister.All(ctx, storage.ListingQuery{Descending: true, Limit: matchesLimit})
		if err != nil {
			return err
		}

		if len(listings) == 0 {
			if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Пока ничего не нашлось")); err != nil {
				return err
			}
			return nil
		}

		cards := lo.Map(listings, func(listing model.Listing, _ int) string {
			return notifier.FormatCard(listing)
		})

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, strings.Join(cards, "\n\n"))
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}
		return nil
	}
}
