package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anikonov/rent-radar/internal/botkit/markup"
	"github.com/anikonov/rent-radar/internal/model"
)

type ListingProvider interface {
	AllNotNotified(ctx context.Context, since time.Time, limit uint64) ([]model.Listing, error)
	MarkNotified(ctx context.Context, id int64) error
}

// Нотифаер забирает еще не отправленные находки
// и постит их карточками в канал ревью
type Notifier struct {
	listings ListingProvider
	bot      *tgbotapi.BotAPI
	// Как часто проверять новые находки
	sendInterval time.Duration
	// Насколько далеко в прошлое заглядывать за неотправленными
	lookupTimeWindow time.Duration
	// Канал ревью
	channelID int64
}

func New(
	listingProvider ListingProvider,
	bot *tgbotapi.BotAPI,
	sendInterval time.Duration,
	lookupTimeWindow time.Duration,
	channelID int64,
) *Notifier {
	return &Notifier{
		listings:         listingProvider,
		bot:              bot,
		sendInterval:     sendInterval,
		lookupTimeWindow: lookupTimeWindow,
		channelID:        channelID,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	ticker := time.NewTicker(n.sendInterval)
	defer ticker.Stop()

	if err := n.SelectAndSendListing(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ticker.C:
			if err := n.SelectAndSendListing(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Берем одну самую старую неотправленную находку и шлем ее в канал.
// По одной за тик, чтобы не заспамить канал после большого обхода
func (n *Notifier) SelectAndSendListing(ctx context.Context) error {
	listings, err := n.listings.AllNotNotified(ctx, time.Now().Add(-n.lookupTimeWindow), 1)
	if err != nil {
		return err
	}

	if len(listings) == 0 {
		return nil
	}

	listing := listings[0]

	if err := n.sendListing(listing); err != nil {
		return err
	}

	return n.listings.MarkNotified(ctx, listing.ID)
}

func (n *Notifier) sendListing(listing model.Listing) error {
	msg := tgbotapi.NewMessage(n.channelID, FormatCard(listing))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := n.bot.Send(msg)
	if err != nil {
		return err
	}
	return nil
}

// Карточка находки для канала ревью
func FormatCard(listing model.Listing) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*%s* · балл %d\n", markup.Escape(listing.Channel), listing.Score))

	if listing.Price != nil {
		b.WriteString(markup.Escape(fmt.Sprintf("💵 $%.0f/мес\n", *listing.Price)))
	}
	if listing.Bedrooms != nil {
		b.WriteString(markup.Escape(fmt.Sprintf("🛏 спален: %d\n", *listing.Bedrooms)))
	}
	if listing.District != nil {
		b.WriteString(markup.Escape(fmt.Sprintf("📍 %s\n", *listing.District)))
	}
	if listing.Contact != nil {
		b.WriteString(markup.Escape(fmt.Sprintf("📞 %s\n", *listing.Contact)))
	}
	if listing.Link != "" {
		b.WriteString(markup.Escape(listing.Link))
	}

	return b.String()
}
