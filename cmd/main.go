package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/anikonov/rent-radar/internal/bot"
	"github.com/anikonov/rent-radar/internal/bot/middleware"
	"github.com/anikonov/rent-radar/internal/botkit"
	"github.com/anikonov/rent-radar/internal/collector"
	"github.com/anikonov/rent-radar/internal/config"
	"github.com/anikonov/rent-radar/internal/extractor"
	"github.com/anikonov/rent-radar/internal/filter"
	"github.com/anikonov/rent-radar/internal/model"
	"github.com/anikonov/rent-radar/internal/notifier"
	"github.com/anikonov/rent-radar/internal/review"
	"github.com/anikonov/rent-radar/internal/storage"
)

func main() {
	cfg := config.Get()

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("failed to create bot: %v", err)
		return
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Printf("failed to migrate database: %v", err)
		return
	}

	// Район и улицы, которые экстрактор умеет узнавать в тексте
	knownPlaces := append(append(
		append([]string{}, cfg.PreferredStreets...),
		cfg.ExcludedAreas...),
		cfg.ExcludedBuildings...,
	)

	var (
		listingStorage = storage.NewListingPostgresStorage(db)
		channelStorage = storage.NewChannelPostgresStorage(db)

		rentExtractor = extractor.New(
			extractor.NewOpenAIExtractor(cfg.OpenAIKey, cfg.OpenAIModel, cfg.GelPerUSD),
			extractor.NewRuleExtractor(cfg.GelPerUSD, knownPlaces),
		)
		rentFilter = filter.New(filter.Rules{
			PriceMinUSD:       cfg.PriceMinUSD,
			PriceMaxUSD:       cfg.PriceMaxUSD,
			MinBedrooms:       cfg.MinBedrooms,
			ExcludedAreas:     cfg.ExcludedAreas,
			ExcludedBuildings: cfg.ExcludedBuildings,
			PreferredStreets:  cfg.PreferredStreets,
		})

		rentCollector = collector.New(
			listingStorage,
			channelStorage,
			rentExtractor,
			rentFilter,
			cfg.CollectInterval,
			// Период, дальше которого посты из источников не смотрим
			time.Duration(cfg.LookbackDays)*24*time.Hour,
		)
		rentNotifier = notifier.New(
			listingStorage,
			botAPI,
			cfg.NotifyInterval,
			// Окно, в котором ищем еще не отправленные находки
			2*cfg.CollectInterval,
			cfg.TelegramChannelID,
		)
		reviewServer = review.NewServer(listingStorage, cfg.HTTPListenAddr)
	)

	rentBot := botkit.New(botAPI)
	rentBot.RegisterCmdView("start", bot.ViewCmdStart())
	rentBot.RegisterCmdView(
		"addchannel",
		middleware.AdminOnly(cfg.TelegramChannelID, bot.ViewCmdAddChannel(channelStorage)),
	)
	rentBot.RegisterCmdView("listchannels", bot.ViewCmdListChannels(channelStorage))
	rentBot.RegisterCmdView(
		"removechannel",
		middleware.AdminOnly(cfg.TelegramChannelID, bot.ViewCmdRemoveChannel(channelStorage)),
	)
	rentBot.RegisterCmdView("matches", bot.ViewCmdMatches(listingStorage))

	// Живые посты из каналов идут в тот же конвейер, что и посты из зеркал
	rentBot.RegisterChannelPostHandler(func(ctx context.Context, post model.Post) {
		if !post.HasPhoto {
			return
		}
		if _, err := rentCollector.Process(ctx, post); err != nil {
			log.Printf("[ERROR] processing channel post %s/%d: %v", post.Channel, post.MessageID, err)
		}
	})

	// Воркер сборщика
	go func(ctx context.Context) {
		if err := rentCollector.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start collector: %v", err)
				return
			}

			log.Println("collector stopped")
		}
	}(ctx)

	// Воркер нотифаера
	go func(ctx context.Context) {
		if err := rentNotifier.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start notifier: %v", err)
				return
			}

			log.Println("notifier stopped")
		}
	}(ctx)

	// HTTP интерфейс ревью
	if cfg.HTTPListenAddr != "" {
		go func(ctx context.Context) {
			if err := reviewServer.Start(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("[ERROR] failed to start review server: %v", err)
					return
				}

				log.Println("review server stopped")
			}
		}(ctx)
	}

	if err := rentBot.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to start bot: %v", err)
			return
		}

		log.Println("bot stopped")
	}
}
