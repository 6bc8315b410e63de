package collector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/tomakado/containers/set"

	"github.com/anikonov/rent-radar/internal/model"
	"github.com/anikonov/rent-radar/internal/source"
)

type ListingStorage interface {
	Add(ctx context.Context, listing model.Listing) error
}

type ChannelProvider interface {
	Channels(ctx context.Context) ([]model.Channel, error)
}

// Интерфейс источника постов
type Source interface {
	ID() int64
	Name() string
	Fetch(ctx context.Context) ([]model.Post, error)
}

type Extractor interface {
	Extract(ctx context.Context, post model.Post) model.Listing
}

type Filter interface {
	Check(listing *model.Listing, hasPhoto bool) model.Decision
}

// Сборщик: обходит источники, гонит каждый пост через экстрактор и фильтр,
// прошедшие объявления складывает в хранилище.
// Пост без фото отбрасывается до экстракции.
type Collector struct {
	listings ListingStorage
	channels ChannelProvider

	extractor Extractor
	filter    Filter

	// Как часто обходить источники
	collectInterval time.Duration
	// Насколько далеко в прошлое смотрим внутри источника
	lookback time.Duration

	// Ссылки, уже обработанные в текущем запуске
	mu   sync.Mutex
	seen set.HashSet[string]
}

func New(
	listingStorage ListingStorage,
	channelProvider ChannelProvider,
	extractor Extractor,
	filter Filter,
	collectInterval time.Duration,
	lookback time.Duration,
) *Collector {
	return &Collector{
		listings:        listingStorage,
		channels:        channelProvider,
		extractor:       extractor,
		filter:          filter,
		collectInterval: collectInterval,
		lookback:        lookback,
		seen:            set.New[string](),
	}
}

// Сборщик работает как самостоятельный воркер
// и по collectInterval обходит все источники
func (c *Collector) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.collectInterval)
	defer ticker.Stop()

	if err := c.Collect(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Collect(ctx); err != nil {
				return err
			}
		}
	}
}

// Один обход. Источники опрашиваются параллельно, чтобы медленный
// или сломанный источник не задерживал остальные.
// Посты внутри источника обрабатываются строго по порядку —
// так порядок записей в таблице повторяет порядок публикаций.
func (c *Collector) Collect(ctx context.Context) error {
	channels, err := c.channels.Channels(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-c.lookback)

	var wg sync.WaitGroup

	for _, ch := range channels {
		wg.Add(1)

		feedSource := source.NewFeedSourceFromModel(ch)

		go func(src Source) {
			defer wg.Done()

			posts, err := src.Fetch(ctx)
			if err != nil {
				log.Printf("[ERROR] fetching posts from source %s: %v", src.Name(), err)
				return
			}

			c.processPosts(ctx, src.Name(), posts, cutoff)
		}(feedSource)
	}

	wg.Wait()

	return nil
}

func (c *Collector) processPosts(ctx context.Context, sourceName string, posts []model.Post, cutoff time.Time) {
	processed, kept := 0, 0

	for _, post := range posts {
		if post.Date.Before(cutoff) {
			continue
		}

		// Посты без фото не доходят даже до экстрактора
		if !post.HasPhoto {
			continue
		}

		if c.alreadySeen(post.Link) {
			continue
		}

		processed++

		wasKept, err := c.Process(ctx, post)
		if err != nil {
			// Один сломанный пост не останавливает обход
			log.Printf("[ERROR] processing post %s/%d: %v", post.Channel, post.MessageID, err)
			continue
		}
		if wasKept {
			kept++
		}
	}

	log.Printf("source %s: processed=%d kept=%d", sourceName, processed, kept)
}

// Обработка одного поста: экстракция, фильтр, запись.
// Сюда же попадают живые посты из апдейтов бота.
// Паника в парсере на кривом тексте гасится и превращается в ошибку поста.
func (c *Collector) Process(ctx context.Context, post model.Post) (kept bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			kept = false
			err = fmt.Errorf("panic while processing: %v", p)
		}
	}()

	if !post.HasPhoto {
		return false, nil
	}

	c.enrichText(&post)

	if strings.TrimSpace(post.Text) == "" {
		return false, nil
	}

	listing := c.extractor.Extract(ctx, post)

	decision := c.filter.Check(&listing, post.HasPhoto)
	if !decision.Keep {
		return false, nil
	}

	if err := c.listings.Add(ctx, listing); err != nil {
		return false, fmt.Errorf("store listing: %w", err)
	}

	return true, nil
}

// Если текста нет совсем, но есть ссылка — пробуем дочитать страницу поста.
// Некоторые зеркала кладут подпись к фото только в html.
// Любая ошибка здесь не страшна, работаем с тем что есть
func (c *Collector) enrichText(post *model.Post) {
	if strings.TrimSpace(post.Text) != "" || post.Link == "" {
		return
	}

	resp, err := http.Get(post.Link)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	doc, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return
	}

	if text := strings.TrimSpace(doc.TextContent); text != "" {
		post.Text = text
	}
}

func (c *Collector) alreadySeen(link string) bool {
	if link == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen.Contains(link) {
		return true
	}
	c.seen.Add(link)
	return false
}
