package source

import (
	"context"
	"strconv"
	"strings"

	"github.com/SlyMarbo/rss"

	"github.com/anikonov/rent-radar/internal/model"
)

// Источник постов поверх RSS зеркала телеграм канала (rsshub и подобные мосты).
// Живые посты приходят отдельно, через апдейты бота, этот источник
// догоняет историю канала.
type FeedSource struct {
	URL         string
	ChannelID   int64
	ChannelName string
}

func NewFeedSourceFromModel(m model.Channel) FeedSource {
	return FeedSource{
		URL:         m.FeedURL,
		ChannelID:   m.ID,
		ChannelName: m.Name,
	}
}

// Забирает ленту и превращает элементы в посты.
// Фото у элемента определяем по вложениям с image типом.
func (s FeedSource) Fetch(ctx context.Context) ([]model.Post, error) {
	feed, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	var posts []model.Post
	for _, item := range feed.Items {
		text := item.Content
		if text == "" {
			text = item.Summary
		}

		var photos []string
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				photos = append(photos, enc.URL)
			}
		}

		posts = append(posts, model.Post{
			Text:      text,
			HasPhoto:  len(photos) > 0,
			Photos:    photos,
			Channel:   s.ChannelName,
			MessageID: messageIDFromLink(item.Link),
			Link:      item.Link,
			Date:      item.Date,
		})
	}

	return posts, nil
}

func (s FeedSource) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	var (
		feedCh = make(chan *rss.Feed)
		errCh  = make(chan error)
	)

	go func() {
		feed, err := rss.Fetch(url)
		if err != nil {
			errCh <- err
			return
		}

		feedCh <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case feed := <-feedCh:
		return feed, nil
	}
}

func (s FeedSource) ID() int64 {
	return s.ChannelID
}

func (s FeedSource) Name() string {
	return s.ChannelName
}

// id сообщения — хвост ссылки вида https://t.me/channel/123
func messageIDFromLink(link string) int64 {
	idx := strings.LastIndex(link, "/")
	if idx < 0 || idx == len(link)-1 {
		return 0
	}

	id, err := strconv.ParseInt(link[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
