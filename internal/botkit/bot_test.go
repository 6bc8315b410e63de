package botkit

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostFromMessage(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 42,
		Date:      1714560000,
		Caption:   "2 спальни, $450/мес",
		Photo:     []tgbotapi.PhotoSize{{FileID: "photo-1"}},
		Chat: &tgbotapi.Chat{
			Title:    "Аренда Батуми",
			UserName: "batumi_rent",
		},
	}

	post := postFromMessage(msg)

	assert.True(t, post.HasPhoto)
	assert.Equal(t, []string{"photo-1"}, post.Photos)
	assert.Equal(t, "2 спальни, $450/мес", post.Text, "caption is the post text")
	assert.Equal(t, "batumi_rent", post.Channel)
	assert.Equal(t, int64(42), post.MessageID)
	assert.Equal(t, "https://t.me/batumi_rent/42", post.Link)
}

func TestPostFromMessageWithoutPhoto(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 7,
		Text:      "объявление без фото",
		Chat:      &tgbotapi.Chat{Title: "Аренда Батуми"},
	}

	post := postFromMessage(msg)

	assert.False(t, post.HasPhoto)
	assert.Empty(t, post.Link, "private channel has no public link")
	assert.Equal(t, "Аренда Батуми", post.Channel)
}

func TestParseJSON(t *testing.T) {
	type args struct {
		Name    string `json:"name"`
		FeedURL string `json:"feed_url"`
	}

	parsed, err := ParseJSON[args](`{"name": "batumi_rent", "feed_url": "https://rsshub.app/telegram/channel/batumi_rent"}`)
	require.NoError(t, err)
	assert.Equal(t, "batumi_rent", parsed.Name)

	_, err = ParseJSON[args](`не json`)
	assert.Error(t, err)
}
