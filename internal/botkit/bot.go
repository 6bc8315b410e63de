package botkit

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anikonov/rent-radar/internal/model"
)

// Функция-обработчик команды бота
type ViewFunc func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error

// Обработчик живого поста из канала, куда добавлен бот
type ChannelPostFunc func(ctx context.Context, post model.Post)

type Bot struct {
	api *tgbotapi.BotAPI
	// Зарегистрированные обработчики команд
	cmdViews map[string]ViewFunc
	// Обработчик постов из каналов
	onChannelPost ChannelPostFunc
}

func New(api *tgbotapi.BotAPI) *Bot {
	return &Bot{
		api: api,
	}
}

func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	if b.cmdViews == nil {
		b.cmdViews = make(map[string]ViewFunc)
	}

	b.cmdViews[cmd] = view
}

// Посты из каналов пойдут в переданный обработчик.
// Так живые объявления попадают в тот же конвейер, что и посты из зеркал
func (b *Bot) RegisterChannelPostHandler(fn ChannelPostFunc) {
	b.onChannelPost = fn
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, 30*time.Second)
			b.handleUpdate(updateCtx, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Вьюха или парсер могут паникнуть на кривом апдейте, перехватываем
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered: %v\n%s", p, string(debug.Stack()))
		}
	}()

	// Пост в канале — отдаем в конвейер сборщика
	if update.ChannelPost != nil {
		if b.onChannelPost != nil {
			b.onChannelPost(ctx, postFromMessage(update.ChannelPost))
		}
		return
	}

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, b.api, update); err != nil {
		log.Printf("[ERROR] failed to handle update: %v", err)

		if _, err := b.api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			log.Printf("[ERROR] failed to send message: %v", err)
		}
	}
}

// Сообщение телеграма в наш пост.
// Фото определяем по вложениям, ссылку собираем из username канала
func postFromMessage(msg *tgbotapi.Message) model.Post {
	var photos []string
	for _, photo := range msg.Photo {
		photos = append(photos, photo.FileID)
	}

	channel := msg.Chat.Title
	if msg.Chat.UserName != "" {
		channel = msg.Chat.UserName
	}

	var link string
	if msg.Chat.UserName != "" {
		link = model.PostLink(msg.Chat.UserName, int64(msg.MessageID))
	}

	text := msg.Text
	if text == "" {
		// У постов с фото текст лежит в подписи
		text = msg.Caption
	}

	return model.Post{
		Text:      text,
		HasPhoto:  len(photos) > 0,
		Photos:    photos,
		Channel:   channel,
		MessageID: int64(msg.MessageID),
		Link:      link,
		Date:      time.Unix(int64(msg.Date), 0).UTC(),
	}
}

// Разбор аргументов команды из json
func ParseJSON[T any](src string) (T, error) {
	var args T
	if err := json.Unmarshal([]byte(src), &args); err != nil {
		return args, err
	}

	return args, nil
}
