package model

import (
	"fmt"
	"time"
)

// Срок аренды, который удалось определить из текста объявления
type Term string

const (
	TermMonthly Term = "monthly"
	TermDaily   Term = "daily"
	TermUnknown Term = "unknown"
)

// Сырой пост из телеграм канала (или его RSS зеркала)
type Post struct {
	// Текст объявления как есть
	Text string
	// Есть ли у поста фото. Посты без фото не обрабатываем вообще
	HasPhoto bool
	// Ссылки на фотографии, сами файлы не скачиваем
	Photos []string
	// Имя канала откуда пришел пост
	Channel string
	// id сообщения внутри канала
	MessageID int64
	// Ссылка вида https://t.me/<канал>/<id>, может быть пустой
	Link string
	// Дата публикации в канале
	Date time.Time
}

// Модель канала который мы мониторим
type Channel struct {
	ID int64
	// Имя
	Name string
	// RSS зеркало канала, откуда забираем историю постов
	FeedURL string
	// Время добавления
	CreatedAt time.Time
}

// Нормализованное объявление, извлеченное из поста.
// Поля, которые не удалось определить, остаются nil,
// никаких значений по умолчанию — фильтр сам решает что делать с пропусками.
type Listing struct {
	ID int64
	// Цена в долларах за месяц
	Price *float64
	// Валюта, в которой цена была указана в тексте
	Currency string
	// Количество спален
	Bedrooms *int
	// Район или улица
	District *string
	// Срок аренды
	Term Term
	// Контакт из текста (обычно телефон)
	Contact   *string
	Link      string
	Channel   string
	MessageID int64
	// Исходный текст объявления
	Text string
	// Приоритетный балл, проставляется фильтром при принятии
	Score int
	// Время публикации поста в канале
	PublishedAt time.Time
	// Время отправки в канал ревью
	NotifiedAt time.Time
	// Время создания записи
	CreatedAt time.Time
}

// Ссылка на пост в публичном канале
func PostLink(username string, messageID int64) string {
	return fmt.Sprintf("https://t.me/%s/%d", username, messageID)
}

// Результат проверки объявления фильтром.
// Живет только внутри одной проверки, никуда не сохраняется.
type Decision struct {
	Keep bool
	// Первый непрошедший предикат, пустая строка если Keep
	Reason string
}
