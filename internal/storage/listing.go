package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/anikonov/rent-radar/internal/model"
)

// Хранилище найденных объявлений. Таблица append-only:
// записи добавляются в порядке обработки и не меняются,
// исключение — отметка об отправке в канал ревью.
type ListingPostgresStorage struct {
	db *sqlx.DB
}

func NewListingPostgresStorage(db *sqlx.DB) *ListingPostgresStorage {
	return &ListingPostgresStorage{db: db}
}

// Параметры выборки для ревью. Нулевые значения — без ограничения
type ListingQuery struct {
	MinPrice *float64
	MaxPrice *float64
	MinScore *int
	MaxScore *int
	// Регулярка по тексту объявления, без учета регистра
	TextRegex string
	// Только записи со ссылкой на пост
	OnlyWithLink bool
	// Сначала свежие, по умолчанию порядок добавления
	Descending bool
	Limit      uint64
}

// Повторный пост с той же ссылкой не создает дубликата
func (s *ListingPostgresStorage) Add(ctx context.Context, listing model.Listing) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx,
		`INSERT INTO listings (
			price_usd, currency, bedrooms, district, term, contact,
			link, channel, message_id, text, score, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (link) WHERE link <> '' DO NOTHING`,
		listing.Price,
		listing.Currency,
		listing.Bedrooms,
		listing.District,
		string(listing.Term),
		listing.Contact,
		listing.Link,
		listing.Channel,
		listing.MessageID,
		listing.Text,
		listing.Score,
		listing.PublishedAt,
	)

	return err
}

// Выборка для таблицы ревью, в порядке добавления
func (s *ListingPostgresStorage) All(ctx context.Context, query ListingQuery) ([]model.Listing, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	where, args := buildWhere(query)

	order := "ORDER BY id"
	if query.Descending {
		order = "ORDER BY id DESC"
	}

	q := fmt.Sprintf(`SELECT * FROM listings %s %s`, where, order)
	if query.Limit > 0 {
		args = append(args, query.Limit)
		q = fmt.Sprintf("%s LIMIT $%d", q, len(args))
	}

	var listings []dbListing
	if err := conn.SelectContext(ctx, &listings, q, args...); err != nil {
		return nil, err
	}

	return lo.Map(listings, func(listing dbListing, _ int) model.Listing {
		return listing.toModel()
	}), nil
}

// Объявления, которые еще не уходили в канал ревью
func (s *ListingPostgresStorage) AllNotNotified(ctx context.Context, since time.Time, limit uint64) ([]model.Listing, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var listings []dbListing
	if err := conn.SelectContext(
		ctx,
		&listings,
		`SELECT * FROM listings
		 WHERE notified_at IS NULL AND created_at >= $1
		 ORDER BY id LIMIT $2`,
		since.UTC(),
		limit,
	); err != nil {
		return nil, err
	}

	return lo.Map(listings, func(listing dbListing, _ int) model.Listing {
		return listing.toModel()
	}), nil
}

func (s *ListingPostgresStorage) MarkNotified(ctx context.Context, id int64) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(
		ctx,
		`UPDATE listings SET notified_at = $1 WHERE id = $2`,
		time.Now().UTC(),
		id,
	); err != nil {
		return err
	}

	return nil
}

func buildWhere(query ListingQuery) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if query.MinPrice != nil {
		add("price_usd >= $%d", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		add("price_usd <= $%d", *query.MaxPrice)
	}
	if query.MinScore != nil {
		add("score >= $%d", *query.MinScore)
	}
	if query.MaxScore != nil {
		add("score <= $%d", *query.MaxScore)
	}
	if query.TextRegex != "" {
		add("text ~* $%d", query.TextRegex)
	}
	if query.OnlyWithLink {
		conds = append(conds, "link <> ''")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Внутренняя модель для маппинга на колонки таблицы
type dbListing struct {
	ID          int64           `db:"id"`
	PriceUSD    sql.NullFloat64 `db:"price_usd"`
	Currency    string          `db:"currency"`
	Bedrooms    sql.NullInt64   `db:"bedrooms"`
	District    sql.NullString  `db:"district"`
	Term        string          `db:"term"`
	Contact     sql.NullString  `db:"contact"`
	Link        string          `db:"link"`
	Channel     string          `db:"channel"`
	MessageID   int64           `db:"message_id"`
	Text        string          `db:"text"`
	Score       int             `db:"score"`
	PublishedAt time.Time       `db:"published_at"`
	NotifiedAt  sql.NullTime    `db:"notified_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (l dbListing) toModel() model.Listing {
	listing := model.Listing{
		ID:          l.ID,
		Currency:    l.Currency,
		Term:        model.Term(l.Term),
		Link:        l.Link,
		Channel:     l.Channel,
		MessageID:   l.MessageID,
		Text:        l.Text,
		Score:       l.Score,
		PublishedAt: l.PublishedAt,
		CreatedAt:   l.CreatedAt,
	}

	if l.PriceUSD.Valid {
		price := l.PriceUSD.Float64
		listing.Price = &price
	}
	if l.Bedrooms.Valid {
		bedrooms := int(l.Bedrooms.Int64)
		listing.Bedrooms = &bedrooms
	}
	if l.District.Valid {
		district := l.District.String
		listing.District = &district
	}
	if l.Contact.Valid {
		contact := l.Contact.String
		listing.Contact = &contact
	}
	if l.NotifiedAt.Valid {
		listing.NotifiedAt = l.NotifiedAt.Time
	}

	return listing
}
