package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/anikonov/rent-radar/internal/model"
)

// Хранилище каналов в постгресе
type ChannelPostgresStorage struct {
	db *sqlx.DB
}

func NewChannelPostgresStorage(db *sqlx.DB) *ChannelPostgresStorage {
	return &ChannelPostgresStorage{db: db}
}

// Список каналов, которые мониторим
func (s *ChannelPostgresStorage) Channels(ctx context.Context) ([]model.Channel, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var channels []dbChannel
	if err := conn.SelectContext(ctx, &channels, `SELECT * FROM channels ORDER BY id`); err != nil {
		return nil, err
	}

	return lo.Map(channels, func(channel dbChannel, _ int) model.Channel {
		return model.Channel(channel)
	}), nil
}

func (s *ChannelPostgresStorage) ChannelByID(ctx context.Context, id int64) (*model.Channel, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var channel dbChannel
	if err := conn.GetContext(ctx, &channel, `SELECT * FROM channels WHERE id = $1`, id); err != nil {
		return nil, err
	}

	return (*model.Channel)(&channel), nil
}

func (s *ChannelPostgresStorage) Add(ctx context.Context, channel model.Channel) (int64, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var id int64

	row := conn.QueryRowxContext(
		ctx,
		`INSERT INTO channels (name, feed_url, created_at) VALUES ($1, $2, $3) RETURNING id`,
		channel.Name,
		channel.FeedURL,
		channel.CreatedAt,
	)

	if err := row.Err(); err != nil {
		return 0, err
	}

	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (s *ChannelPostgresStorage) Delete(ctx context.Context, id int64) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}

// Внутренняя модель для маппинга на колонки таблицы
type dbChannel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	FeedURL   string    `db:"feed_url"`
	CreatedAt time.Time `db:"created_at"`
}
