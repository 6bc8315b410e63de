package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anikonov/rent-radar/internal/model"
)

type fakeStorage struct {
	added []model.Listing
	err   error
}

func (f *fakeStorage) Add(ctx context.Context, listing model.Listing) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, listing)
	return nil
}

type fakeExtractor struct {
	calls int
	panic bool
}

func (f *fakeExtractor) Extract(ctx context.Context, post model.Post) model.Listing {
	f.calls++
	if f.panic {
		panic("malformed text")
	}

	price := 450.0
	bedrooms := 2
	return model.Listing{
		Price:     &price,
		Bedrooms:  &bedrooms,
		Term:      model.TermMonthly,
		Link:      post.Link,
		Channel:   post.Channel,
		MessageID: post.MessageID,
		Text:      post.Text,
	}
}

type fakeFilter struct {
	calls int
	keep  bool
}

func (f *fakeFilter) Check(listing *model.Listing, hasPhoto bool) model.Decision {
	f.calls++
	if !f.keep {
		return model.Decision{Keep: false, Reason: "rejected"}
	}
	return model.Decision{Keep: true}
}

func post(id int64, text string, hasPhoto bool) model.Post {
	return model.Post{
		Text:      text,
		HasPhoto:  hasPhoto,
		Channel:   "batumi_rent",
		MessageID: id,
		Link:      model.PostLink("batumi_rent", id),
		Date:      time.Now().UTC(),
	}
}

func newTestCollector(storage ListingStorage, extractor Extractor, filter Filter) *Collector {
	return New(storage, nil, extractor, filter, time.Minute, 7*24*time.Hour)
}

// Пост без фото не должен дойти ни до экстрактора, ни до фильтра
func TestProcessSkipsPostsWithoutPhoto(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	kept, err := c.Process(context.Background(), post(1, "2 спальни, $450/мес", false))

	require.NoError(t, err)
	assert.False(t, kept)
	assert.Zero(t, extractor.calls)
	assert.Zero(t, filter.calls)
	assert.Empty(t, storage.added)
}

func TestProcessStoresKeptListing(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	kept, err := c.Process(context.Background(), post(1, "2 спальни, Инасаридзе, $450/мес", true))

	require.NoError(t, err)
	assert.True(t, kept)
	require.Len(t, storage.added, 1)
	assert.Equal(t, int64(1), storage.added[0].MessageID)
}

func TestProcessDropsRejectedListing(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: false}
	)
	c := newTestCollector(storage, extractor, filter)

	kept, err := c.Process(context.Background(), post(1, "студия, посуточно", true))

	require.NoError(t, err)
	assert.False(t, kept)
	assert.Empty(t, storage.added)
}

// Паника на кривом тексте превращается в ошибку поста, а не роняет воркер
func TestProcessRecoversFromPanic(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{panic: true}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	kept, err := c.Process(context.Background(), post(1, strings.Repeat("кривой текст ", 10), true))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.False(t, kept)
	assert.Empty(t, storage.added)
}

// Ошибка на одном посте не останавливает обработку остальных
func TestProcessPostsContinuesAfterFailure(t *testing.T) {
	var (
		storage   = &fakeStorage{err: errors.New("db down")}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	posts := []model.Post{
		post(1, "2 спальни, $450/мес", true),
		post(2, "2 спальни, $460/мес", true),
	}

	cutoff := time.Now().UTC().Add(-time.Hour)
	c.processPosts(context.Background(), "batumi_rent", posts, cutoff)

	assert.Equal(t, 2, extractor.calls, "second post must still be processed")
}

// Записи складываются в порядке прихода постов
func TestProcessPostsKeepsArrivalOrder(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	posts := []model.Post{
		post(10, "первый, 2 спальни, $450", true),
		post(20, "без фото", false),
		post(30, "второй, 2 спальни, $460", true),
	}

	cutoff := time.Now().UTC().Add(-time.Hour)
	c.processPosts(context.Background(), "batumi_rent", posts, cutoff)

	require.Len(t, storage.added, 2)
	assert.Equal(t, int64(10), storage.added[0].MessageID)
	assert.Equal(t, int64(30), storage.added[1].MessageID)
}

// Посты старше окна обхода не обрабатываются
func TestProcessPostsHonorsCutoff(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	old := post(1, "2 спальни, $450/мес", true)
	old.Date = time.Now().UTC().Add(-48 * time.Hour)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	c.processPosts(context.Background(), "batumi_rent", []model.Post{old}, cutoff)

	assert.Zero(t, extractor.calls)
}

// Одну и ту же ссылку в рамках запуска обрабатываем один раз
func TestProcessPostsDedupsByLink(t *testing.T) {
	var (
		storage   = &fakeStorage{}
		extractor = &fakeExtractor{}
		filter    = &fakeFilter{keep: true}
	)
	c := newTestCollector(storage, extractor, filter)

	p := post(1, "2 спальни, $450/мес", true)

	cutoff := time.Now().UTC().Add(-time.Hour)
	c.processPosts(context.Background(), "batumi_rent", []model.Post{p, p}, cutoff)

	assert.Equal(t, 1, extractor.calls)
	assert.Len(t, storage.added, 1)
}
