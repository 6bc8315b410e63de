package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anikonov/rent-radar/internal/model"
)

func testRules() Rules {
	return Rules{
		PriceMinUSD:       400,
		PriceMaxUSD:       500,
		MinBedrooms:       2,
		ExcludedAreas:     []string{"гонио", "gonio", "кобулети", "сарпи"},
		ExcludedBuildings: []string{"magnolia", "магнолия"},
		PreferredStreets:  []string{"инасаридзе", "inasaridze", "кобаладзе"},
	}
}

func ptr[T any](v T) *T { return &v }

func listing(text string, price *float64, bedrooms *int, term model.Term) model.Listing {
	return model.Listing{
		Price:    price,
		Bedrooms: bedrooms,
		Term:     term,
		Text:     text,
		Score:    5,
	}
}

// Сценарий: "2 спальни, Инасаридзе, $450/мес" с фото — принимаем,
// за приоритетную улицу идет бонус к баллу
func TestCheckKeepsMatchingListing(t *testing.T) {
	f := New(testRules())

	l := listing("2 спальни, Инасаридзе, $450/мес", ptr(450.0), ptr(2), model.TermMonthly)
	decision := f.Check(&l, true)

	assert.True(t, decision.Keep)
	assert.Empty(t, decision.Reason)
	assert.GreaterOrEqual(t, l.Score, 6, "preferred street bonus expected")
}

// Сценарий: студия в Гонио посуточно — отваливается на первом же
// непрошедшем предикате
func TestCheckRejectsDailyStudioOutsideCity(t *testing.T) {
	f := New(testRules())

	l := listing("Студия в Гонио, $300, посуточно", ptr(300.0), ptr(0), model.TermDaily)
	decision := f.Check(&l, true)

	assert.False(t, decision.Keep)
	assert.Equal(t, "daily rent", decision.Reason, "term predicate goes first")
}

// Сценарий: пост без фото не проходит независимо от остальных полей
func TestCheckRejectsWithoutPhoto(t *testing.T) {
	f := New(testRules())

	l := listing("2 спальни, $450/мес", ptr(450.0), ptr(2), model.TermMonthly)
	decision := f.Check(&l, false)

	assert.False(t, decision.Keep)
	assert.Equal(t, "no photo", decision.Reason)
}

// Сценарий: упоминание исключенного дома режет даже подходящий вариант
func TestCheckRejectsExcludedBuilding(t *testing.T) {
	f := New(testRules())

	l := listing("2 спальни в Magnolia, $450/мес", ptr(450.0), ptr(2), model.TermMonthly)
	decision := f.Check(&l, true)

	assert.False(t, decision.Keep)
	assert.Contains(t, decision.Reason, "excluded building")
}

func TestCheckPredicates(t *testing.T) {
	f := New(testRules())

	tests := []struct {
		name    string
		listing model.Listing
		keep    bool
		reason  string
	}{
		{
			name:    "unknown term passes as non-daily",
			listing: listing("2 спальни, $450", ptr(450.0), ptr(2), model.TermUnknown),
			keep:    true,
		},
		{
			name:    "no explicit bedrooms rejects",
			listing: listing("хорошая квартира, $450", ptr(450.0), nil, model.TermMonthly),
			keep:    false,
			reason:  "no explicit bedroom count",
		},
		{
			name:    "one bedroom rejects",
			listing: listing("1+1, $450", ptr(450.0), ptr(1), model.TermMonthly),
			keep:    false,
			reason:  "bedrooms 1 < 2",
		},
		{
			name:    "no price rejects",
			listing: listing("2 спальни", nil, ptr(2), model.TermMonthly),
			keep:    false,
			reason:  "no price",
		},
		{
			name:    "price below range rejects",
			listing: listing("2 спальни, $350", ptr(350.0), ptr(2), model.TermMonthly),
			keep:    false,
			reason:  "price 350 out of [400, 500]",
		},
		{
			name:    "price above range rejects",
			listing: listing("2 спальни, $600", ptr(600.0), ptr(2), model.TermMonthly),
			keep:    false,
			reason:  "price 600 out of [400, 500]",
		},
		{
			name:    "price bounds inclusive",
			listing: listing("2 спальни, $400", ptr(400.0), ptr(2), model.TermMonthly),
			keep:    true,
		},
		{
			name:    "excluded area rejects",
			listing: listing("2 спальни в Кобулети, $450", ptr(450.0), ptr(2), model.TermMonthly),
			keep:    false,
			reason:  "excluded area: кобулети",
		},
		{
			name:    "three bedrooms pass",
			listing: listing("трёхкомнатная, $500", ptr(500.0), ptr(3), model.TermMonthly),
			keep:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.listing
			decision := f.Check(&l, true)

			assert.Equal(t, tt.keep, decision.Keep)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, decision.Reason)
			}
		})
	}
}

// +1 за каждую упомянутую приоритетную улицу, без потолка
func TestStreetBonusAdditive(t *testing.T) {
	f := New(testRules())

	l := listing("2 спальни, угол Инасаридзе и Кобаладзе, $450/мес", ptr(450.0), ptr(2), model.TermMonthly)
	decision := f.Check(&l, true)

	assert.True(t, decision.Keep)
	assert.Equal(t, 7, l.Score, "base 5 + two streets")
}

// Отклоненное объявление балл не трогаем
func TestRejectedListingScoreUntouched(t *testing.T) {
	f := New(testRules())

	l := listing("посуточно на Инасаридзе, $450", ptr(450.0), ptr(2), model.TermDaily)
	_ = f.Check(&l, true)

	assert.Equal(t, 5, l.Score)
}
