package filter

import (
	"fmt"
	"strings"

	"github.com/anikonov/rent-radar/internal/model"
)

// Правила отбора. Все списки и границы приходят снаружи,
// фильтр остается чистой функцией от объявления
type Rules struct {
	// Границы цены в долларах, включительно
	PriceMinUSD float64
	PriceMaxUSD float64
	// Минимум спален. Объявления без явного количества отсеиваются
	MinBedrooms int
	// Районы за пределами города, посуточные поселки и тд
	ExcludedAreas []string
	// Конкретные дома, которые не рассматриваем
	ExcludedBuildings []string
	// Улицы и ориентиры, за каждое совпадение +1 к баллу
	PreferredStreets []string
}

type Filter struct {
	rules Rules
}

func New(rules Rules) *Filter {
	return &Filter{rules: rules}
}

// Прогоняет объявление через предикаты.
// Предикаты конъюнктивные, порядок влияет только на то,
// какая причина отказа будет записана в решение.
// На принятом объявлении поднимает Score за приоритетные улицы.
func (f *Filter) Check(listing *model.Listing, hasPhoto bool) model.Decision {
	if !hasPhoto {
		return reject("no photo")
	}

	// Неопределенный срок не считаем посуточным
	if listing.Term == model.TermDaily {
		return reject("daily rent")
	}

	if place, ok := mentionsAny(listing.Text, f.rules.ExcludedAreas); ok {
		return reject(fmt.Sprintf("excluded area: %s", place))
	}
	if place, ok := mentionsAny(listing.Text, f.rules.ExcludedBuildings); ok {
		return reject(fmt.Sprintf("excluded building: %s", place))
	}

	if listing.Bedrooms == nil {
		return reject("no explicit bedroom count")
	}
	if *listing.Bedrooms < f.rules.MinBedrooms {
		return reject(fmt.Sprintf("bedrooms %d < %d", *listing.Bedrooms, f.rules.MinBedrooms))
	}

	if listing.Price == nil {
		return reject("no price")
	}
	if *listing.Price < f.rules.PriceMinUSD || *listing.Price > f.rules.PriceMaxUSD {
		return reject(fmt.Sprintf("price %.0f out of [%.0f, %.0f]",
			*listing.Price, f.rules.PriceMinUSD, f.rules.PriceMaxUSD))
	}

	listing.Score += f.streetBonus(listing.Text)

	return model.Decision{Keep: true}
}

// +1 за каждую приоритетную улицу, упомянутую в тексте. Потолка нет
func (f *Filter) streetBonus(text string) int {
	s := strings.ToLower(text)

	bonus := 0
	for _, street := range f.rules.PreferredStreets {
		if street != "" && strings.Contains(s, strings.ToLower(street)) {
			bonus++
		}
	}
	return bonus
}

// Проверка на упоминание любого слова из списка, без учета регистра
func mentionsAny(text string, tokens []string) (string, bool) {
	s := strings.ToLower(text)
	for _, token := range tokens {
		if token != "" && strings.Contains(s, strings.ToLower(token)) {
			return token, true
		}
	}
	return "", false
}

func reject(reason string) model.Decision {
	return model.Decision{Keep: false, Reason: reason}
}
