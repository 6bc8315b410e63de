package extractor

import (
	"context"
	"log"

	"github.com/anikonov/rent-radar/internal/model"
)

// Интерфейс LLM варианта. Имплементация может быть выключена,
// тогда Extract возвращает ошибку и мы остаемся на правилах.
type LLM interface {
	Extract(ctx context.Context, text string) (*Fields, error)
	Enabled() bool
}

// Комбинированный экстрактор: правила отрабатывают всегда,
// LLM при наличии уточняет поля. Падение LLM — не ошибка,
// для этого поста просто остаются поля из правил.
type Extractor struct {
	llm   LLM
	rules *RuleExtractor
}

func New(llm LLM, rules *RuleExtractor) *Extractor {
	return &Extractor{
		llm:   llm,
		rules: rules,
	}
}

// Пост с фото превращается в нормализованное объявление.
// Детерминирован для одного и того же поста при одинаковой доступности LLM.
func (e *Extractor) Extract(ctx context.Context, post model.Post) model.Listing {
	listing := e.rules.Extract(post)
	// База оценки до бонусов фильтра
	listing.Score = 5

	if e.llm == nil || !e.llm.Enabled() {
		return listing
	}

	fields, err := e.llm.Extract(ctx, post.Text)
	if err != nil {
		// Недоступность или мусорный ответ модели гасим на месте
		log.Printf("llm extract skipped for %s/%d: %v", post.Channel, post.MessageID, err)
		return listing
	}

	return merge(listing, fields)
}

// Поля, которые модель определила, перекрывают результат правил.
// Цена из правил остается как фолбек, если модель ее не дала.
func merge(listing model.Listing, fields *Fields) model.Listing {
	if fields == nil {
		return listing
	}

	if fields.PriceUSD != nil {
		listing.Price = fields.PriceUSD
		if fields.Currency != "" {
			listing.Currency = fields.Currency
		}
	}

	if fields.Bedrooms != nil {
		listing.Bedrooms = fields.Bedrooms
	}

	if fields.District != nil && *fields.District != "" {
		listing.District = fields.District
	}

	switch fields.Period {
	case "month":
		listing.Term = model.TermMonthly
	case "day":
		listing.Term = model.TermDaily
	}

	if fields.Contact != nil && *fields.Contact != "" {
		listing.Contact = fields.Contact
	}

	if fields.Score != nil {
		listing.Score = *fields.Score
	}

	return listing
}
