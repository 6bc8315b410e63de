package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// Поля, которые модель извлекает из текста объявления.
// nil — модель не смогла определить поле.
type Fields struct {
	PriceUSD *float64 `json:"price_usd"`
	Currency string   `json:"price_currency"`
	Bedrooms *int     `json:"bedrooms_count"`
	District *string  `json:"district"`
	Period   string   `json:"period"`
	Contact  *string  `json:"contacts"`
	Link     *string  `json:"link"`
	// Субъективная оценка варианта от 0 до 10
	Score *int `json:"score_10"`
}

// LLM вариант экстрактора поверх openai sdk.
// Если ключ не задан, вариант выключен и Extract сразу возвращает ошибку —
// комбинированный экстрактор уходит в правила.
type OpenAIExtractor struct {
	client    *openai.Client
	model     string
	gelPerUSD float64
	enabled   bool
	mu        sync.Mutex
}

var errDisabled = errors.New("openai extractor disabled")

func NewOpenAIExtractor(apiKey, model string, gelPerUSD float64) *OpenAIExtractor {
	e := &OpenAIExtractor{
		client:    openai.NewClient(apiKey),
		model:     model,
		gelPerUSD: gelPerUSD,
	}

	log.Printf("openai extractor enabled: %v", apiKey != "")

	if apiKey != "" {
		e.enabled = true
	}

	return e
}

func (e *OpenAIExtractor) Enabled() bool {
	return e.enabled
}

func (e *OpenAIExtractor) Extract(ctx context.Context, text string) (*Fields, error) {
	// Конкурентный доступ к клиенту может преподносить сюрпризы
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		return nil, errDisabled
	}

	request := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Ты детерминированный экстрактор JSON. Отдавай ровно ОДИН minified JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text),
			},
		},
		MaxTokens:   256,
		Temperature: 0,
		TopP:        1,
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	// Модель иногда оборачивает ответ в markdown или добавляет текст вокруг,
	// поэтому вырезаем первый сбалансированный json объект
	blob, ok := firstJSONObject(content)
	if !ok {
		blob = content
	}

	var fields Fields
	if err := json.Unmarshal([]byte(blob), &fields); err != nil {
		return nil, fmt.Errorf("parse llm response: %w", err)
	}

	// Цену в лари пересчитываем так же, как это делают правила
	if fields.PriceUSD != nil && strings.EqualFold(fields.Currency, "GEL") {
		usd := round2(*fields.PriceUSD / e.gelPerUSD)
		fields.PriceUSD = &usd
	}

	return &fields, nil
}

func buildPrompt(text string) string {
	// Ограничиваем текст, длинные посты режем — схема от этого не страдает
	if len(text) > 6000 {
		text = text[:6000]
	}

	return fmt.Sprintf(`Извлеки поля объявления о долгосрочной аренде квартиры. Выведи ОДИН однострочный minified JSON с ТОЧНО такими ключами:
{"price_usd":null,"price_currency":"USD","bedrooms_count":null,"district":null,"period":"unknown","contacts":null,"link":null,"score_10":0}
Правила: period одно из "month"/"day"/"unknown". bedrooms_count — количество ОТДЕЛЬНЫХ спален: студия=0, "1+1"=1, "2 спальни"/"two bedrooms"=2. score_10 — качество варианта от 0 до 10. Не определил поле — оставь null. Выведи только JSON.
Текст:
%s`, text)
}

// Первый сбалансированный объект в фигурных скобках
func firstJSONObject(s string) (string, bool) {
	depth := 0
	start := -1

	for i, ch := range s {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
