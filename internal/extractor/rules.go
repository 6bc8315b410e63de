package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/anikonov/rent-radar/internal/model"
)

// Цифры-эмодзи, которыми любят писать цены в каналах
var emojiDigits = strings.NewReplacer(
	"0️⃣", "0",
	"1️⃣", "1",
	"2️⃣", "2",
	"3️⃣", "3",
	"4️⃣", "4",
	"5️⃣", "5",
	"6️⃣", "6",
	"7️⃣", "7",
	"8️⃣", "8",
	"9️⃣", "9",
)

var currencyEmoji = strings.NewReplacer(
	"💵", " $ ",
	"💲", " $ ",
	"₾", " GEL ",
)

var (
	// Цена: число перед знаком валюты ("450 $", "1200 gel") или сразу после него ("$450")
	priceUSDSuffixRe = regexp.MustCompile(`(?i)(\d[\d \x{00a0}]{0,6}(?:[.,]\d{1,2})?)\s*(?:\$|usd|долл)`)
	priceUSDPrefixRe = regexp.MustCompile(`(?i)(?:\$|usd)\s*(\d[\d \x{00a0}]{0,6}(?:[.,]\d{1,2})?)`)
	priceGELRe       = regexp.MustCompile(`(?i)(\d[\d \x{00a0}]{0,6}(?:[.,]\d{1,2})?)\s*(?:gel|lari|лари|ლარი)`)

	// Спальни. "двуспальная кровать" — это про мебель, не про комнаты.
	// Осторожно с \b: в RE2 он только про ascii, рядом с кириллицей не работает
	threeRoomRe = regexp.MustCompile(`(?i)(тр[её]хкомнат|3[\s-]?комнат|(?:^|\s)3-?к(?:\s|$)|\b3\s*rooms?\b|\b3\s*br\b|\b3\s*bed(?:room)?s?\b)`)
	twoBedRe    = regexp.MustCompile(`(?i)(\b2\s*спальн|две\s*спальн|\b2\s*bed(?:room)?s?\b|\btwo\s*bed(?:room)?s?\b)`)
	doubleBedRe = regexp.MustCompile(`(?i)двуспальн\S*\s+кроват`)
	studioRe    = regexp.MustCompile(`(?i)(студия|студию|\bstudio\b)`)

	dailyRe   = regexp.MustCompile(`(?i)(сутк|посуточ|per\s*day|\bdaily\b|ноч[ьи]|за\s*день)`)
	monthlyRe = regexp.MustCompile(`(?i)(месяц|ежемесяч|(?:^|\s)мес(?:\s|$)|\bmonth|долгосроч|длительн)`)

	// Грузинские мобильные, с кодом страны и без
	phoneRe = regexp.MustCompile(`(?:\+?995[\s-]?)?5\d{2}[\s-]?\d{2}[\s-]?\d{2}[\s-]?\d{2}`)

	digitJoinRe  = regexp.MustCompile(`(\d)\s*[x+х×•]\s*(\d)`)
	junkRe       = regexp.MustCompile(`[^\p{L}\p{N}+#\s-]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// Экстрактор на правилах. Работает всегда, в отличие от LLM варианта,
// и служит для него фолбеком.
type RuleExtractor struct {
	// Курс лари, цены в GEL пересчитываем в доллары
	gelPerUSD float64
	// Известные районы, улицы и дома — по ним определяем локацию объявления
	places []string
}

func NewRuleExtractor(gelPerUSD float64, places []string) *RuleExtractor {
	if gelPerUSD <= 0 {
		gelPerUSD = 2.7
	}
	return &RuleExtractor{
		gelPerUSD: gelPerUSD,
		places:    places,
	}
}

// Извлекает поля объявления из текста поста.
// Что не удалось распознать — остается nil, ничего не выдумываем.
func (r *RuleExtractor) Extract(post model.Post) model.Listing {
	text := post.Text

	listing := model.Listing{
		Currency:    "USD",
		Term:        detectTerm(text),
		Link:        post.Link,
		Channel:     post.Channel,
		MessageID:   post.MessageID,
		Text:        text,
		PublishedAt: post.Date,
	}

	if price, currency, ok := r.extractPrice(text); ok {
		listing.Price = &price
		listing.Currency = currency
	}

	if bedrooms, ok := extractBedrooms(text); ok {
		listing.Bedrooms = &bedrooms
	}

	if place, ok := r.detectPlace(text); ok {
		listing.District = &place
	}

	if phone := phoneRe.FindString(text); phone != "" {
		contact := phone
		listing.Contact = &contact
	}

	return listing
}

// Цена в долларах. Цены в лари пересчитываем по курсу,
// валюту исходника сохраняем в ответе.
func (r *RuleExtractor) extractPrice(text string) (usd float64, currency string, ok bool) {
	t := normalizeCurrency(text)

	for _, re := range []*regexp.Regexp{priceUSDSuffixRe, priceUSDPrefixRe} {
		if m := re.FindStringSubmatch(t); m != nil {
			if v, err := parseAmount(m[1]); err == nil && v > 0 {
				return v, "USD", true
			}
		}
	}

	if m := priceGELRe.FindStringSubmatch(t); m != nil {
		if v, err := parseAmount(m[1]); err == nil && v > 0 {
			return round2(v / r.gelPerUSD), "GEL", true
		}
	}

	return 0, "", false
}

// Количество спален.
// Порядок важен: явные "3 комнаты"/"2 спальни" сильнее, чем студия или "1+1".
func extractBedrooms(text string) (int, bool) {
	s := normalizeText(text)

	if threeRoomRe.MatchString(s) {
		return 3, true
	}
	if twoBedRe.MatchString(s) && !doubleBedRe.MatchString(s) {
		return 2, true
	}
	if strings.Contains(s, "1+1") {
		return 1, true
	}
	if studioRe.MatchString(s) {
		return 0, true
	}

	return 0, false
}

func detectTerm(text string) model.Term {
	s := normalizeText(text)
	switch {
	case dailyRe.MatchString(s):
		return model.TermDaily
	case monthlyRe.MatchString(s):
		return model.TermMonthly
	default:
		return model.TermUnknown
	}
}

// Ищем первое упоминание известного места в тексте.
// Список мест приходит из конфига, сравнение без учета регистра.
func (r *RuleExtractor) detectPlace(text string) (string, bool) {
	s := strings.ToLower(text)
	for _, place := range r.places {
		if place != "" && strings.Contains(s, strings.ToLower(place)) {
			return place, true
		}
	}
	return "", false
}

// Подготовка текста к поиску цены: эмодзи-цифры в обычные,
// юникодные варианты цифр и символов приводим через NFKC
func normalizeCurrency(text string) string {
	s := emojiDigits.Replace(text)
	s = norm.NFKC.String(s)
	return currencyEmoji.Replace(s)
}

// Общая нормализация для распознавания планировок: нижний регистр,
// "1 х 1" и "1 + 1" склеиваются в "1+1", мусорные символы выкидываем
func normalizeText(text string) string {
	s := strings.ToLower(text)
	s = digitJoinRe.ReplaceAllString(s, "$1+$2")
	s = junkRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func parseAmount(raw string) (float64, error) {
	s := strings.NewReplacer(" ", "", " ", "", ",", ".").Replace(raw)
	return strconv.ParseFloat(s, 64)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
