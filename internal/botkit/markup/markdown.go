package markup

import "strings"

// Спецсимволы MarkdownV2, которые телеграм требует экранировать
const specials = "-_*[]()~`>#+=|{}.!"

var replacer = newEscaper()

func newEscaper() *strings.Replacer {
	pairs := make([]string, 0, len(specials)*2)
	for _, ch := range specials {
		pairs = append(pairs, string(ch), `\`+string(ch))
	}
	return strings.NewReplacer(pairs...)
}

// Экранирует спецсимволы markdown для телеграма
func Escape(src string) string {
	return replacer.Replace(src)
}
