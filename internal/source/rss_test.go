package source

import "testing"

func TestMessageIDFromLink(t *testing.T) {
	tests := []struct {
		link string
		want int64
	}{
		{"https://t.me/batumi_rent/123", 123},
		{"https://t.me/batumi_rent/", 0},
		{"https://t.me/batumi_rent/abc", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := messageIDFromLink(tt.link); got != tt.want {
			t.Errorf("messageIDFromLink(%q) = %d; want %d", tt.link, got, tt.want)
		}
	}
}
