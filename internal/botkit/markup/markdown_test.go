package markup

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$450/мес.", "$450/мес\\."},
		{"2+1 (центр)", "2\\+1 \\(центр\\)"},
		{"без спецсимволов", "без спецсимволов"},
		{"a-b_c*d", "a\\-b\\_c\\*d"},
	}

	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
