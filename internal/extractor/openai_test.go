package extractor

import "testing"

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"вот ответ: {\"a\":1} конец", `{"a":1}`, true},
		{"```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{`{"a":1}{"b":2}`, `{"a":1}`, true},
		{"никакого json", "", false},
		{`{"оборванный":`, "", false},
	}

	for _, tt := range tests {
		got, ok := firstJSONObject(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("firstJSONObject(%q) = (%q, %v); want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
