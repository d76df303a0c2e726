package sources

import "testing"

func TestIsURL(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"https://example.com/x", true},
		{"http://example.com/x", true},
		{"darude sandstorm", false},
		{"http", false},
		{"ftp://example.com/x", false},
	}
	for _, tc := range cases {
		if got := IsURL(tc.input); got != tc.want {
			t.Errorf("IsURL(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
