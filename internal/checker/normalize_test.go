package checker

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapse runs", in: "a  b\t\tc", want: "a b c"},
		{name: "line endings", in: "a\r\n\r\nb\nc\rd", want: "a b c d"},
		{name: "trailing trimmed", in: "hello \n\t ", want: "hello"},
		{name: "leading collapsed not trimmed", in: "\n\n  hello", want: " hello"},
		{name: "unicode spaces", in: "a\u00a0\u00a0b\u3000c\u2028", want: "a b c"},
		{name: "separator controls", in: "a\x1c\x1fb", want: "a b"},
		{name: "empty", in: "", want: ""},
		{name: "only spaces", in: " \r\n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"<html>\r\n  <body>\n\t<p>hi</p>  </body>\r\n</html>\r\n",
		"   leading",
		"x y z",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
