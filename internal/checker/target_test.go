package checker

import "testing"

func TestHost(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "HTTPS URL", input: "https://example.com", expected: "example.com"},
		{name: "URL with path", input: "https://example.com/path/to/resource", expected: "example.com"},
		{name: "URL with port", input: "https://example.com:8443/api", expected: "example.com:8443"},
		{name: "No scheme", input: "example.com/path", expected: "example.com"},
		{name: "Bare host", input: "api.example.com", expected: "api.example.com"},
		{name: "Last separator wins", input: "https://proxy//example.org/x", expected: "example.org"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Host(tc.input); got != tc.expected {
				t.Errorf("Host(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestHostname(t *testing.T) {
	cases := map[string]string{
		"example.com":      "example.com",
		"example.com:8443": "example.com",
		"[::1]:443":        "::1",
		"[::1]":            "::1",
		"127.0.0.1:80":     "127.0.0.1",
	}
	for in, want := range cases {
		if got := Hostname(in); got != want {
			t.Errorf("Hostname(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeHTTPTarget(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a": "https://example.com/a",
		"http://example.com":    "http://example.com",
		"example.com":           "http://example.com",
		"example.com:8080/x":    "http://example.com:8080/x",
		"localhost:8080":        "http://localhost:8080",
		"//example.com/x":       "http://example.com/x",
	}
	for in, want := range cases {
		if got := NormalizeHTTPTarget(in); got != want {
			t.Errorf("NormalizeHTTPTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
