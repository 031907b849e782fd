package langs

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"English", "en"},
		{"eng", "en"},
		{"en-US", "en"},
		{"en_GB", "en"},
		{"Español", "es"},
		{"pt-BR", "pt"},
		{"Deutsch", "de"},
		{"grc", "el"},
		{"  French ", "fr"},
		{"", ""},
		{"tlh", "tlh"}, // unknown passes through
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
