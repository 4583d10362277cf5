package texconv

import (
	"testing"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text unchanged",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "backslash",
			input:    `a\b`,
			expected: `a\textbackslash{}b`,
		},
		{
			name:     "ampersand",
			input:    "a & b",
			expected: `a \& b`,
		},
		{
			name:     "percent",
			input:    "50% done",
			expected: `50\% done`,
		},
		{
			name:     "dollar",
			input:    "$10",
			expected: `\$10`,
		},
		{
			name:     "hash",
			input:    "#1",
			expected: `\#1`,
		},
		{
			name:     "caret",
			input:    "2^10",
			expected: `2\textasciicircum{}10`,
		},
		{
			name:     "underscore",
			input:    "snake_case",
			expected: `snake\_case`,
		},
		{
			name:     "braces",
			input:    "{x}",
			expected: `\{x\}`,
		},
		{
			name:     "tilde",
			input:    "~user",
			expected: `\textasciitilde{}user`,
		},
		{
			name:     "all metacharacters together",
			input:    `\&%$#^_{}~`,
			expected: `\textbackslash{}\&\%\$\#\textasciicircum{}\_\{\}\textasciitilde{}`,
		},
		{
			name:     "backslash before brace keeps both escapes",
			input:    `\{`,
			expected: `\textbackslash{}\{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escape(tt.input)
			if got != tt.expected {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// Escaping is single-pass: replacement output is never rescanned, so the
// braces introduced by \textbackslash{} survive intact.
func TestEscapeReplacementOutputNotRescanned(t *testing.T) {
	got := Escape(`\`)
	if got != `\textbackslash{}` {
		t.Errorf("Escape(`\\`) = %q, want %q", got, `\textbackslash{}`)
	}
}

// Applying Escape twice corrupts the first escape. The test pins the shape
// of the corruption so the cleaner's repair rules can rely on it.
func TestEscapeIsNotIdempotent(t *testing.T) {
	once := Escape("%")
	twice := Escape(once)
	if twice == once {
		t.Fatalf("double escape unexpectedly stable: %q", twice)
	}
	if twice != `\textbackslash{}\%` {
		t.Errorf("Escape(Escape(%%)) = %q, want %q", twice, `\textbackslash{}\%`)
	}
}
