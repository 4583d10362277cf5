package texconv

import (
	"testing"
)

func TestFinalPass(t *testing.T) {
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
			name:     "hyphenated word break rejoined",
			input:    "build-\ning blocks",
			expected: "building blocks",
		},
		{
			name:     "lowercase wrap rejoined",
			input:    "the quick\nbrown fox",
			expected: "the quick brown fox",
		},
		{
			name:     "missing space after period across fragments",
			input:    "questions.Since System Design",
			expected: "questions. Since System Design",
		},
		{
			name:     "year comma spacing",
			input:    "In 2008,I joined.",
			expected: "In 2008, I joined.",
		},
		{
			name:     "word glued to closing brace",
			input:    `\textbf{Microsoft}working`,
			expected: `\textbf{Microsoft} working`,
		},
		{
			name:     "terminated line not joined",
			input:    "The end.\nNext paragraph",
			expected: "The end.\nNext paragraph",
		},
		{
			name:     "command line not joined",
			input:    "some text\n\\section{Title}",
			expected: "some text\n\\section{Title}",
		},
		{
			name:     "comment line not joined",
			input:    "some text\n% a comment",
			expected: "some text\n% a comment",
		},
		{
			name:     "excess blank lines collapse",
			input:    "a\n\n\n\nb",
			expected: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalPass(tt.input)
			if got != tt.expected {
				t.Errorf("FinalPass() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFinalPassProtectsVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "verbatim content untouched",
			input:    "a-\nb\n\\begin{verbatim}\nx-\ny\n\\end{verbatim}",
			expected: "ab\n\\begin{verbatim}\nx-\ny\n\\end{verbatim}",
		},
		{
			name:     "lstlisting content untouched",
			input:    "\\begin{lstlisting}[language=go]\nx := a-\nb\n\\end{lstlisting}",
			expected: "\\begin{lstlisting}[language=go]\nx := a-\nb\n\\end{lstlisting}",
		},
		{
			name: "text around listing still repaired",
			input: "build-\ning\n\\begin{verbatim}\ncode\n\\end{verbatim}\nthe quick\nbrown fox",
			expected: "building\n\\begin{verbatim}\ncode\n\\end{verbatim}\nthe quick brown fox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalPass(tt.input)
			if got != tt.expected {
				t.Errorf("FinalPass() = %q, want %q", got, tt.expected)
			}
		})
	}
}
