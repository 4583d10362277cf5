package texconv

import (
	"context"
	"strings"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}

func newTestMarkdownConverter() *MarkdownConverter {
	return NewMarkdownConverter(NewCleaner(150, 120), nopLogger{})
}

func TestMarkdownConvert(t *testing.T) {
	conv := newTestMarkdownConverter()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain paragraph",
			input:    "Hello world",
			expected: "Hello world",
		},
		{
			name:     "bold and italic",
			input:    "Hello **world** and *emphasis*",
			expected: `Hello \textbf{world} and \textit{emphasis}`,
		},
		{
			name:     "heading with body",
			input:    "# Title\n\nBody text.",
			expected: "\\section{Title}\n\nBody text.",
		},
		{
			name:     "second level heading",
			input:    "## Topic",
			expected: `\subsection{Topic}`,
		},
		{
			name:     "inline code",
			input:    "run `ls` now",
			expected: `run \texttt{ls} now`,
		},
		{
			name:     "strikethrough",
			input:    "this is ~~old~~ text",
			expected: `this is \sout{old} text`,
		},
		{
			name:     "link",
			input:    "[docs](https://example.com/a_b)",
			expected: `\href{https://example.com/a_b}{docs}`,
		},
		{
			name:     "bold link stays balanced",
			input:    "**[label](https://x.com)**",
			expected: `\textbf{\href{https://x.com}{label}}`,
		},
		{
			name:     "inline code with backslash",
			input:    "use `\\alpha` here",
			expected: `use \texttt{\textbackslash{}alpha} here`,
		},
		{
			name:     "special characters escaped",
			input:    "50% of $10",
			expected: `50\% of \$10`,
		},
		{
			name:     "unordered list",
			input:    "- first\n- second",
			expected: "\\begin{itemize}\n\\item first\n\\item second\n\\end{itemize}",
		},
		{
			name:     "ordered list",
			input:    "1. first\n2. second",
			expected: "\\begin{enumerate}\n\\item first\n\\item second\n\\end{enumerate}",
		},
		{
			name:     "blockquote",
			input:    "> quoted text",
			expected: "\\begin{quote}\nquoted text\n\\end{quote}",
		},
		{
			name:     "fenced code with language",
			input:    "```go\nfmt.Println(1)\n```",
			expected: "\\begin{lstlisting}[language=go]\nfmt.Println(1)\n\\end{lstlisting}",
		},
		{
			name:     "excess blank lines collapse",
			input:    "first\n\n\n\nsecond",
			expected: "first\n\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conv.Convert(ctx, tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// A fence without a language tag still produces a code environment and
// keeps the code verbatim, whatever language inference decides.
func TestMarkdownConvertBareFence(t *testing.T) {
	conv := newTestMarkdownConverter()

	got := conv.Convert(context.Background(), "```\nsome opaque payload\n```")
	if !strings.Contains(got, "some opaque payload") {
		t.Errorf("Convert() lost code content: %q", got)
	}
	if !strings.HasPrefix(got, `\begin{`) {
		t.Errorf("Convert() = %q, want a code environment", got)
	}
}

func TestMarkdownConvertTable(t *testing.T) {
	conv := newTestMarkdownConverter()

	input := "| a | b |\n| --- | --- |\n| c | d |"
	expected := "\\begin{tabular}{ll}\n\\hline\na & b \\\\\n\\hline\nc & d \\\\\n\\hline\n\\end{tabular}"

	got := conv.Convert(context.Background(), input)
	if got != expected {
		t.Errorf("Convert() = %q, want %q", got, expected)
	}
}

func TestMarkdownConvertCancelledContext(t *testing.T) {
	conv := newTestMarkdownConverter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := conv.Convert(ctx, "# Title"); got != "" {
		t.Errorf("Convert() with cancelled context = %q, want empty", got)
	}
}
