package texconv

import (
	"regexp"
	"strings"
)

// finalRules repair artifacts that only become visible after all fragments
// are joined: sentence boundaries and spacing damage spanning component
// boundaries.
var finalRules = []rewriteRule{
	{"year-comma", regexp.MustCompile(`(\d{4}),([A-Z])`), `${1}, ${2}`, nil},
	{"comma-emdash", regexp.MustCompile(`,---`), `---`, nil},
	{"punct-capital", regexp.MustCompile(`([.!?,;:])([A-Z])`), `${1} ${2}`, nil},

	// "build-\ning" style hyphenated word breaks.
	{"hyphen-break", regexp.MustCompile(`(\w+)-[ \t]*\n[ \t]*(\w+)`), `${1}${2}`, nil},

	// A lowercase line end flowing into a lowercase line start is one
	// sentence that got wrapped mid-flight.
	{"lowercase-join", regexp.MustCompile(`([a-z])[ \t]*\n[ \t]*([a-z])`), `${1} ${2}`, nil},
}

// finalSpacingRules run after the line-join pass.
var finalSpacingRules = []rewriteRule{
	// "Microsoft}working" -> "Microsoft} working".
	{"brace-word", regexp.MustCompile(`(\}+)([a-zA-Z])`), `${1} ${2}`, nil},

	// ". In\nApril" -> ". In April".
	{"capital-continuation", regexp.MustCompile(`\. ([A-Z])\n([a-z])`), `. ${1}${2}`, nil},

	{"double-spaces", regexp.MustCompile(`  +`), " ", nil},
	{"excess-newlines", regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`), "\n\n", nil},
}

// verbatimBlock matches environments whose content must never be repaired.
var verbatimBlock = regexp.MustCompile(`(?s)\\begin\{verbatim\}.*?\\end\{verbatim\}|\\begin\{lstlisting\}.*?\\end\{lstlisting\}`)

// FinalPass applies cross-fragment text repairs to the joined section
// LaTeX. Verbatim and listing blocks pass through untouched.
func FinalPass(latex string) string {
	if latex == "" {
		return latex
	}

	var b strings.Builder
	prev := 0
	for _, loc := range verbatimBlock.FindAllStringIndex(latex, -1) {
		b.WriteString(finalPassText(latex[prev:loc[0]]))
		b.WriteString(latex[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(finalPassText(latex[prev:]))
	return b.String()
}

func finalPassText(latex string) string {
	for _, r := range finalRules {
		latex = r.re.ReplaceAllString(latex, r.repl)
	}
	latex = joinBrokenLines(latex)
	for _, r := range finalSpacingRules {
		latex = r.re.ReplaceAllString(latex, r.repl)
	}
	return latex
}

// joinBrokenLines merges a line with its successor when the line stops
// mid-sentence: no terminating punctuation, and the next line is plain text
// rather than a command or comment.
func joinBrokenLines(latex string) string {
	lines := strings.Split(latex, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		current := strings.TrimSpace(lines[i])

		if current == "" || strings.HasPrefix(current, "%") || strings.HasPrefix(current, `\`) {
			out = append(out, lines[i])
			continue
		}

		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if shouldJoin(current, next) {
				out = append(out, current+" "+next)
				i++
				continue
			}
		}
		out = append(out, lines[i])
	}

	return strings.Join(out, "\n")
}

func shouldJoin(current, next string) bool {
	if next == "" || strings.HasPrefix(next, `\`) || strings.HasPrefix(next, "%") {
		return false
	}
	for _, end := range []string{".", "!", "?", ":", "}", `\\`} {
		if strings.HasSuffix(current, end) {
			return false
		}
	}
	return true
}
