package texconv

import (
	"regexp"
	"strings"
)

// rewriteRule is one repair step: a pattern and its replacement. The repair
// pipeline is data so individual rules stay reviewable and testable. Rules
// whose repair depends on context beyond the match set fn instead of
// re/repl.
type rewriteRule struct {
	name string
	re   *regexp.Regexp
	repl string
	fn   func(string) string
}

// repairRules run in order on every converter's output. Later rules assume
// earlier ones already ran. None of them re-escapes LaTeX: input is assumed
// to be valid LaTeX with formatting artifacts, and only the formatting is
// touched.
var repairRules = []rewriteRule{
	// 1. Empty emphasis commands produce compile errors; collapse to a space.
	{"empty-emph", regexp.MustCompile(`\\emph\{\s*\}`), " ", nil},
	{"empty-textbf", regexp.MustCompile(`\\textbf\{\s*\}`), " ", nil},
	{"empty-textit", regexp.MustCompile(`\\textit\{\s*\}`), " ", nil},

	// 2. Strikethrough markers the converter failed to interpret.
	{"strikethrough-survivor", regexp.MustCompile(`~~([^~]+)~~`), `\texttt{${1}}`, nil},

	// Unwrap \texttt that swallowed other LaTeX commands.
	{name: "texttt-command", fn: unwrapTexttt},

	// 3. Missing space between sentence punctuation and a capital letter.
	{"period-capital", regexp.MustCompile(`\.([A-Z])`), `. ${1}`, nil},
	{"punct-capital", regexp.MustCompile(`([.!?,;:])([A-Z])`), `${1} ${2}`, nil},

	// 4. Malformed \href commands, three known shapes.
	{"href-nested-brace", regexp.MustCompile(`\\href\{([^}]*)\{([^}]*)\}\}`), `\href{${1}}{${2}}`, nil},
	{"href-missing-brace", regexp.MustCompile(`\\href\{([^}]*)\}([a-zA-Z][^{\\}\s]*)`), `\href{${1}}{${2}}`, nil},
	{name: "href-stray-brace", fn: fixHrefStrayBrace},

	// 5. Year directly followed by comma and capital ("2008,I joined").
	{"year-comma", regexp.MustCompile(`(\d{4}),([A-Z])`), `${1}, ${2}`, nil},

	// 6. Comma bleeding into an em-dash.
	{"comma-emdash", regexp.MustCompile(`,---`), `---`, nil},

	// 7. Windows/Mac line endings.
	{"line-endings", regexp.MustCompile(`\r\n?`), "\n", nil},

	// 8. Tighten spacing around quote environments and before subsections.
	{"quote-open-spacing", regexp.MustCompile(`\n[ \t]*\n(\\begin\{quote\})`), "\n${1}", nil},
	{"quote-close-spacing", regexp.MustCompile(`(\\end\{quote\})\n[ \t]*\n`), "${1}\n", nil},
	{"subsection-spacing", regexp.MustCompile(`\n[ \t]*\n(\\subsection)`), "\n\n${1}", nil},
	{"subsubsection-spacing", regexp.MustCompile(`\n[ \t]*\n(\\subsubsection)`), "\n\n${1}", nil},

	// 9. Blank line after a figure before the next sentence.
	{"figure-spacing", regexp.MustCompile(`(\\end\{figure\})[ \t]*\n[ \t]*\n?[ \t]*([A-Z])`), "${1}\n\n${2}", nil},
}

var textttCommand = regexp.MustCompile(`\\texttt\{([^}]*\\[^}]*)\}`)

// unwrapTexttt unwraps \texttt groups that swallowed another LaTeX command
// (a converter artifact like \texttt{\textbf{bold}}). Inline code whose
// backslashes were escaped to \textbackslash{} is valid output and stays
// wrapped.
func unwrapTexttt(s string) string {
	return textttCommand.ReplaceAllStringFunc(s, func(m string) string {
		inner := textttCommand.FindStringSubmatch(m)[1]
		if strings.Contains(inner, `\textbackslash`) {
			return m
		}
		return inner
	})
}

var hrefStrayBrace = regexp.MustCompile(`\\href\{[^}]*\}\{[^}]*\}\}`)

// fixHrefStrayBrace drops a closing brace trailing a well-formed \href, but
// only when no enclosing group is open at that point. The closer of a
// surrounding group, as in \textbf{\href{u}{t}}, is balanced text and must
// survive.
func fixHrefStrayBrace(s string) string {
	locs := hrefStrayBrace.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(s[prev:loc[0]])
		match := s[loc[0]:loc[1]]
		if braceDepth(s[:loc[0]]) > 0 {
			b.WriteString(match)
		} else {
			b.WriteString(match[:len(match)-1])
		}
		prev = loc[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

// braceDepth counts open groups, skipping escaped characters so \{ and \}
// literals do not shift the balance.
func braceDepth(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// whitespaceRules run last, after line wrapping.
var whitespaceRules = []rewriteRule{
	{"collapse-spaces", regexp.MustCompile(`[ \t]+`), " ", nil},
	{"trailing-spaces", regexp.MustCompile(` +\n`), "\n", nil},
	{"leading-spaces", regexp.MustCompile(`\n +`), "\n", nil},
}

// wrappedCommandLine marks lines the wrap heuristic must not touch.
var wrappedCommandLine = regexp.MustCompile(`\\(sub)*section|\\begin|\\end|\\textbf|\\textit`)

// sentenceBoundary is where long lines may be split: a sentence end
// followed by a capitalized word.
var sentenceBoundary = regexp.MustCompile(`\. [A-Z][a-z]`)

// Cleaner repairs known artifact classes in converter output. Cleaning
// already-clean text is a no-op.
type Cleaner struct {
	maxLineLen int
	wrapTarget int
}

// NewCleaner creates a Cleaner with the given wrap thresholds: lines longer
// than maxLineLen are split at sentence boundaries into chunks of roughly
// wrapTarget characters.
func NewCleaner(maxLineLen, wrapTarget int) *Cleaner {
	return &Cleaner{maxLineLen: maxLineLen, wrapTarget: wrapTarget}
}

// Clean applies the repair pipeline: the ordered rule cascade, then
// best-effort line wrapping, then whitespace normalization.
func (c *Cleaner) Clean(latex string) string {
	if latex == "" {
		return ""
	}
	for _, r := range repairRules {
		if r.fn != nil {
			latex = r.fn(latex)
			continue
		}
		latex = r.re.ReplaceAllString(latex, r.repl)
	}
	latex = c.wrapLongLines(latex)
	for _, r := range whitespaceRules {
		latex = r.re.ReplaceAllString(latex, r.repl)
	}
	return latex
}

// wrapLongLines splits non-command lines longer than maxLineLen at sentence
// boundaries, accumulating sentences until a chunk would exceed wrapTarget.
// Lines with no boundary are left untouched.
func (c *Cleaner) wrapLongLines(latex string) string {
	lines := strings.Split(latex, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if len(line) <= c.maxLineLen ||
			strings.HasPrefix(strings.TrimSpace(line), `\`) ||
			wrappedCommandLine.MatchString(line) {
			out = append(out, line)
			continue
		}
		out = append(out, c.wrapLine(line)...)
	}

	return strings.Join(out, "\n")
}

func (c *Cleaner) wrapLine(line string) []string {
	locs := sentenceBoundary.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return []string{line}
	}

	// Split after the ". " of each boundary so every segment but the last
	// ends with a complete sentence.
	var segments []string
	prev := 0
	for _, loc := range locs {
		segments = append(segments, line[prev:loc[0]+2])
		prev = loc[0] + 2
	}
	segments = append(segments, line[prev:])

	var out []string
	current := ""
	for _, seg := range segments {
		if current != "" && len(current)+len(seg) > c.wrapTarget {
			out = append(out, strings.TrimSpace(current))
			current = seg
			continue
		}
		current += seg
	}
	if strings.TrimSpace(current) != "" {
		out = append(out, strings.TrimSpace(current))
	}
	return out
}
