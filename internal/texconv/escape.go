// Package texconv converts the platform's rich-content formats (HTML,
// Markdown, mind-map outlines) into LaTeX fragments and repairs the
// artifact classes the conversion step is known to introduce.
package texconv

import "strings"

// latexEscaper rewrites LaTeX metacharacters in a single pass. Replacement
// output is never rescanned, so the braces and backslashes introduced by
// the replacements stay intact. Backslash is listed first: it is the one
// trigger character that appears inside other replacements.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
)

// Escape escapes LaTeX special characters in raw text. It must be applied
// exactly once: applying it to already-escaped text corrupts the escapes,
// which is precisely the defect class the output cleaner exists to repair.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return latexEscaper.Replace(text)
}
