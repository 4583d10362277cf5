package texconv

import (
	"fmt"
	"regexp"
	"strings"
)

// Regex fallback converters, used when the primary conversion path is
// unavailable or fails. Their output is NOT escaped again: the source text
// may intentionally contain characters that LaTeX escaping would corrupt,
// and double-escaping is the dominant bug class this pipeline defends
// against.

var (
	fbHeader     = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	fbParagraph  = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	fbStrong     = regexp.MustCompile(`(?s)<strong[^>]*>(.*?)</strong>`)
	fbEm         = regexp.MustCompile(`(?s)<em[^>]*>(.*?)</em>`)
	fbLink       = regexp.MustCompile(`(?s)<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	fbUList      = regexp.MustCompile(`(?s)<ul[^>]*>(.*?)</ul>`)
	fbOList      = regexp.MustCompile(`(?s)<ol[^>]*>(.*?)</ol>`)
	fbListItem   = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	fbBlockquote = regexp.MustCompile(`(?s)<blockquote[^>]*>(.*?)</blockquote>`)
	fbAnyTag     = regexp.MustCompile(`<[^>]+>`)
	fbBlankRun   = regexp.MustCompile(`\n\s*\n`)
)

// htmlFallback converts HTML to LaTeX with regular expressions: headers,
// paragraphs, emphasis, links, lists and blockquotes; unrecognized tags are
// stripped.
func htmlFallback(html string) string {
	if html == "" {
		return ""
	}
	latex := html

	latex = fbHeader.ReplaceAllStringFunc(latex, func(m string) string {
		sub := fbHeader.FindStringSubmatch(m)
		switch sub[1] {
		case "1":
			return fmt.Sprintf(`\section{%s}`, sub[2])
		case "2":
			return fmt.Sprintf(`\subsection{%s}`, sub[2])
		case "3":
			return fmt.Sprintf(`\subsubsection{%s}`, sub[2])
		default:
			return fmt.Sprintf(`\textbf{%s}`, sub[2])
		}
	})

	latex = fbParagraph.ReplaceAllString(latex, "${1}\n\n")
	latex = fbStrong.ReplaceAllString(latex, `\textbf{${1}}`)
	latex = fbEm.ReplaceAllString(latex, `\textit{${1}}`)
	latex = fbLink.ReplaceAllString(latex, `\href{${1}}{${2}}`)

	latex = fbUList.ReplaceAllStringFunc(latex, func(m string) string {
		return fallbackList(fbUList.FindStringSubmatch(m)[1], "itemize")
	})
	latex = fbOList.ReplaceAllStringFunc(latex, func(m string) string {
		return fallbackList(fbOList.FindStringSubmatch(m)[1], "enumerate")
	})

	latex = fbBlockquote.ReplaceAllString(latex, `\begin{quote}${1}\end{quote}`)
	latex = fbAnyTag.ReplaceAllString(latex, "")
	latex = fbBlankRun.ReplaceAllString(latex, "\n\n")

	return strings.TrimSpace(latex)
}

func fallbackList(inner, env string) string {
	var items []string
	for _, m := range fbListItem.FindAllStringSubmatch(inner, -1) {
		items = append(items, `\item `+strings.TrimSpace(m[1]))
	}
	return fmt.Sprintf("\\begin{%s}\n%s\n\\end{%s}", env, strings.Join(items, "\n"), env)
}

var (
	fbMDH3     = regexp.MustCompile(`(?m)^### (.*)$`)
	fbMDH2     = regexp.MustCompile(`(?m)^## (.*)$`)
	fbMDH1     = regexp.MustCompile(`(?m)^# (.*)$`)
	fbMDBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	fbMDItalic = regexp.MustCompile(`\*([^*]+)\*`)
	fbMDCode   = regexp.MustCompile("`([^`]+)`")
	fbMDStrike = regexp.MustCompile(`~~(.*?)~~`)
)

// markdownFallback converts Markdown to LaTeX with regular expressions:
// headers, bold, italic, strikethrough and inline code.
func markdownFallback(markdown string) string {
	if markdown == "" {
		return ""
	}
	latex := markdown

	latex = fbMDH3.ReplaceAllString(latex, `\subsubsection{${1}}`)
	latex = fbMDH2.ReplaceAllString(latex, `\subsection{${1}}`)
	latex = fbMDH1.ReplaceAllString(latex, `\section{${1}}`)
	latex = fbMDStrike.ReplaceAllString(latex, `\sout{${1}}`)
	latex = fbMDBold.ReplaceAllString(latex, `\textbf{${1}}`)
	latex = fbMDItalic.ReplaceAllString(latex, `\textit{${1}}`)
	latex = fbMDCode.ReplaceAllString(latex, `\texttt{${1}}`)

	return strings.TrimSpace(latex)
}
