package texconv

import (
	"context"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Logger receives diagnostics about fallback activation.
type Logger interface {
	Logf(format string, args ...any)
}

// excessBlankLines collapses runs of three or more blank lines.
var excessBlankLines = regexp.MustCompile(`\n\s*\n\s*\n+`)

// MarkdownConverter converts Markdown to LaTeX. The primary path parses
// with goldmark and renders the AST as LaTeX; when that fails, a regex
// fallback takes over. Conversion never fails from the caller's
// perspective.
type MarkdownConverter struct {
	md      goldmark.Markdown
	cleaner *Cleaner
	logger  Logger
}

// NewMarkdownConverter creates a MarkdownConverter. GFM extensions cover
// strikethrough and tables; syntax highlighting stays off.
func NewMarkdownConverter(cleaner *Cleaner, logger Logger) *MarkdownConverter {
	return &MarkdownConverter{
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		cleaner: cleaner,
		logger:  logger,
	}
}

// Convert turns Markdown text into a repaired LaTeX fragment.
func (c *MarkdownConverter) Convert(ctx context.Context, markdown string) string {
	if markdown == "" || ctx.Err() != nil {
		return ""
	}

	cleaned := preCleanMarkdown(markdown)

	latex, err := renderLaTeX(c.md, []byte(cleaned))
	if err != nil {
		c.logger.Logf("markdown conversion failed (%v), using fallback converter", err)
		return c.cleaner.Clean(markdownFallback(markdown))
	}
	return c.cleaner.Clean(latex)
}

// preCleanMarkdown normalizes Markdown before parsing: runs of blank lines
// collapse to one blank line. Strikethrough needs no rewriting here; the
// GFM extension parses ~~text~~ and the renderer emits \sout directly.
func preCleanMarkdown(markdown string) string {
	return excessBlankLines.ReplaceAllString(markdown, "\n\n")
}
