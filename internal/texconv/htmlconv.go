package texconv

import (
	"context"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlComment strips HTML comments before conversion.
var htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)

// HTMLConverter converts HTML snippets to LaTeX. The primary path
// pre-cleans the DOM, converts to Markdown, and renders that as LaTeX; a
// regex fallback covers the cases the library cannot. Conversion never
// fails from the caller's perspective.
type HTMLConverter struct {
	md      goldmark.Markdown
	cleaner *Cleaner
	logger  Logger
}

// NewHTMLConverter creates an HTMLConverter.
func NewHTMLConverter(cleaner *Cleaner, logger Logger) *HTMLConverter {
	return &HTMLConverter{
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		cleaner: cleaner,
		logger:  logger,
	}
}

// Convert turns an HTML snippet into a repaired LaTeX fragment.
func (c *HTMLConverter) Convert(ctx context.Context, html string) string {
	if html == "" || ctx.Err() != nil {
		return ""
	}

	cleaned := preCleanHTML(html)

	markdown, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		c.logger.Logf("HTML conversion failed (%v), using fallback converter", err)
		return c.cleaner.Clean(htmlFallback(html))
	}

	latex, err := renderLaTeX(c.md, []byte(markdown))
	if err != nil {
		c.logger.Logf("HTML conversion failed (%v), using fallback converter", err)
		return c.cleaner.Clean(htmlFallback(html))
	}
	return c.cleaner.Clean(latex)
}

// preCleanHTML repairs the DOM before conversion: empty emphasis tags are
// removed (they come out as broken empty LaTeX commands), and del/s
// elements are rewritten to strikethrough markers the Markdown stage
// understands. Any marker that survives conversion uninterpreted is caught
// by the output cleaner.
func preCleanHTML(html string) string {
	html = htmlComment.ReplaceAllString(html, "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("em, strong, span").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})

	doc.Find("del, s").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("~~" + s.Text() + "~~")
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return html
	}
	return out
}
