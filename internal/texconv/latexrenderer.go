package texconv

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// renderLaTeX parses Markdown and renders the AST as LaTeX. Output lines
// are never wrapped (soft breaks join with a space); raw HTML and comments
// are dropped. Panics from malformed input surface as errors so the caller
// can fall back.
func renderLaTeX(md goldmark.Markdown, source []byte) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering LaTeX: %v", r)
		}
	}()

	doc := md.Parser().Parse(text.NewReader(source))
	r := &latexRenderer{source: source}
	return r.renderChildBlocks(doc), nil
}

// latexRenderer walks a goldmark AST emitting LaTeX.
type latexRenderer struct {
	source []byte
}

// renderChildBlocks renders parent's block children joined by blank lines.
func (r *latexRenderer) renderChildBlocks(parent ast.Node) string {
	var blocks []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		block := r.renderBlock(n)
		if strings.TrimSpace(block) == "" {
			continue
		}
		blocks = append(blocks, strings.TrimSpace(block))
	}
	return strings.Join(blocks, "\n\n")
}

func (r *latexRenderer) renderBlock(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Heading:
		return r.renderHeading(n)
	case *ast.Paragraph, *ast.TextBlock:
		return r.renderInlines(n)
	case *ast.Blockquote:
		return "\\begin{quote}\n" + r.renderChildBlocks(n) + "\n\\end{quote}"
	case *ast.List:
		return r.renderList(n)
	case *ast.FencedCodeBlock:
		return r.renderCode(string(n.Language(r.source)), r.segmentText(n))
	case *ast.CodeBlock:
		return r.renderCode("", r.segmentText(n))
	case *ast.ThematicBreak:
		return `\noindent\hrulefill`
	case *ast.HTMLBlock:
		// Raw HTML blocks and comments do not survive conversion.
		return ""
	case *east.Table:
		return r.renderTable(n)
	default:
		if n.Type() == ast.TypeBlock {
			return r.renderChildBlocks(n)
		}
		return ""
	}
}

func (r *latexRenderer) renderHeading(n *ast.Heading) string {
	content := r.renderInlines(n)
	switch n.Level {
	case 1:
		return fmt.Sprintf(`\section{%s}`, content)
	case 2:
		return fmt.Sprintf(`\subsection{%s}`, content)
	case 3:
		return fmt.Sprintf(`\subsubsection{%s}`, content)
	default:
		return fmt.Sprintf(`\textbf{%s}`, content)
	}
}

func (r *latexRenderer) renderList(n *ast.List) string {
	env := "itemize"
	if n.IsOrdered() {
		env = "enumerate"
	}

	var items []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item := r.renderChildBlocks(c)
		items = append(items, `\item `+item)
	}

	return fmt.Sprintf("\\begin{%s}\n%s\n\\end{%s}", env, strings.Join(items, "\n"), env)
}

// renderCode emits a listing with a language tag when one is known. A bare
// fence gets its language inferred from the code itself; when inference
// fails too, plain verbatim is emitted. Code content is never escaped.
func (r *latexRenderer) renderCode(lang, code string) string {
	code = strings.TrimRight(code, "\n")
	if lang == "" {
		if lexer := lexers.Analyse(code); lexer != nil {
			lang = strings.ToLower(lexer.Config().Name)
		}
	}
	if lang != "" {
		return fmt.Sprintf("\\begin{lstlisting}[language=%s]\n%s\n\\end{lstlisting}", lang, code)
	}
	return "\\begin{verbatim}\n" + code + "\n\\end{verbatim}"
}

func (r *latexRenderer) renderTable(n *east.Table) string {
	var rows []string
	columns := 0

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var cells []string
		for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.renderInlines(cell))
		}
		if len(cells) > columns {
			columns = len(cells)
		}
		row := strings.Join(cells, " & ") + ` \\`
		if _, ok := c.(*east.TableHeader); ok {
			row += "\n\\hline"
		}
		rows = append(rows, row)
	}
	if columns == 0 {
		return ""
	}

	spec := strings.Repeat("l", columns)
	return fmt.Sprintf("\\begin{tabular}{%s}\n\\hline\n%s\n\\hline\n\\end{tabular}",
		spec, strings.Join(rows, "\n"))
}

// renderInlines renders parent's inline children.
func (r *latexRenderer) renderInlines(parent ast.Node) string {
	var b strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(&b, c)
	}
	return strings.TrimSpace(b.String())
}

func (r *latexRenderer) renderInline(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.WriteString(Escape(string(n.Segment.Value(r.source))))
		switch {
		case n.HardLineBreak():
			b.WriteString("\\\\\n")
		case n.SoftLineBreak():
			// No line wrapping: soft breaks become plain spaces.
			b.WriteString(" ")
		}
	case *ast.String:
		b.WriteString(Escape(string(n.Value)))
	case *ast.CodeSpan:
		b.WriteString(`\texttt{` + Escape(r.inlineText(n)) + `}`)
	case *ast.Emphasis:
		cmd := `\textit`
		if n.Level >= 2 {
			cmd = `\textbf`
		}
		b.WriteString(cmd + "{")
		r.renderInlineChildren(b, n)
		b.WriteString("}")
	case *east.Strikethrough:
		b.WriteString(`\sout{`)
		r.renderInlineChildren(b, n)
		b.WriteString("}")
	case *ast.Link:
		fmt.Fprintf(b, `\href{%s}{`, escapeURL(string(n.Destination)))
		r.renderInlineChildren(b, n)
		b.WriteString("}")
	case *ast.AutoLink:
		fmt.Fprintf(b, `\url{%s}`, escapeURL(string(n.URL(r.source))))
	case *ast.Image:
		// Inline Markdown images carry no platform image reference; keep
		// the alt text so the information is not lost silently.
		fmt.Fprintf(b, `\textit{[Image: %s]}`, Escape(r.inlineText(n)))
	case *ast.RawHTML:
		// Dropped, like HTML blocks.
	default:
		r.renderInlineChildren(b, n)
	}
}

func (r *latexRenderer) renderInlineChildren(b *strings.Builder, parent ast.Node) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(b, c)
	}
}

// inlineText collects the raw source text under an inline node.
func (r *latexRenderer) inlineText(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(r.source))
			continue
		}
		b.WriteString(r.inlineText(c))
	}
	return b.String()
}

// segmentText collects the raw lines of a block node (code block content).
func (r *latexRenderer) segmentText(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.source))
	}
	return b.String()
}

// urlEscaper escapes the characters hyperref cannot take verbatim in a URL
// argument.
var urlEscaper = strings.NewReplacer(`%`, `\%`, `#`, `\#`)

func escapeURL(url string) string {
	return urlEscaper.Replace(url)
}
