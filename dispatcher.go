package coursetex

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/texforge/coursetex/internal/texconv"
)

// handleComponent maps a component to its handler and contains every
// failure: a panic inside a handler becomes an italic error fragment and
// sibling components are unaffected.
func (s *Service) handleComponent(ctx context.Context, comp Component, pc ProcessingContext) (res ConversionResult) {
	componentType := comp.Type
	if componentType == "" {
		componentType = "Unknown"
	}

	defer func() {
		if r := recover(); r != nil {
			res = ConversionResult{
				LaTeX: fmt.Sprintf(`\textit{Error processing %s: %v}`, texconv.Escape(componentType), r),
			}
		}
	}()

	switch comp.Type {
	case TypeSlateHTML:
		return ConversionResult{LaTeX: s.handleSlateHTML(ctx, comp.Content)}
	case TypeMarkdownEditor:
		return ConversionResult{LaTeX: s.handleMarkdownEditor(ctx, comp.Content)}
	case TypeDrawIOWidget:
		return s.handleDrawIOWidget(ctx, comp.Content, pc)
	case TypeStructuredQuiz:
		return ConversionResult{LaTeX: s.handleStructuredQuiz(ctx, comp.Content)}
	case TypeColumns:
		return s.handleColumns(ctx, comp.Content, pc)
	case TypeMarkMap:
		return ConversionResult{LaTeX: s.handleMarkMap(comp.Content)}
	default:
		return ConversionResult{
			LaTeX: fmt.Sprintf(`\textit{Component type '%s' not yet supported.}`, texconv.Escape(componentType)),
		}
	}
}

func (s *Service) handleSlateHTML(ctx context.Context, content map[string]any) string {
	html := stringField(content, "html")
	if html == "" {
		return ""
	}
	return s.htmlConv.Convert(ctx, html)
}

func (s *Service) handleMarkdownEditor(ctx context.Context, content map[string]any) string {
	text := stringField(content, "text")
	if text == "" {
		return ""
	}
	return s.mdConv.Convert(ctx, text)
}

// handleDrawIOWidget extracts an image reference, downloads and transcodes
// it, and wraps the result in a figure environment. Download and transcode
// problems surface as inline placeholders, never as errors.
func (s *Service) handleDrawIOWidget(ctx context.Context, content map[string]any, pc ProcessingContext) ConversionResult {
	caption := stringField(content, "caption")
	ref, err := imageReference(content)
	if err != nil {
		return ConversionResult{LaTeX: `\textit{Image content not available}`}
	}

	asset, err := s.fetcher.Fetch(ctx, ref, pc)
	if err != nil {
		return ConversionResult{LaTeX: fmt.Sprintf(`\textit{Error loading image: %s}`, texconv.Escape(err.Error()))}
	}

	rel := s.transcoder.ToPNG(ctx, asset)

	return ConversionResult{LaTeX: figureFor(rel, caption), Images: []string{rel}}
}

// imageReference checks the known locations for an image path, in priority
// order: editorImagePath, then the legacy path field, then the nested
// diagram object. Returns ErrNoImageRef when none carries a path.
func imageReference(content map[string]any) (string, error) {
	if ref := stringField(content, "editorImagePath"); ref != "" {
		return ref, nil
	}
	if ref := stringField(content, "path"); ref != "" {
		return ref, nil
	}
	if diagram, ok := content["diagram"].(map[string]any); ok {
		if ref := stringField(diagram, "imagePath"); ref != "" {
			return ref, nil
		}
	}
	return "", ErrNoImageRef
}

// figureFor builds a figure environment for a LaTeX-compatible image, or a
// commented placeholder figure when the image stayed in an unsupported
// format after transcoding.
func figureFor(rel, caption string) string {
	var b strings.Builder
	b.WriteString("\\begin{figure}[htbp]\n")
	b.WriteString("    \\centering\n")

	switch strings.ToLower(path.Ext(rel)) {
	case ".png", ".jpg", ".jpeg":
		fmt.Fprintf(&b, "    \\includegraphics[width=0.8\\textwidth]{%s}\n", rel)
	default:
		label := caption
		if label == "" {
			label = "Diagram"
		}
		fmt.Fprintf(&b, "    %% Unsupported image format: %s\n", path.Ext(rel))
		fmt.Fprintf(&b, "    %% Original file: %s\n", rel)
		fmt.Fprintf(&b, "    \\textit{[Image: %s - Format: %s]}\n", texconv.Escape(label), path.Ext(rel))
	}

	if caption != "" {
		fmt.Fprintf(&b, "    \\caption{%s}\n", texconv.Escape(caption))
	}
	b.WriteString("\\end{figure}")
	return b.String()
}

// handleStructuredQuiz renders each question/answer pair inside one quote
// block. Question and answer texts run through the HTML converter
// independently; batching them was considered and rejected to keep the
// documented per-field behavior.
func (s *Service) handleStructuredQuiz(ctx context.Context, content map[string]any) string {
	questions, ok := content["questions"].([]any)
	if !ok || len(questions) == 0 {
		return ""
	}

	parts := []string{`\begin{quote}`, `\textbf{Quiz:}`}
	for i, q := range questions {
		qm, ok := q.(map[string]any)
		if !ok {
			continue
		}
		questionText := strings.TrimSpace(stringField(qm, "questionText"))
		answerText := strings.TrimSpace(stringField(qm, "answerText"))

		if questionText != "" {
			parts = append(parts, fmt.Sprintf(`\textbf{Question %d:} %s`, i+1,
				strings.TrimSpace(s.htmlConv.Convert(ctx, questionText))))
		}
		if answerText != "" {
			parts = append(parts, fmt.Sprintf(`\textbf{Answer:} %s`,
				strings.TrimSpace(s.htmlConv.Convert(ctx, answerText))))
		}
	}
	parts = append(parts, `\end{quote}`)

	return strings.Join(parts, "\n")
}

// maxColumns caps side-by-side boxes for readability; excess sub-components
// are dropped.
const maxColumns = 4

// handleColumns converts each sub-component independently and lays the
// fragments out side by side in fixed-width boxes. Figure environments are
// stripped from fragments before boxing: floats may not nest inside
// minipages.
func (s *Service) handleColumns(ctx context.Context, content map[string]any, pc ProcessingContext) ConversionResult {
	comps, ok := content["comps"].([]any)
	if !ok || len(comps) == 0 {
		return ConversionResult{}
	}

	var fragments []string
	var images []string

	for _, c := range comps {
		cm, ok := c.(map[string]any)
		if !ok {
			fragments = append(fragments, "")
			continue
		}
		subType := stringField(cm, "type")
		subContent, _ := cm["content"].(map[string]any)

		switch subType {
		case TypeMarkdownEditor:
			fragments = append(fragments, s.handleMarkdownEditor(ctx, subContent))
		case TypeSlateHTML:
			fragments = append(fragments, s.handleSlateHTML(ctx, subContent))
		case TypeDrawIOWidget:
			sub := s.handleDrawIOWidget(ctx, subContent, pc)
			fragments = append(fragments, sub.LaTeX)
			images = append(images, sub.Images...)
		default:
			fragments = append(fragments, fmt.Sprintf(
				`\textit{Column component type '%s' not yet supported.}`, texconv.Escape(subType)))
		}
	}

	if len(fragments) == 1 {
		return ConversionResult{LaTeX: fragments[0], Images: images}
	}

	if len(fragments) == 2 {
		latex := fmt.Sprintf("\\noindent\n"+
			"\\begin{minipage}[t]{0.48\\textwidth}\n%s\n\\end{minipage}\n"+
			"\\hfill\n"+
			"\\begin{minipage}[t]{0.48\\textwidth}\n%s\n\\end{minipage}",
			stripFigureEnvs(fragments[0]), stripFigureEnvs(fragments[1]))
		return ConversionResult{LaTeX: latex, Images: images}
	}

	n := len(fragments)
	if n > maxColumns {
		n = maxColumns
	}
	width := 0.9 / float64(n)

	var b strings.Builder
	b.WriteString("\\noindent\n")
	for i, frag := range fragments[:n] {
		if i > 0 {
			b.WriteString("\\hfill\n")
		}
		fmt.Fprintf(&b, "\\begin{minipage}[t]{%.2f\\textwidth}\n%s\n\\end{minipage}\n",
			width, stripFigureEnvs(frag))
	}
	return ConversionResult{LaTeX: strings.TrimRight(b.String(), "\n"), Images: images}
}

var figureEnvPattern = regexp.MustCompile(`(?s)\\begin\{figure\}.*?\n(.*?)\\end\{figure\}`)

// stripFigureEnvs unwraps figure environments, keeping the
// \includegraphics and \caption lines verbatim and dropping the float
// scaffolding.
func stripFigureEnvs(fragment string) string {
	if fragment == "" {
		return fragment
	}
	cleaned := figureEnvPattern.ReplaceAllStringFunc(fragment, func(m string) string {
		inner := figureEnvPattern.FindStringSubmatch(m)[1]
		var kept []string
		for _, line := range strings.Split(inner, "\n") {
			line = strings.TrimSpace(line)
			if strings.Contains(line, `\includegraphics`) || strings.Contains(line, `\caption`) {
				kept = append(kept, line)
			}
		}
		return strings.Join(kept, "\n")
	})
	return strings.TrimSpace(cleaned)
}

// handleMarkMap converts a mind-map outline (#/##/### headings and "-"
// list lines) to a structured LaTeX outline. A captioned outline is wrapped
// in a quote block with a bold caption line.
func (s *Service) handleMarkMap(content map[string]any) string {
	text := stringField(content, "text")
	caption := stringField(content, "caption")

	if text == "" {
		label := caption
		if label == "" {
			label = "Mind Map"
		}
		return fmt.Sprintf(`\textit{MarkMap: %s}`, texconv.Escape(label))
	}

	latex := markmapOutline(text)
	if caption != "" {
		latex = fmt.Sprintf("\\begin{quote}\n\\textbf{%s}\n\n%s\n\\end{quote}", texconv.Escape(caption), latex)
	}
	return strings.TrimSpace(latex)
}

var markmapHeading = regexp.MustCompile(`^(#+)\s*(.+)$`)

// markmapOutline maps heading depth 1 to \subsection, 2 to \subsubsection
// and 3+ to a bold paragraph heading; contiguous "-" lines become one
// itemize environment, closed on the first non-list line.
func markmapOutline(text string) string {
	var out []string
	inItemize := false

	closeList := func() {
		if inItemize {
			out = append(out, `\end{itemize}`)
			inItemize = false
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := markmapHeading.FindStringSubmatch(line); m != nil {
			closeList()
			heading := texconv.Escape(strings.TrimSpace(m[2]))
			switch len(m[1]) {
			case 1:
				out = append(out, fmt.Sprintf(`\subsection{%s}`, heading))
			case 2:
				out = append(out, fmt.Sprintf(`\subsubsection{%s}`, heading))
			default:
				out = append(out, fmt.Sprintf(`\paragraph{%s}`, heading))
			}
			out = append(out, "")
			continue
		}

		if strings.HasPrefix(line, "-") {
			if !inItemize {
				out = append(out, `\begin{itemize}`)
				inItemize = true
			}
			item := strings.TrimSpace(strings.TrimPrefix(line, "-"))
			out = append(out, fmt.Sprintf(`\item %s`, texconv.Escape(item)))
			continue
		}

		closeList()
		out = append(out, texconv.Escape(line))
	}
	closeList()

	return strings.Join(out, "\n")
}

// stringField reads a string value from an untrusted content map.
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}
