package coursetex

import (
	"context"
	"encoding/json"
	"fmt"
)

// Component type names as emitted by the platform API.
const (
	TypeSlateHTML      = "SlateHTML"
	TypeMarkdownEditor = "MarkdownEditor"
	TypeDrawIOWidget   = "DrawIOWidget"
	TypeStructuredQuiz = "StructuredQuiz"
	TypeColumns        = "Columns"
	TypeMarkMap        = "MarkMap"
)

// Component is one content block of a section. Content holds the
// type-specific payload; its shape varies per component type and is never
// trusted. Components are treated as immutable input.
type Component struct {
	Type    string
	Content map[string]any
}

// UnmarshalJSON tolerates malformed content sub-fields: a component whose
// content is not a JSON object keeps a nil Content map instead of failing
// the whole section. Only the container shape itself is load-bearing.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Type = raw.Type
	c.Content = nil
	if len(raw.Content) > 0 {
		var m map[string]any
		if err := json.Unmarshal(raw.Content, &m); err == nil {
			c.Content = m
		}
	}
	return nil
}

// Summary carries section metadata used by the template layer.
type Summary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Section is the parsed section-content blob from the platform API.
type Section struct {
	Components []Component `json:"components"`
	Summary    Summary     `json:"summary"`
}

// ParseSection decodes a raw section payload. It returns ErrNotSection when
// the payload is not a well-formed component container; malformed individual
// components do not fail parsing.
func ParseSection(data []byte) (Section, error) {
	var s Section
	if err := json.Unmarshal(data, &s); err != nil {
		return Section{}, fmt.Errorf("%w: %v", ErrNotSection, err)
	}
	return s, nil
}

// Result is the outcome of processing one section.
type Result struct {
	LaTeX          string   // joined, repaired LaTeX for the whole section
	Images         []string // relative image paths, in production order
	ComponentTypes []string // distinct component types, first-seen order
}

// ConversionResult is the outcome of processing a single component.
// LaTeX is self-contained enough to be concatenated with sibling fragments;
// the only documented exception is the figure-stripping rule applied inside
// fixed-width column boxes.
type ConversionResult struct {
	LaTeX  string
	Images []string
}

// ProcessingContext pins the on-disk location for everything produced while
// processing one section. It is passed explicitly through the pipeline and
// never stored on the Service, so two sections cannot leak context into each
// other. When ChapterNumber or SectionID is unset, image paths degrade to
// the flat Images/<name> form.
type ProcessingContext struct {
	OutputRoot    string // book root; images go under OutputRoot/Images
	ChapterNumber int    // 0 = unset
	SectionID     string // "" = unset
}

// ImageAsset describes a downloaded image.
type ImageAsset struct {
	SourceURL string
	MIMEType  string
	Ext       string // derived from MIME type, never from the URL
	RelPath   string // relative path for \includegraphics
	AbsPath   string // absolute on-disk path
	Size      int64
}

// ImageFetcher downloads an image reference and stores it under the
// context's image tree. Implementations cache by destination path.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string, pc ProcessingContext) (ImageAsset, error)
}

// ImageTranscoder converts a fetched asset to a LaTeX-friendly format.
// It never fails: when every backend is exhausted it returns the original
// relative path unchanged (degraded but accepted behavior).
type ImageTranscoder interface {
	ToPNG(ctx context.Context, asset ImageAsset) string
}

// HTMLConverter turns an HTML snippet into a LaTeX fragment. Conversion
// never fails from the caller's perspective: implementations fall back to a
// regex converter when the primary path is unavailable.
type HTMLConverter interface {
	Convert(ctx context.Context, html string) string
}

// MarkdownConverter turns Markdown text into a LaTeX fragment, with the
// same no-fail contract as HTMLConverter.
type MarkdownConverter interface {
	Convert(ctx context.Context, markdown string) string
}

// Logger receives diagnostic output (fallback activation, transcode
// degradation, cache hits). The default logger discards everything.
type Logger interface {
	Logf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Logf(string, ...any) {}
