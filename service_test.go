package coursetex

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"
)

// slowMarkdownConverter returns its input after a per-text delay, so
// completion order differs from submission order.
type slowMarkdownConverter struct {
	delays map[string]time.Duration
}

func (c *slowMarkdownConverter) Convert(_ context.Context, markdown string) string {
	if d, ok := c.delays[markdown]; ok {
		time.Sleep(d)
	}
	return markdown
}

func mdSection(texts ...string) Section {
	var comps []Component
	for _, text := range texts {
		comps = append(comps, Component{
			Type:    TypeMarkdownEditor,
			Content: map[string]any{"text": text},
		})
	}
	return Section{Components: comps}
}

func TestProcessSectionJoinsFragmentsInOrder(t *testing.T) {
	s := newTestService()

	result := s.ProcessSection(context.Background(),
		mdSection("First sentence.", "Second sentence."), ProcessingContext{})

	expected := "First sentence.\n\nSecond sentence."
	if result.LaTeX != expected {
		t.Errorf("LaTeX = %q, want %q", result.LaTeX, expected)
	}
	if !reflect.DeepEqual(result.ComponentTypes, []string{TypeMarkdownEditor}) {
		t.Errorf("ComponentTypes = %v, want [MarkdownEditor]", result.ComponentTypes)
	}
}

func TestProcessSectionParallelPreservesOrder(t *testing.T) {
	conv := &slowMarkdownConverter{delays: map[string]time.Duration{
		"Alpha.": 40 * time.Millisecond,
		"Beta.":  20 * time.Millisecond,
		"Gamma.": 5 * time.Millisecond,
	}}
	s := newTestService(WithMarkdownConverter(conv), WithConcurrency(3))

	result := s.ProcessSection(context.Background(),
		mdSection("Alpha.", "Beta.", "Gamma."), ProcessingContext{})

	expected := "Alpha.\n\nBeta.\n\nGamma."
	if result.LaTeX != expected {
		t.Errorf("LaTeX = %q, want fragments in component order %q", result.LaTeX, expected)
	}
}

func TestProcessSectionDistinctTypesFirstSeen(t *testing.T) {
	s := newTestService()

	section := Section{Components: []Component{
		{Type: TypeSlateHTML, Content: map[string]any{"html": "a"}},
		{Type: TypeMarkdownEditor, Content: map[string]any{"text": "b"}},
		{Type: TypeSlateHTML, Content: map[string]any{"html": "c"}},
		{Type: "Bogus"},
	}}
	result := s.ProcessSection(context.Background(), section, ProcessingContext{})

	expected := []string{TypeSlateHTML, TypeMarkdownEditor, "Bogus"}
	if !reflect.DeepEqual(result.ComponentTypes, expected) {
		t.Errorf("ComponentTypes = %v, want %v", result.ComponentTypes, expected)
	}
}

func TestProcessSectionFailingComponentDoesNotAbortSiblings(t *testing.T) {
	s := newTestService(WithHTMLConverter(panicHTMLConverter{}))

	section := Section{Components: []Component{
		{Type: TypeSlateHTML, Content: map[string]any{"html": "<p>x</p>"}},
		{Type: TypeMarkdownEditor, Content: map[string]any{"text": "Still here."}},
	}}
	result := s.ProcessSection(context.Background(), section, ProcessingContext{})

	if !strings.Contains(result.LaTeX, `\textit{Error processing SlateHTML:`) {
		t.Errorf("missing error placeholder: %q", result.LaTeX)
	}
	if !strings.Contains(result.LaTeX, "Still here.") {
		t.Errorf("sibling fragment lost: %q", result.LaTeX)
	}
}

func TestProcessSectionCancelledContext(t *testing.T) {
	s := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := s.ProcessSection(ctx, mdSection("One.", "Two."), ProcessingContext{})
	if strings.TrimSpace(result.LaTeX) != "" {
		t.Errorf("LaTeX = %q, want no content after cancellation", result.LaTeX)
	}
}

func TestProcessSectionAppliesFinalPass(t *testing.T) {
	s := newTestService()

	// The word break spans the fragment text itself; only the final pass
	// repairs it.
	result := s.ProcessSection(context.Background(),
		mdSection("build-\ning blocks"), ProcessingContext{})

	if result.LaTeX != "building blocks" {
		t.Errorf("LaTeX = %q, want %q", result.LaTeX, "building blocks")
	}
}

func TestProcessSectionEmptySection(t *testing.T) {
	s := newTestService()

	result := s.ProcessSection(context.Background(), Section{}, ProcessingContext{})
	if result.LaTeX != "" {
		t.Errorf("LaTeX = %q, want empty", result.LaTeX)
	}
	if len(result.Images) != 0 {
		t.Errorf("Images = %v, want none", result.Images)
	}
	if len(result.ComponentTypes) != 0 {
		t.Errorf("ComponentTypes = %v, want none", result.ComponentTypes)
	}
}
