package coursetex

import (
	"errors"
	"testing"
)

func TestParseSection(t *testing.T) {
	t.Run("well-formed section", func(t *testing.T) {
		payload := `{
			"summary": {"title": "Intro", "description": "About"},
			"components": [
				{"type": "SlateHTML", "content": {"html": "<p>hi</p>"}},
				{"type": "MarkdownEditor", "content": {"text": "# Title"}}
			]
		}`

		section, err := ParseSection([]byte(payload))
		if err != nil {
			t.Fatalf("ParseSection() error: %v", err)
		}
		if section.Summary.Title != "Intro" {
			t.Errorf("Summary.Title = %q, want %q", section.Summary.Title, "Intro")
		}
		if len(section.Components) != 2 {
			t.Fatalf("len(Components) = %d, want 2", len(section.Components))
		}
		if section.Components[0].Type != TypeSlateHTML {
			t.Errorf("Components[0].Type = %q, want %q", section.Components[0].Type, TypeSlateHTML)
		}
		if got := section.Components[0].Content["html"]; got != "<p>hi</p>" {
			t.Errorf("Components[0].Content[html] = %v, want <p>hi</p>", got)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseSection([]byte("{not json"))
		if !errors.Is(err, ErrNotSection) {
			t.Errorf("ParseSection() err = %v, want ErrNotSection", err)
		}
	})

	t.Run("components is not a list", func(t *testing.T) {
		_, err := ParseSection([]byte(`{"components": "nope"}`))
		if !errors.Is(err, ErrNotSection) {
			t.Errorf("ParseSection() err = %v, want ErrNotSection", err)
		}
	})

	t.Run("non-object content tolerated", func(t *testing.T) {
		payload := `{"components": [{"type": "SlateHTML", "content": "just a string"}]}`

		section, err := ParseSection([]byte(payload))
		if err != nil {
			t.Fatalf("ParseSection() error: %v", err)
		}
		if section.Components[0].Content != nil {
			t.Errorf("Content = %v, want nil for non-object content", section.Components[0].Content)
		}
	})

	t.Run("missing content tolerated", func(t *testing.T) {
		payload := `{"components": [{"type": "MarkMap"}]}`

		section, err := ParseSection([]byte(payload))
		if err != nil {
			t.Fatalf("ParseSection() error: %v", err)
		}
		if section.Components[0].Type != TypeMarkMap {
			t.Errorf("Type = %q, want %q", section.Components[0].Type, TypeMarkMap)
		}
		if section.Components[0].Content != nil {
			t.Errorf("Content = %v, want nil", section.Components[0].Content)
		}
	})

	t.Run("empty payload object", func(t *testing.T) {
		section, err := ParseSection([]byte(`{}`))
		if err != nil {
			t.Fatalf("ParseSection() error: %v", err)
		}
		if len(section.Components) != 0 {
			t.Errorf("len(Components) = %d, want 0", len(section.Components))
		}
	})
}
