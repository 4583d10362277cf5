// Package coursetex converts course sections scraped from an e-learning
// platform's JSON API into LaTeX fragments suitable for assembly into a book.
//
// A section is a list of typed rich-content components (HTML snippets,
// Markdown, diagrams, quizzes, multi-column layouts, mind-map outlines).
// Each component is converted independently; referenced images are downloaded,
// stored under a hierarchical Images/ tree, and transcoded to PNG when the
// source format is not LaTeX-friendly. Converter output passes through an
// ordered repair pipeline that fixes artifacts such as missing punctuation
// spacing, malformed \href commands, and broken sentence line-wraps.
//
// Basic usage:
//
//	svc := coursetex.New(coursetex.WithBaseOrigin("https://www.educative.io"))
//	defer svc.Close()
//
//	section, err := coursetex.ParseSection(raw)
//	if err != nil {
//		// the payload was not a component list at all
//	}
//	res := svc.ProcessSection(ctx, section, coursetex.ProcessingContext{
//		OutputRoot:    "generated_books/my-book",
//		ChapterNumber: 3,
//		SectionID:     "5126",
//	})
//
// ProcessSection always returns a LaTeX string: a component that fails to
// convert is replaced by an inline italic placeholder and its siblings are
// processed normally.
package coursetex
