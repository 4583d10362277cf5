// Package imaging downloads course images over HTTP, detects their real
// format from response metadata, stores them under a deterministic
// hierarchical path, and transcodes LaTeX-unfriendly formats to PNG.
package imaging

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Sentinel errors for the image pipeline.
var (
	ErrEmptyRef     = errors.New("empty image reference")
	ErrNoOutputRoot = errors.New("path context has no output root")
	ErrImageFetch   = errors.New("image download failed")
	ErrBadStatus    = errors.New("image download returned non-success status")
	ErrEmptyBody    = errors.New("image download returned empty body")
)

// Logger receives pipeline diagnostics.
type Logger interface {
	Logf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Logf(string, ...any) {}

// Asset describes one downloaded image.
type Asset struct {
	SourceURL string
	MIMEType  string
	Ext       string // derived from the Content-Type header, never the URL
	RelPath   string // forward-slash relative path for \includegraphics
	AbsPath   string // on-disk path
	Size      int64
}

// PathContext pins where a section's images land. With chapter and section
// set, paths are hierarchical (Images/chapter_N/section_ID/); otherwise
// they degrade to the flat Images/ form. The hierarchy keeps concurrent
// sections on disjoint directories by construction.
type PathContext struct {
	OutputRoot    string
	ChapterNumber int    // 0 = unset
	SectionID     string // "" = unset
}

func (pc PathContext) hierarchical() bool {
	return pc.ChapterNumber > 0 && pc.SectionID != ""
}

// relPath builds the relative path used inside the LaTeX document.
// Always forward slashes, regardless of platform.
func (pc PathContext) relPath(filename string) string {
	if pc.hierarchical() {
		return fmt.Sprintf("Images/chapter_%d/section_%s/%s", pc.ChapterNumber, pc.SectionID, filename)
	}
	return "Images/" + filename
}

// absDir is the on-disk directory the relative paths map into.
func (pc PathContext) absDir() string {
	if pc.hierarchical() {
		return filepath.Join(pc.OutputRoot, "Images",
			fmt.Sprintf("chapter_%d", pc.ChapterNumber),
			fmt.Sprintf("section_%s", pc.SectionID))
	}
	return filepath.Join(pc.OutputRoot, "Images")
}
