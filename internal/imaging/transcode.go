package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	_ "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Default raster dimensions for SVG rendering.
const (
	defaultRenderWidth  = 1200
	defaultRenderHeight = 900
)

// SVGBackend renders SVG bytes to PNG bytes. Backends are tried in order
// until one succeeds.
type SVGBackend interface {
	Name() string
	Render(ctx context.Context, svg []byte, width, height int) ([]byte, error)
}

// Transcoder converts downloaded assets into formats LaTeX can include.
// SVGs go through a backend cascade; raster formats outside the
// PNG/JPEG pair are re-encoded via the standard image registry.
type Transcoder struct {
	backends []SVGBackend
	logger   Logger
}

// NewTranscoder creates a Transcoder with the given SVG backend cascade.
func NewTranscoder(backends []SVGBackend, logger Logger) *Transcoder {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Transcoder{backends: backends, logger: logger}
}

// DefaultSVGBackends returns the standard cascade: pure-Go rasterization
// first, then a headless browser, then the ImageMagick CLI.
func DefaultSVGBackends(logger Logger) []SVGBackend {
	return []SVGBackend{
		NewOKSVGBackend(),
		NewRodBackend(logger),
		NewCLIBackend(nil),
	}
}

// ToPNG converts the asset to PNG where needed and returns the updated
// asset. PNG and JPEG pass through unchanged. On conversion failure the
// original asset is returned so the document degrades to a working (if
// plainer) state instead of aborting the section.
func (t *Transcoder) ToPNG(ctx context.Context, a Asset) (Asset, error) {
	switch strings.ToLower(a.Ext) {
	case ".png", ".jpg", ".jpeg":
		return a, nil
	case ".svg":
		return t.svgToPNG(ctx, a)
	case ".webp", ".gif", ".bmp", ".tiff", ".ico":
		return t.rasterToPNG(a)
	default:
		// .pdf and unknown formats stay as-is; the dispatcher decides
		// whether they can be included.
		return a, nil
	}
}

// Close releases any backend resources (e.g. a launched browser).
func (t *Transcoder) Close() error {
	var firstErr error
	for _, b := range t.backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (t *Transcoder) svgToPNG(ctx context.Context, a Asset) (Asset, error) {
	pngPath := replaceExt(a.AbsPath, ".png")
	if info, err := os.Stat(pngPath); err == nil && info.Size() > 0 {
		return t.asPNG(a, pngPath, info.Size()), nil
	}

	svg, err := os.ReadFile(a.AbsPath)
	if err != nil {
		return a, fmt.Errorf("reading SVG: %w", err)
	}

	for _, b := range t.backends {
		out, err := b.Render(ctx, svg, defaultRenderWidth, defaultRenderHeight)
		if err != nil {
			t.logger.Logf("SVG backend %s failed for %s: %v", b.Name(), a.RelPath, err)
			continue
		}
		if err := os.WriteFile(pngPath, out, 0o644); err != nil {
			return a, fmt.Errorf("writing PNG: %w", err)
		}
		t.logger.Logf("converted %s to PNG via %s", a.RelPath, b.Name())
		return t.asPNG(a, pngPath, int64(len(out))), nil
	}

	t.logger.Logf("all SVG backends failed for %s, keeping original", a.RelPath)
	return a, nil
}

func (t *Transcoder) rasterToPNG(a Asset) (Asset, error) {
	pngPath := replaceExt(a.AbsPath, ".png")
	if info, err := os.Stat(pngPath); err == nil && info.Size() > 0 {
		return t.asPNG(a, pngPath, info.Size()), nil
	}

	data, err := os.ReadFile(a.AbsPath)
	if err != nil {
		return a, fmt.Errorf("reading image: %w", err)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.logger.Logf("decoding %s failed (%v), keeping original", a.RelPath, err)
		return a, nil
	}

	// Flatten transparency onto white; LaTeX output is print-oriented.
	bounds := src.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return a, fmt.Errorf("encoding PNG: %w", err)
	}
	if err := os.WriteFile(pngPath, buf.Bytes(), 0o644); err != nil {
		return a, fmt.Errorf("writing PNG: %w", err)
	}

	t.logger.Logf("converted %s (%s) to PNG", a.RelPath, format)
	return t.asPNG(a, pngPath, int64(buf.Len())), nil
}

func (t *Transcoder) asPNG(a Asset, pngPath string, size int64) Asset {
	a.AbsPath = pngPath
	a.RelPath = replaceExt(a.RelPath, ".png")
	a.Ext = ".png"
	a.MIMEType = "image/png"
	a.Size = size
	return a
}

func replaceExt(p, ext string) string {
	if i := strings.LastIndex(p, "."); i >= 0 {
		return p[:i] + ext
	}
	return p + ext
}
