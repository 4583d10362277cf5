package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Sentinel errors for SVG rendering backends.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrSVGRender      = errors.New("SVG rendering failed")
)

// Compile-time interface checks
var (
	_ SVGBackend = (*OKSVGBackend)(nil)
	_ SVGBackend = (*RodBackend)(nil)
	_ SVGBackend = (*CLIBackend)(nil)
)

// OKSVGBackend rasterizes SVG in pure Go. It handles the common subset of
// SVG well but has no text or filter support, so it sits first in the
// cascade and defers harder documents to the browser.
type OKSVGBackend struct{}

// NewOKSVGBackend creates an OKSVGBackend.
func NewOKSVGBackend() *OKSVGBackend {
	return &OKSVGBackend{}
}

func (b *OKSVGBackend) Name() string { return "oksvg" }

// Render rasterizes svg onto a white canvas of the given size.
// The rasterizer panics on some malformed path data; that is converted to
// an error so the cascade can move on.
func (b *OKSVGBackend) Render(ctx context.Context, svg []byte, width, height int) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrSVGRender, r)
		}
	}()

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSVGRender, err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSVGRender, err)
	}
	return buf.Bytes(), nil
}

const defaultBrowserTimeout = 30 * time.Second

// RodBackend renders SVG by screenshotting it in headless Chrome.
// Rod automatically downloads Chromium on first run if not found.
type RodBackend struct {
	browser *rod.Browser
	timeout time.Duration
	logger  Logger
}

// NewRodBackend creates a RodBackend. The browser launches lazily on the
// first render.
func NewRodBackend(logger Logger) *RodBackend {
	if logger == nil {
		logger = discardLogger{}
	}
	return &RodBackend{timeout: defaultBrowserTimeout, logger: logger}
}

func (b *RodBackend) Name() string { return "rod" }

// ensureBrowser lazily connects to the browser.
func (b *RodBackend) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Render writes the SVG to a temp file, opens it in the browser, and
// captures a PNG screenshot at the requested viewport size.
func (b *RodBackend) Render(ctx context.Context, svg []byte, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := writeTempFile(svg, "*.svg")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSVGRender, err)
	}

	if err := page.Timeout(b.timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSVGRender, err)
	}

	shot, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSVGRender, err)
	}
	return shot, nil
}

// Close releases browser resources.
func (b *RodBackend) Close() error {
	if b.browser != nil {
		err := b.browser.Close()
		b.browser = nil
		return err
	}
	return nil
}

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// CLIBackend shells out to ImageMagick. Last resort: it depends on a
// system binary, but magick's SVG support is the broadest of the three.
type CLIBackend struct {
	Runner CommandRunner
}

// NewCLIBackend creates a CLIBackend. A nil runner uses os/exec.
func NewCLIBackend(runner CommandRunner) *CLIBackend {
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &CLIBackend{Runner: runner}
}

func (b *CLIBackend) Name() string { return "magick" }

// Render invokes magick on a temp SVG file and reads back the PNG.
func (b *CLIBackend) Render(ctx context.Context, svg []byte, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inPath, cleanupIn, err := writeTempFile(svg, "*.svg")
	if err != nil {
		return nil, err
	}
	defer cleanupIn()

	outPath := inPath + ".png"
	defer os.Remove(outPath)

	_, stderr, err := b.Runner.Run("magick", inPath,
		"-resize", fmt.Sprintf("%dx%d", width, height),
		"-background", "white",
		"-alpha", "remove",
		outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSVGRender, stderr, err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading output: %v", ErrSVGRender, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: magick produced empty output", ErrSVGRender)
	}
	return out, nil
}

// writeTempFile creates a temporary file with the given content.
// Returns the file path and a cleanup function to remove the file.
func writeTempFile(content []byte, pattern string) (path string, cleanup func(), err error) {
	tmpFile, err := os.CreateTemp("", "coursetex-"+pattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	return path, cleanup, nil
}
