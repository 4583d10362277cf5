package imaging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// mimeExtensions maps Content-Type values to file extensions. URL-derived
// extensions are never trusted; the platform serves WebP under .png names
// and vice versa.
var mimeExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/x-icon":  ".ico",
	"application/pdf": ".pdf",
}

// genericExt is used when the Content-Type is unknown.
const genericExt = ".bin"

// extensionForMIME derives a file extension from a Content-Type header
// value, ignoring parameters such as charset.
func extensionForMIME(contentType string) string {
	main := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ext, ok := mimeExtensions[main]; ok {
		return ext
	}
	return genericExt
}

const defaultTimeout = 30 * time.Second

// ClientOptions configures an image download client.
type ClientOptions struct {
	BaseOrigin string // origin for resolving relative references
	Token      string // optional bearer token
	Cookie     string // optional session cookie
	Timeout    time.Duration
	Logger     Logger
}

// Client downloads images with the platform's authentication and caches
// them on disk. Downloads for a path that already exists non-empty are
// skipped without any network traffic.
type Client struct {
	http   *resty.Client
	opts   ClientOptions
	logger Logger
}

// NewClient creates a Client. Transient failures and 429 responses are
// retried, honoring Retry-After when present.
func NewClient(opts ClientOptions) *Client {
	if opts.Logger == nil {
		opts.Logger = discardLogger{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	rc := resty.New().
		SetLogger(noopRestyLogger{}).
		SetTimeout(opts.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp != nil && resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
					if t, err := http.ParseTime(retryAfter); err == nil {
						return time.Until(t), nil
					}
				}
			}
			return 2 * time.Second, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{http: rc, opts: opts, logger: opts.Logger}
}

// Fetch downloads ref into the context's image tree and returns the stored
// asset. The real format comes from the Content-Type header. A same-named
// cached file short-circuits the download entirely.
func (c *Client) Fetch(ctx context.Context, ref string, pc PathContext) (Asset, error) {
	if ref == "" {
		return Asset{}, ErrEmptyRef
	}
	if pc.OutputRoot == "" {
		return Asset{}, ErrNoOutputRoot
	}

	fullURL := c.resolveURL(ref)
	base := baseFilename(fullURL)

	// Cache probe before touching the network. The extension is not known
	// yet, so match on the bare name.
	if cached, ok := c.findCached(pc, base); ok {
		c.logger.Logf("image %s already cached at %s, skipping download", base, cached.RelPath)
		return cached, nil
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36").
		SetHeader("Accept", "image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8").
		SetHeader("Referer", c.opts.BaseOrigin+"/")
	if c.opts.Token != "" {
		req.SetHeader("Authorization", "Bearer "+c.opts.Token)
	}
	if c.opts.Cookie != "" {
		req.SetHeader("Cookie", c.opts.Cookie)
	}

	resp, err := req.Get(fullURL)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %s: %v", ErrImageFetch, fullURL, err)
	}
	if !resp.IsSuccess() {
		return Asset{}, fmt.Errorf("%w: %s: %s", ErrBadStatus, fullURL, resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 {
		return Asset{}, fmt.Errorf("%w: %s", ErrEmptyBody, fullURL)
	}

	mimeType := resp.Header().Get("Content-Type")
	ext := extensionForMIME(mimeType)
	filename := base + ext

	dir := pc.absDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Asset{}, fmt.Errorf("creating image directory: %w", err)
	}
	absPath := filepath.Join(dir, filename)

	if err := os.WriteFile(absPath, body, 0o644); err != nil {
		return Asset{}, fmt.Errorf("writing image: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(absPath)
		return Asset{}, fmt.Errorf("%w: %s", ErrEmptyBody, fullURL)
	}

	if ext == ".svg" && !bytes.HasPrefix(bytes.TrimSpace(body), []byte("<svg")) {
		// Warning only: many valid SVGs open with an XML declaration.
		c.logger.Logf("warning: SVG %s does not start with an <svg tag", filename)
	}

	c.logger.Logf("downloaded image %s (%d bytes, %s)", filename, info.Size(), mimeType)

	return Asset{
		SourceURL: fullURL,
		MIMEType:  mimeType,
		Ext:       ext,
		RelPath:   pc.relPath(filename),
		AbsPath:   absPath,
		Size:      info.Size(),
	}, nil
}

// resolveURL makes an absolute URL from a platform image reference.
func (c *Client) resolveURL(ref string) string {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return c.opts.BaseOrigin + ref
	default:
		return c.opts.BaseOrigin + "/" + ref
	}
}

// baseFilename derives a stable filename (without extension) from a URL.
// URLs with no usable path component hash to a deterministic name.
func baseFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	name := ""
	if err == nil {
		name = path.Base(parsed.Path)
		if name == "." || name == "/" {
			name = ""
		}
	}
	if name == "" {
		sum := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("image_%x", sum[:6])
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// findCached looks for an existing non-empty file for base, any extension.
func (c *Client) findCached(pc PathContext, base string) (Asset, bool) {
	entries, err := os.ReadDir(pc.absDir())
	if err != nil {
		return Asset{}, false
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), base+".") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		ext := filepath.Ext(e.Name())
		return Asset{
			Ext:     ext,
			RelPath: pc.relPath(e.Name()),
			AbsPath: filepath.Join(pc.absDir(), e.Name()),
			Size:    info.Size(),
		}, true
	}
	return Asset{}, false
}

// noopRestyLogger silences resty's internal logging; diagnostics flow
// through the pipeline's own Logger instead.
type noopRestyLogger struct{}

func (noopRestyLogger) Errorf(string, ...interface{}) {}
func (noopRestyLogger) Warnf(string, ...interface{})  {}
func (noopRestyLogger) Debugf(string, ...interface{}) {}
