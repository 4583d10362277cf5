// Package educative fetches raw course content from the platform API.
package educative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sentinel errors for API operations.
var (
	ErrRequestFailed = errors.New("API request failed")
	ErrBadStatus     = errors.New("API returned non-success status")
	ErrEmptyResponse = errors.New("API returned empty response")
)

const defaultTimeout = 30 * time.Second

// ClientOptions configures an API client.
type ClientOptions struct {
	BaseOrigin string
	Token      string
	Cookie     string
	Timeout    time.Duration
	Logger     Logger
}

// Logger receives request diagnostics.
type Logger interface {
	Logf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Logf(string, ...any) {}

// Client talks to the course content API. Responses come back as raw JSON
// for the content parser to interpret.
type Client struct {
	http   *resty.Client
	opts   ClientOptions
	logger Logger
}

// NewClient creates a Client. 429 responses are retried with backoff.
func NewClient(opts ClientOptions) *Client {
	if opts.Logger == nil {
		opts.Logger = discardLogger{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	rc := resty.New().
		SetLogger(noopRestyLogger{}).
		SetBaseURL(opts.BaseOrigin).
		SetTimeout(opts.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{http: rc, opts: opts, logger: opts.Logger}
}

// FetchCoursePage fetches one page of a regular course collection.
func (c *Client) FetchCoursePage(ctx context.Context, authorID, collectionID, pageID string) ([]byte, error) {
	path := fmt.Sprintf("/api/collection/%s/%s/page/%s", authorID, collectionID, pageID)
	return c.get(ctx, path, "work_type", "collection")
}

// FetchModulePage fetches one section of an interview-prep module.
func (c *Client) FetchModulePage(ctx context.Context, courseSlug, sectionSlug string) ([]byte, error) {
	path := fmt.Sprintf("/api/interview-prep/%s/page/%s", courseSlug, sectionSlug)
	return c.get(ctx, path, "work_type", "module")
}

func (c *Client) get(ctx context.Context, path string, queryKV ...string) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36").
		SetHeader("Accept", "application/json").
		SetHeader("Referer", c.opts.BaseOrigin+"/")
	for i := 0; i+1 < len(queryKV); i += 2 {
		req.SetQueryParam(queryKV[i], queryKV[i+1])
	}
	if c.opts.Token != "" {
		req.SetHeader("Authorization", "Bearer "+c.opts.Token)
	}
	if c.opts.Cookie != "" {
		req.SetHeader("Cookie", c.opts.Cookie)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequestFailed, path, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: %s", ErrBadStatus, path, resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, path)
	}

	c.logger.Logf("fetched %s (%d bytes)", path, len(body))
	return body, nil
}

type noopRestyLogger struct{}

func (noopRestyLogger) Errorf(string, ...interface{}) {}
func (noopRestyLogger) Warnf(string, ...interface{})  {}
func (noopRestyLogger) Debugf(string, ...interface{}) {}
