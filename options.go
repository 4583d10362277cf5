package coursetex

// Line-wrap repair thresholds, tuned empirically against real course
// content. Not a contract; override with WithWrapLimits.
const (
	DefaultMaxLineLen = 150
	DefaultWrapTarget = 120
)

// DefaultBaseOrigin is the origin relative image paths resolve against.
const DefaultBaseOrigin = "https://www.educative.io"

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	baseOrigin  string
	token       string
	cookie      string
	maxLineLen  int
	wrapTarget  int
	concurrency int
}

// WithBaseOrigin sets the origin used to resolve relative image references.
func WithBaseOrigin(origin string) Option {
	return func(s *Service) { s.cfg.baseOrigin = origin }
}

// WithAuth sets the bearer token and session cookie sent on image downloads.
// Either may be empty.
func WithAuth(token, cookie string) Option {
	return func(s *Service) {
		s.cfg.token = token
		s.cfg.cookie = cookie
	}
}

// WithWrapLimits overrides the line-wrap repair thresholds: lines longer
// than maxLineLen are split at sentence boundaries into chunks of roughly
// wrapTarget characters. Panics if maxLineLen < wrapTarget or either is
// non-positive (programmer error).
func WithWrapLimits(maxLineLen, wrapTarget int) Option {
	if maxLineLen <= 0 || wrapTarget <= 0 || maxLineLen < wrapTarget {
		panic("coursetex: WithWrapLimits requires maxLineLen >= wrapTarget > 0")
	}
	return func(s *Service) {
		s.cfg.maxLineLen = maxLineLen
		s.cfg.wrapTarget = wrapTarget
	}
}

// WithConcurrency bounds how many image-bearing components may run their
// network I/O at once within a section. 1 means fully sequential.
// Fragment order is preserved regardless. Panics if n < 1.
func WithConcurrency(n int) Option {
	if n < 1 {
		panic("coursetex: WithConcurrency requires n >= 1")
	}
	return func(s *Service) { s.cfg.concurrency = n }
}

// WithLogger routes diagnostics to l instead of discarding them.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTMLConverter injects an HTML converter (e.g. a fake in tests).
func WithHTMLConverter(c HTMLConverter) Option {
	return func(s *Service) { s.htmlConv = c }
}

// WithMarkdownConverter injects a Markdown converter.
func WithMarkdownConverter(c MarkdownConverter) Option {
	return func(s *Service) { s.mdConv = c }
}

// WithImageFetcher injects an image fetcher.
func WithImageFetcher(f ImageFetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithImageTranscoder injects an image transcoder.
func WithImageTranscoder(t ImageTranscoder) Option {
	return func(s *Service) { s.transcoder = t }
}
