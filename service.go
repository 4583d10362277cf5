package coursetex

import (
	"context"
	"strings"
	"sync"

	"github.com/texforge/coursetex/internal/imaging"
	"github.com/texforge/coursetex/internal/texconv"
)

// Compile-time interface implementation checks.
var (
	_ HTMLConverter     = (*texconv.HTMLConverter)(nil)
	_ MarkdownConverter = (*texconv.MarkdownConverter)(nil)
	_ ImageFetcher      = (*restyFetcher)(nil)
	_ ImageTranscoder   = (*cascadeTranscoder)(nil)
)

// Service orchestrates section-to-LaTeX conversion. Capabilities (format
// converters, image fetcher, transcoding backends) are resolved once at
// construction; the Service itself keeps no per-section state.
type Service struct {
	cfg        serviceConfig
	logger     Logger
	htmlConv   HTMLConverter
	mdConv     MarkdownConverter
	fetcher    ImageFetcher
	transcoder ImageTranscoder

	imgTranscoder *imaging.Transcoder // owned default, for Close
}

// New creates a Service with default capabilities. Use options to customize
// behavior or to inject fakes.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			baseOrigin:  DefaultBaseOrigin,
			maxLineLen:  DefaultMaxLineLen,
			wrapTarget:  DefaultWrapTarget,
			concurrency: 1,
		},
		logger: discardLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	cleaner := texconv.NewCleaner(s.cfg.maxLineLen, s.cfg.wrapTarget)
	if s.mdConv == nil {
		s.mdConv = texconv.NewMarkdownConverter(cleaner, s.logger)
	}
	if s.htmlConv == nil {
		s.htmlConv = texconv.NewHTMLConverter(cleaner, s.logger)
	}
	if s.fetcher == nil {
		s.fetcher = &restyFetcher{client: imaging.NewClient(imaging.ClientOptions{
			BaseOrigin: s.cfg.baseOrigin,
			Token:      s.cfg.token,
			Cookie:     s.cfg.cookie,
			Logger:     s.logger,
		})}
	}
	if s.transcoder == nil {
		tr := imaging.NewTranscoder(imaging.DefaultSVGBackends(s.logger), s.logger)
		s.imgTranscoder = tr
		s.transcoder = &cascadeTranscoder{tr: tr}
	}

	return s
}

// Close releases resources held by the default transcoding backends
// (a headless browser, when one was ever launched).
func (s *Service) Close() error {
	if s.imgTranscoder != nil {
		return s.imgTranscoder.Close()
	}
	return nil
}

// ProcessSection converts every component of a section, joins the fragments
// in component order, and applies cross-fragment repairs. It always returns
// a usable Result: a failing component contributes an italic placeholder
// fragment instead of aborting its siblings. Processing stops early only on
// context cancellation, at a component boundary.
func (s *Service) ProcessSection(ctx context.Context, section Section, pc ProcessingContext) Result {
	results := make([]ConversionResult, len(section.Components))

	if s.cfg.concurrency > 1 {
		s.processParallel(ctx, section.Components, pc, results)
	} else {
		for i, comp := range section.Components {
			if ctx.Err() != nil {
				break
			}
			results[i] = s.handleComponent(ctx, comp, pc)
		}
	}

	parts := make([]string, 0, len(results))
	var images []string
	for _, r := range results {
		parts = append(parts, r.LaTeX)
		images = append(images, r.Images...)
	}

	latex := strings.Join(parts, "\n\n")
	latex = texconv.FinalPass(latex)

	return Result{
		LaTeX:          latex,
		Images:         images,
		ComponentTypes: distinctTypes(section.Components),
	}
}

// processParallel runs component handlers on their own goroutines so image
// downloads do not block sibling text conversion. A semaphore bounds
// in-flight handlers; results land in a position-indexed slice, so assembly
// order never depends on completion order. The hierarchical image path
// scheme keeps concurrent writers on disjoint files.
func (s *Service) processParallel(ctx context.Context, comps []Component, pc ProcessingContext, results []ConversionResult) {
	sem := make(chan struct{}, s.cfg.concurrency)
	var wg sync.WaitGroup

	for i, comp := range comps {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, comp Component) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.handleComponent(ctx, comp, pc)
		}(i, comp)
	}

	wg.Wait()
}

// distinctTypes returns the component type names in first-seen order.
func distinctTypes(comps []Component) []string {
	seen := make(map[string]bool, len(comps))
	var types []string
	for _, c := range comps {
		t := c.Type
		if t == "" {
			t = "Unknown"
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types
}

// restyFetcher adapts the internal imaging client to the public interface.
type restyFetcher struct {
	client *imaging.Client
}

func (f *restyFetcher) Fetch(ctx context.Context, ref string, pc ProcessingContext) (ImageAsset, error) {
	a, err := f.client.Fetch(ctx, ref, imaging.PathContext{
		OutputRoot:    pc.OutputRoot,
		ChapterNumber: pc.ChapterNumber,
		SectionID:     pc.SectionID,
	})
	if err != nil {
		return ImageAsset{}, err
	}
	return ImageAsset{
		SourceURL: a.SourceURL,
		MIMEType:  a.MIMEType,
		Ext:       a.Ext,
		RelPath:   a.RelPath,
		AbsPath:   a.AbsPath,
		Size:      a.Size,
	}, nil
}

// cascadeTranscoder adapts the internal backend cascade to the public
// interface.
type cascadeTranscoder struct {
	tr *imaging.Transcoder
}

func (t *cascadeTranscoder) ToPNG(ctx context.Context, asset ImageAsset) string {
	out, err := t.tr.ToPNG(ctx, imaging.Asset{
		SourceURL: asset.SourceURL,
		MIMEType:  asset.MIMEType,
		Ext:       asset.Ext,
		RelPath:   asset.RelPath,
		AbsPath:   asset.AbsPath,
		Size:      asset.Size,
	})
	if err != nil {
		return asset.RelPath
	}
	return out.RelPath
}
