package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	coursetex "github.com/texforge/coursetex"
	"github.com/texforge/coursetex/internal/config"
	"github.com/texforge/coursetex/internal/educative"
)

// stderrLogger routes pipeline diagnostics to stderr for --verbose runs.
type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// run resolves configuration, obtains the raw section payload (local file
// or platform API), converts it, and writes the .tex output.
func run(ctx context.Context, flags *cliFlags, args []string) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	payload, err := loadPayload(ctx, flags, cfg, args)
	if err != nil {
		return err
	}

	section, err := coursetex.ParseSection(payload)
	if err != nil {
		return err
	}

	var logger coursetex.Logger
	opts := []coursetex.Option{
		coursetex.WithBaseOrigin(cfg.Course.BaseOrigin),
		coursetex.WithAuth(cfg.Auth.Token, cfg.Auth.Cookie),
		coursetex.WithWrapLimits(cfg.Convert.MaxLineLen, cfg.Convert.WrapTarget),
		coursetex.WithConcurrency(cfg.Convert.Concurrency),
	}
	if flags.verbose {
		logger = stderrLogger{}
		opts = append(opts, coursetex.WithLogger(logger))
	}

	svc := coursetex.New(opts...)
	defer svc.Close()

	outDir := cfg.Output.Dir
	result := svc.ProcessSection(ctx, section, coursetex.ProcessingContext{
		OutputRoot:    outDir,
		ChapterNumber: flags.chapter,
		SectionID:     flags.sectionID,
	})

	outPath := resolveOutputPath(flags, outDir, section)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(result.LaTeX+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if flags.verbose {
		fmt.Fprintf(os.Stderr, "wrote %s (%d components: %s, %d images)\n",
			outPath, len(section.Components),
			strings.Join(result.ComponentTypes, ", "), len(result.Images))
	}
	return nil
}

// resolveConfig loads the config file when given and overlays flag values.
// Without a config file, flags and environment variables stand alone.
func resolveConfig(flags *cliFlags) (*config.Config, error) {
	var cfg *config.Config
	if flags.config != "" {
		loaded, err := config.LoadConfig(flags.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
		if token := os.Getenv("EDUCATIVE_TOKEN"); token != "" {
			cfg.Auth.Token = token
		}
		if cookie := os.Getenv("EDUCATIVE_COOKIE"); cookie != "" {
			cfg.Auth.Cookie = cookie
		}
	}

	if flags.baseOrigin != "" {
		cfg.Course.BaseOrigin = flags.baseOrigin
	}
	if flags.contentType != "" {
		cfg.Course.ContentType = flags.contentType
	}
	if flags.authorID != "" {
		cfg.Course.AuthorID = flags.authorID
	}
	if flags.collectionID != "" {
		cfg.Course.CollectionID = flags.collectionID
	}
	if flags.courseSlug != "" {
		cfg.Course.CourseSlug = flags.courseSlug
	}
	if flags.output != "" && looksLikeDir(flags.output) {
		cfg.Output.Dir = flags.output
	}
	if flags.concurrency > 1 {
		cfg.Convert.Concurrency = flags.concurrency
	}

	return cfg, nil
}

// loadPayload reads the section payload from a local file when a positional
// argument is present, otherwise from the platform API.
func loadPayload(ctx context.Context, flags *cliFlags, cfg *config.Config, args []string) ([]byte, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("reading section payload: %w", err)
		}
		return data, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := educative.NewClient(educative.ClientOptions{
		BaseOrigin: cfg.Course.BaseOrigin,
		Token:      cfg.Auth.Token,
		Cookie:     cfg.Auth.Cookie,
	})

	switch cfg.Course.ContentType {
	case "interview-prep":
		if flags.sectionSlug == "" {
			return nil, fmt.Errorf("--section-slug is required for interview-prep content")
		}
		return client.FetchModulePage(ctx, cfg.Course.CourseSlug, flags.sectionSlug)
	default:
		if flags.pageID == "" {
			return nil, fmt.Errorf("--page-id is required for course content")
		}
		return client.FetchCoursePage(ctx, cfg.Course.AuthorID, cfg.Course.CollectionID, flags.pageID)
	}
}

// resolveOutputPath picks the .tex destination: an explicit file path wins,
// a directory (or no flag) gets a section-derived filename.
func resolveOutputPath(flags *cliFlags, outDir string, section coursetex.Section) string {
	if flags.output != "" && !looksLikeDir(flags.output) {
		return flags.output
	}

	name := flags.sectionID
	if name == "" {
		name = sanitizeFilename(section.Summary.Title)
	}
	if name == "" {
		name = "section"
	}
	return filepath.Join(outDir, name+".tex")
}

// looksLikeDir reports whether path is an existing directory or ends with a
// path separator.
func looksLikeDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// sanitizeFilename reduces a section title to a safe filename stem.
func sanitizeFilename(title string) string {
	title = strings.TrimSpace(strings.ToLower(title))
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
