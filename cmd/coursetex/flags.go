package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all flags for the fetch-and-convert run.
type cliFlags struct {
	config      string
	baseOrigin  string
	contentType string

	// course content type
	authorID     string
	collectionID string
	pageID       string

	// interview-prep content type
	courseSlug  string
	sectionSlug string

	chapter   int
	sectionID string

	output      string
	concurrency int
	verbose     bool
}

// parseFlags parses command-line flags and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("coursetex", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.baseOrigin, "origin", "", "platform origin (default from config)")
	fs.StringVarP(&f.contentType, "type", "t", "", "content type: course, interview-prep")

	fs.StringVar(&f.authorID, "author-id", "", "course author ID")
	fs.StringVar(&f.collectionID, "collection-id", "", "course collection ID")
	fs.StringVar(&f.pageID, "page-id", "", "course page ID")

	fs.StringVar(&f.courseSlug, "course-slug", "", "interview-prep course slug")
	fs.StringVar(&f.sectionSlug, "section-slug", "", "interview-prep section slug")

	fs.IntVar(&f.chapter, "chapter", 0, "chapter number for image paths (0 = flat layout)")
	fs.StringVar(&f.sectionID, "section-id", "", "section ID for image paths")

	fs.StringVarP(&f.output, "output", "o", "", "output .tex file or directory")
	fs.IntVarP(&f.concurrency, "workers", "w", 1, "parallel component workers")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log pipeline diagnostics to stderr")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `coursetex - convert course sections to LaTeX

Usage:
  coursetex [flags]                 fetch a section from the platform API
  coursetex [flags] <section.json>  convert a local section payload

Flags:
  -c, --config string        config file name or path
      --origin string        platform origin
  -t, --type string          content type: course, interview-prep
      --author-id string     course author ID
      --collection-id string course collection ID
      --page-id string       course page ID
      --course-slug string   interview-prep course slug
      --section-slug string  interview-prep section slug
      --chapter int          chapter number for image paths
      --section-id string    section ID for image paths
  -o, --output string        output .tex file or directory
  -w, --workers int          parallel component workers (default 1)
  -v, --verbose              log pipeline diagnostics to stderr

Credentials come from the config file or the EDUCATIVE_TOKEN and
EDUCATIVE_COOKIE environment variables.
`)
}
