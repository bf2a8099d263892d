package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/media"
	"github.com/ccollins476ad/imgfetch/media/imgbb"
	"github.com/ccollins476ad/imgfetch/media/imgur"
	"github.com/ccollins476ad/imgfetch/media/postimg"
	"github.com/ccollins476ad/imgfetch/urlinput"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		printFatalError(err)
		os.Exit(1)
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	err = run(context.Background(), cfg, os.Stdin, os.Stdout)
	if err != nil {
		printFatalError(err)
		os.Exit(2)
	}
}

// run greets the operator, collects urls, and fetches them one at a time.
// Per-url failures are reported, not returned; only unreadable input is an
// error.
func run(ctx context.Context, cfg *Config, stdin io.Reader, stdout io.Writer) error {
	fmt.Fprintln(stdout, "Welcome to the Image Fetcher")
	fmt.Fprintln(stdout, "A tool for mindfully collecting images from the web")
	fmt.Fprintln(stdout)

	urls, err := collectURLs(cfg, stdin, stdout)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintf(stdout, "%s No valid URLs provided.\n", failMark)
		return nil
	}

	s := download.NewStore(cfg.DestDir, storeOptions(cfg))

	var exps []media.Expander
	if cfg.Expand {
		exps = []media.Expander{
			imgur.NewExpander(s.HTTPClient()),
			postimg.NewExpander(s.HTTPClient()),
			imgbb.NewExpander(s.HTTPClient()),
		}
	}

	sum := processURLs(ctx, stdout, s, exps, urls)

	printSummary(stdout, sum)
	fmt.Fprintln(stdout, "Connection strengthened. Community enriched.")
	return nil
}

// collectURLs gathers urls from the command line and the input file. If
// neither supplies any, it prompts for a comma-separated line on stdin.
func collectURLs(cfg *Config, stdin io.Reader, stdout io.Writer) ([]string, error) {
	var urls []string
	for _, arg := range cfg.URLs {
		urls = append(urls, urlinput.SplitList(arg)...)
	}

	if cfg.InputFile != "" {
		f, err := os.Open(cfg.InputFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		found, err := urlinput.Extract(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", cfg.InputFile, err)
		}
		log.Debugf("found %d url(s) in %s", len(found), cfg.InputFile)
		urls = append(urls, found...)
	}

	if len(cfg.URLs) > 0 || cfg.InputFile != "" {
		return urls, nil
	}

	fmt.Fprint(stdout, "Please enter image URL(s) (comma-separated for multiple): ")
	return urlinput.ReadList(stdin)
}

func storeOptions(cfg *Config) download.Options {
	opts := download.Options{
		Policy: download.Policy{
			Types:    cfg.Types,
			MaxBytes: cfg.MaxSize,
		},
		ProbeTimeout: cfg.ProbeTimeout,
		FetchTimeout: cfg.FetchTimeout,
		Hasher:       cfg.Hasher,
		Jobs:         cfg.Jobs,
	}
	if cfg.Progress {
		opts.Progress = os.Stderr
	}
	return opts
}
