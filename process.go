package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/media"
	log "github.com/sirupsen/logrus"
)

const (
	okMark   = "✓"
	failMark = "✗"
)

// Summary counts the outcomes of a run.
type Summary struct {
	Processed int
	Succeeded int
}

// processURLs fetches each url in turn, printing one status report per url to
// w. A url that an expander recognizes is replaced by the images behind it.
// Failures never stop the run.
func processURLs(ctx context.Context, w io.Writer, s *download.Store, exps []media.Expander, urls []string) Summary {
	var sum Summary

	for _, u := range urls {
		targets, err := media.ExpandAll(ctx, exps, u)
		if err != nil {
			log.WithError(err).Debugf("failed to expand link: link=%s", u)
			report(w, &download.Result{
				URL:     u,
				Outcome: download.ConnectionError,
				Message: fmt.Sprintf("Connection error for %s: %v", u, err),
				Err:     err,
			})
			sum.Processed++
			continue
		}

		for _, t := range targets {
			r := s.Fetch(ctx, t)
			report(w, r)

			sum.Processed++
			if r.OK() {
				sum.Succeeded++
			}
		}
	}

	return sum
}

// report prints the status line(s) for one fetch.
func report(w io.Writer, r *download.Result) {
	if r.OK() {
		fmt.Fprintf(w, "%s %s\n", okMark, r.Message)
		fmt.Fprintf(w, "%s Image saved to %s\n", okMark, r.Path)
		return
	}

	log.WithError(r.Err).Debugf("fetch failed: url=%s outcome=%s", r.URL, r.Outcome)
	fmt.Fprintf(w, "%s %s\n", failMark, r.Message)
}

func printSummary(w io.Writer, sum Summary) {
	fmt.Fprintf(w, "\nProcessed %d URL(s). Successfully fetched %d image(s).\n", sum.Processed, sum.Succeeded)
}
