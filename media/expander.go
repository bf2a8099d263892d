package media

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Expander turns a link to a hosted image page or album into the urls of the
// images themselves. Most expander implementations only know how to read a
// particular web site (e.g., imgur).
type Expander interface {
	// Expand returns the direct image urls behind url=u. It returns nil
	// and no error if it does not recognize the url.
	Expand(ctx context.Context, u string) ([]string, error)
}

// ExpandAll asks each expander in turn to expand url=u. The first expander
// that recognizes the url wins. A url that no expander recognizes is returned
// unchanged.
func ExpandAll(ctx context.Context, exps []Expander, u string) ([]string, error) {
	for _, e := range exps {
		urls, err := e.Expand(ctx, u)
		if err != nil {
			return nil, err
		}
		if urls != nil {
			log.Debugf("expanded %s into %d url(s)", u, len(urls))
			return urls, nil
		}
	}
	return []string{u}, nil
}
