package postimg

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/web"
	"golang.org/x/net/html"
)

const defaultGalleryPrefix = "https://postimg.cc/gallery/"

var linkRegexp = regexp.MustCompile(`background-image:url\('(https://i.postimg.cc/[^']+)'\)`)

// Expander resolves postimg galleries to direct image urls. It implements the
// media.Expander interface.
type Expander struct {
	hc            *http.Client
	galleryPrefix string
}

func NewExpander(hc *http.Client) *Expander {
	return &Expander{
		hc:            hc,
		galleryPrefix: defaultGalleryPrefix,
	}
}

// Expand resolves postimg galleries at the given url. See
// media.Expander#Expand for API details.
func (e *Expander) Expand(ctx context.Context, u string) ([]string, error) {
	if !strings.HasPrefix(u, e.galleryPrefix) {
		return nil, nil
	}

	body, err := download.GetBody(ctx, e.hc, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", download.ErrConnection, err)
	}
	defer body.Close()

	doc, err := web.Parse(body)
	if err != nil {
		return nil, err
	}

	urls := parseGallery(doc)
	if len(urls) == 0 {
		return nil, fmt.Errorf("postimg gallery contains 0 image links: %s", u)
	}
	return urls, nil
}

// parseGallery extracts the full size image urls from a postimg gallery page.
// Each thumbnail link carries its image in an inline background style.
func parseGallery(doc *html.Node) []string {
	var urls []string

	for _, n := range web.Links(doc) {
		matches := linkRegexp.FindStringSubmatch(web.Attr(n, "style"))
		if len(matches) > 0 {
			urls = append(urls, matches[1])
		}
	}

	return urls
}
