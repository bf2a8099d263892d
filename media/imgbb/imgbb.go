package imgbb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/web"
	"golang.org/x/net/html"
)

const defaultBase = "https://ibb.co/"

// Expander resolves imgbb albums and image pages to direct image urls. It
// implements the media.Expander interface.
type Expander struct {
	hc   *http.Client
	base string
}

func NewExpander(hc *http.Client) *Expander {
	return &Expander{
		hc:   hc,
		base: defaultBase,
	}
}

// Expand resolves imgbb media at the given url. An album yields every image
// embedded in the album page; an image page must embed exactly one. See
// media.Expander#Expand for API details.
func (e *Expander) Expand(ctx context.Context, u string) ([]string, error) {
	if strings.HasPrefix(u, e.base+"album/") {
		urls, err := e.pageImages(ctx, u)
		if err != nil {
			return nil, err
		}
		if len(urls) == 0 {
			return nil, fmt.Errorf("imgbb album contains 0 embedded image urls")
		}
		return urls, nil
	}

	if strings.HasPrefix(u, e.base) {
		urls, err := e.pageImages(ctx, u)
		if err != nil {
			return nil, err
		}
		switch len(urls) {
		case 0:
			return nil, fmt.Errorf("imgbb page lacks image link")
		case 1:
			return urls, nil
		default:
			return nil, fmt.Errorf("imgbb page contains multiple image links: first=%s second=%s", urls[0], urls[1])
		}
	}

	return nil, nil
}

// pageImages fetches the page at url=u and returns the absolute https urls of
// its embedded images.
func (e *Expander) pageImages(ctx context.Context, u string) ([]string, error) {
	body, err := download.GetBody(ctx, e.hc, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", download.ErrConnection, err)
	}
	defer body.Close()

	doc, err := web.Parse(body)
	if err != nil {
		return nil, err
	}

	return embeddedImageURLs(doc), nil
}

// embeddedImageURLs returns the https image urls embedded in an imgbb page.
// Relative sources are site chrome (logos, avatars) and are skipped.
func embeddedImageURLs(doc *html.Node) []string {
	var urls []string
	for _, src := range web.ImageSources(doc, nil) {
		if pu, err := url.Parse(src); err == nil && pu.Scheme == "https" {
			urls = append(urls, src)
		}
	}
	return urls
}
