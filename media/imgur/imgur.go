package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/koffeinsource/go-imgur"
	log "github.com/sirupsen/logrus"
)

const (
	clientID = "ab1802d70cb1deb"

	albumPrefix = "https://imgur.com/a/"
	imagePrefix = "https://i.imgur.com/"
	pagePrefix  = "https://imgur.com/"

	defaultAPIBase = "https://api.imgur.com/3/album/"
)

var getHeader = http.Header{
	"Authorization": []string{"Client-ID " + clientID},
	"referer":       []string{"https://imgur.com/"},
	"origin":        []string{"https://imgur.com"},
	"user-agent":    []string{"curl/7.84.0"},
}

type albumInfoDataWrapper struct {
	AI      *imgur.AlbumInfo `json:"data"`
	Success bool             `json:"success"`
	Status  int              `json:"status"`
}

// Expander resolves imgur albums and image pages to direct image urls. It
// implements the media.Expander interface.
type Expander struct {
	hc      *http.Client
	apiBase string
}

func NewExpander(hc *http.Client) *Expander {
	return &Expander{
		hc:      hc,
		apiBase: defaultAPIBase,
	}
}

// Expand resolves imgur media at the given url. Direct image links
// (i.imgur.com) are not expanded. See media.Expander#Expand for API details.
func (e *Expander) Expand(ctx context.Context, u string) ([]string, error) {
	// Album.
	if strings.HasPrefix(u, albumPrefix) {
		return e.albumLinks(ctx, u)
	}

	// Already a direct image link.
	if strings.HasPrefix(u, imagePrefix) {
		return nil, nil
	}

	// Alternate image url format:
	//     https://imgur.com/<image_id>
	imageID := strings.TrimPrefix(u, pagePrefix)
	if imageID != u && len(imageID) == 7 && !strings.Contains(imageID, "/") {
		return []string{imagePrefix + imageID + ".jpeg"}, nil
	}

	return nil, nil
}

// albumHash extracts the 7 character album hash from an album url. Albums
// with a title slug (https://imgur.com/a/some-title-<hash>) carry the hash at
// the end.
func albumHash(u string) (string, error) {
	trimmed := strings.TrimPrefix(u, albumPrefix)
	if len(trimmed) < 7 {
		return "", fmt.Errorf("imgur album hash length too short: have=%d want=7 hash=%s", len(trimmed), trimmed)
	}
	if len(trimmed) > 7 {
		hash := trimmed[len(trimmed)-7:]
		log.Debugf("removing imgur album prefix: %s --> %s", trimmed, hash)
		trimmed = hash
	}
	return trimmed, nil
}

// albumLinks reads the imgur album at the specified url and returns the urls
// of all its images.
func (e *Expander) albumLinks(ctx context.Context, u string) ([]string, error) {
	log.Debugf("scanning imgur album: %s", u)

	hash, err := albumHash(u)
	if err != nil {
		return nil, err
	}

	b, err := download.Get(ctx, e.hc, e.apiBase+hash, getHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", download.ErrConnection, err)
	}

	aidw := &albumInfoDataWrapper{}
	err = json.Unmarshal(b, aidw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode album info: %w", err)
	}

	if !aidw.Success || aidw.AI == nil {
		return nil, fmt.Errorf("album info response has success=false status=%d", aidw.Status)
	}

	links := []string{}
	for _, img := range aidw.AI.Images {
		log.Debugf("detected imgur album image link: %s", img.Link)
		links = append(links, img.Link)
	}

	return links, nil
}
