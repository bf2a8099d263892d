package download

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/flytam/filenamify"
	log "github.com/sirupsen/logrus"
)

// TimeLayout formats the capture timestamps embedded in generated names and
// collision suffixes.
const TimeLayout = "20060102_150405"

const (
	generatedPrefix = "downloaded_image_"
	fallbackExt     = ".jpg"
)

// ResolveFilename picks the name an image fetched from rawURL should be saved
// under. The extension follows the declared content type. exists reports
// whether a name is already taken in the destination directory; if the
// preferred name is taken, a timestamp suffix is inserted before the
// extension. ResolveFilename never writes anything.
//
// Two collisions within the same second produce the same suffixed name. The
// commit step refuses to overwrite, so such a fetch fails instead.
func ResolveFilename(rawURL string, contentType string, types TypeTable, exists func(name string) bool, now time.Time) string {
	ext := types.Extension(contentType)
	base := urlBase(rawURL)

	var name string
	switch {
	case base == "" || ext == "":
		if ext == "" {
			ext = fallbackExt
		}
		name = generatedPrefix + now.Format(TimeLayout) + ext

	case strings.HasSuffix(strings.ToLower(base), strings.ToLower(ext)):
		name = base

	default:
		name = strings.TrimSuffix(base, path.Ext(base)) + ext
	}

	if exists(name) {
		e := path.Ext(name)
		suffixed := strings.TrimSuffix(name, e) + "_" + now.Format(TimeLayout) + e
		log.Debugf("name taken: %s --> %s", name, suffixed)
		name = suffixed
	}

	return name
}

// urlBase returns the last segment of the url's path, made safe for use as a
// filename. It returns "" if the url has no usable final segment.
func urlBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}

	base := path.Base(p)
	if base == "." || base == ".." || base == "/" {
		return ""
	}

	safe, err := filenamify.Filenamify(base, filenamify.Options{})
	if err != nil {
		log.WithError(err).Debugf("failed to sanitize url path segment: %s", base)
		return ""
	}
	return safe
}
