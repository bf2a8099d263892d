package postimg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const galleryPage = `<html><body>
<div class="thumb"><a href="https://postimg.cc/abc123" style="background-image:url('https://i.postimg.cc/abc123/first.png')"></a></div>
<div class="thumb"><a href="https://postimg.cc/def456" style="background-image:url('https://i.postimg.cc/def456/second.jpg')"></a></div>
<a href="https://postimg.cc/">home</a>
</body></html>`

func TestExpandGallery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(galleryPage))
	}))
	defer server.Close()

	e := NewExpander(server.Client())
	e.galleryPrefix = server.URL + "/gallery/"

	got, err := e.Expand(context.Background(), server.URL+"/gallery/xyz")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://i.postimg.cc/abc123/first.png",
		"https://i.postimg.cc/def456/second.jpg",
	}, got)
}

func TestExpandEmptyGallery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer server.Close()

	e := NewExpander(server.Client())
	e.galleryPrefix = server.URL + "/gallery/"

	_, err := e.Expand(context.Background(), server.URL+"/gallery/xyz")
	assert.ErrorContains(t, err, "0 image links")
}

func TestExpandIgnoresOtherURLs(t *testing.T) {
	e := NewExpander(http.DefaultClient)

	got, err := e.Expand(context.Background(), "https://i.postimg.cc/abc123/first.png")
	require.NoError(t, err)
	assert.Nil(t, got)
}
