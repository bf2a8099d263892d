package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "image/gif")
		w.Header().Set("Content-Length", "1024")
	}))
	defer server.Close()

	md, err := Probe(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", md.ContentType)
	assert.Equal(t, int64(1024), md.ContentLength)
}

func TestProbeFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.png", http.StatusFound)
	})
	mux.HandleFunc("/new.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", "7")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	md, err := Probe(context.Background(), server.Client(), server.URL+"/old.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", md.ContentType)
	assert.Equal(t, int64(7), md.ContentLength)
}

func TestProbeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := Probe(context.Background(), server.Client(), server.URL)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	b, err := Get(context.Background(), server.Client(), server.URL, http.Header{"X-Test": {"yes"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestGetErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := Get(context.Background(), server.Client(), server.URL, nil)
	require.ErrorIs(t, err, ErrStatus)
	assert.True(t, strings.Contains(err.Error(), "500"))
}
