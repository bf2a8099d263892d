package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrConnection wraps every failure that happened while talking to the
	// remote host: DNS, dial, timeouts, non-2xx statuses, broken streams.
	ErrConnection = errors.New("connection error")

	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("error status")
)

// maxPageBytes bounds the size of the non-image documents Get reads into
// memory (album pages, api responses).
const maxPageBytes = 8 * 1024 * 1024

func newRequest(ctx context.Context, method string, u string, header http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func checkStatus(rsp *http.Response) error {
	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrStatus, rsp.Status)
	}
	return nil
}

// Probe performs an http HEAD with url=u and returns the declared metadata of
// the resource. Redirects are followed. No body bytes are requested.
func Probe(ctx context.Context, hc *http.Client, u string) (*Metadata, error) {
	log.Debugf("head: %s", u)

	req, err := newRequest(ctx, http.MethodHead, u, nil)
	if err != nil {
		return nil, err
	}

	rsp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer rsp.Body.Close()

	if err := checkStatus(rsp); err != nil {
		return nil, err
	}

	return &Metadata{
		ContentType:   rsp.Header.Get("Content-Type"),
		ContentLength: rsp.ContentLength,
	}, nil
}

// GetResponse performs an http GET with url=u using the supplied client and
// header. On success the caller owns the response body.
func GetResponse(ctx context.Context, hc *http.Client, u string, header http.Header) (*http.Response, error) {
	log.Debugf("get: %s", u)

	req, err := newRequest(ctx, http.MethodGet, u, header)
	if err != nil {
		return nil, err
	}

	rsp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if err := checkStatus(rsp); err != nil {
		rsp.Body.Close()
		return nil, err
	}

	return rsp, nil
}

// GetBody calls GetResponse() and returns just the body.
func GetBody(ctx context.Context, hc *http.Client, u string, header http.Header) (io.ReadCloser, error) {
	rsp, err := GetResponse(ctx, hc, u, header)
	if err != nil {
		return nil, err
	}
	return rsp.Body, nil
}

// Get calls GetBody(), then reads the full response and returns the result.
// Responses larger than maxPageBytes are an error.
func Get(ctx context.Context, hc *http.Client, u string, header http.Header) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	body, err := GetBody(ctx, hc, u, header)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(NewCapReader(body, maxPageBytes))
}
