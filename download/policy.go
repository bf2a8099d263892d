package download

import (
	"fmt"
	"mime"
	"strings"
)

// DefaultMaxBytes is the largest image the default policy admits (10 MiB).
const DefaultMaxBytes = 10 * 1024 * 1024

// Metadata is what a HEAD probe reveals about a remote resource.
type Metadata struct {
	ContentType   string // As declared by the server; may be empty.
	ContentLength int64  // -1 if the server did not declare one.
}

// Verdict is the outcome of checking Metadata against a Policy.
type Verdict int

const (
	Admit Verdict = iota
	RejectInvalidType
	RejectTooLarge
)

func (v Verdict) String() string {
	switch v {
	case Admit:
		return "admit"
	case RejectInvalidType:
		return "invalid-type"
	case RejectTooLarge:
		return "too-large"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// TypeTable maps accepted media types to the file extension images of that
// type are saved with. A type is accepted if and only if it is in the table.
type TypeTable map[string]string

// DefaultTypes returns a fresh copy of the raster image types accepted by
// default.
func DefaultTypes() TypeTable {
	return TypeTable{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/bmp":  ".bmp",
	}
}

// Extension returns the extension for the given Content-Type header value,
// or "" if the type is not in the table.
func (tt TypeTable) Extension(contentType string) string {
	return tt[MediaType(contentType)]
}

// Accepts returns true if the given Content-Type header value is in the
// table.
func (tt TypeTable) Accepts(contentType string) bool {
	_, ok := tt[MediaType(contentType)]
	return ok
}

// MediaType strips parameters from a Content-Type header value and lowercases
// what remains, e.g., "Image/PNG; charset=binary" --> "image/png".
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// Policy decides which resources are worth downloading, based only on what
// the server declares up front.
type Policy struct {
	Types    TypeTable
	MaxBytes int64
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		Types:    DefaultTypes(),
		MaxBytes: DefaultMaxBytes,
	}
}

// Check returns a verdict for the given metadata. A missing content length is
// not grounds for rejection.
func (p Policy) Check(md Metadata) Verdict {
	if !p.Types.Accepts(md.ContentType) {
		return RejectInvalidType
	}
	if md.ContentLength >= 0 && md.ContentLength > p.MaxBytes {
		return RejectTooLarge
	}
	return Admit
}
