package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is the hex encoded hash of a file's full contents.
type Digest string

// Hasher names a hash algorithm and constructs fresh instances of it.
type Hasher struct {
	Name string
	New  func() hash.Hash
}

var (
	SHA256 = Hasher{Name: "sha256", New: sha256.New}
	BLAKE3 = Hasher{Name: "blake3", New: func() hash.Hash { return blake3.New() }}
)

// ParseHasher returns the hasher with the given name.
func ParseHasher(name string) (Hasher, error) {
	switch name {
	case "", SHA256.Name:
		return SHA256, nil
	case BLAKE3.Name:
		return BLAKE3, nil
	default:
		return Hasher{}, fmt.Errorf("unknown hash algorithm: %s", name)
	}
}

// HashReader consumes r and returns the digest of everything it produced.
func HashReader(r io.Reader, h Hasher) (Digest, error) {
	hh := h.New()
	if _, err := io.Copy(hh, r); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(hh.Sum(nil))), nil
}

// HashFile computes the digest of the file at the given path. It streams the
// file, so memory use does not depend on the file's size.
func HashFile(filename string, h Hasher) (Digest, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d, err := HashReader(f, h)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return d, nil
}
