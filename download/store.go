package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ccollins476ad/imgfetch/fileutil"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrDestExists is returned when the commit step finds its destination name
// already taken. Committed files are never overwritten.
var ErrDestExists = errors.New("destination already exists")

// errDuplicateFound stops the duplicate scan early.
var errDuplicateFound = errors.New("duplicate found")

// Options configures a Store. Zero values select defaults.
type Options struct {
	Policy       Policy
	ProbeTimeout time.Duration   // Bound on the HEAD probe. Default 10s.
	FetchTimeout time.Duration   // Bound on the GET, including the body. Default 30s.
	Hasher       fileutil.Hasher // Default sha256.
	Jobs         int             // Files hashed in parallel during the duplicate scan. Default 1.
	Progress     io.Writer       // Download progress is drawn here if non-nil.
	HTTPClient   *http.Client
	Now          func() time.Time
}

// Store fetches images into a single flat directory, refusing non-images,
// oversized resources, and content that the directory already holds.
type Store struct {
	destDir string // constant

	hc       *http.Client
	policy   Policy
	probeTO  time.Duration
	fetchTO  time.Duration
	hasher   fileutil.Hasher
	jobs     int
	progress io.Writer
	now      func() time.Time
}

func NewStore(destDir string, opts Options) *Store {
	s := &Store{
		destDir:  destDir,
		hc:       opts.HTTPClient,
		policy:   opts.Policy,
		probeTO:  opts.ProbeTimeout,
		fetchTO:  opts.FetchTimeout,
		hasher:   opts.Hasher,
		jobs:     opts.Jobs,
		progress: opts.Progress,
		now:      opts.Now,
	}

	if s.hc == nil {
		s.hc = &http.Client{}
	}
	if s.policy.Types == nil {
		s.policy.Types = DefaultTypes()
	}
	if s.policy.MaxBytes <= 0 {
		s.policy.MaxBytes = DefaultMaxBytes
	}
	if s.probeTO <= 0 {
		s.probeTO = 10 * time.Second
	}
	if s.fetchTO <= 0 {
		s.fetchTO = 30 * time.Second
	}
	if s.hasher.New == nil {
		s.hasher = fileutil.SHA256
	}
	if s.jobs <= 0 {
		s.jobs = 1
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// Dir returns the directory images are saved to.
func (s *Store) Dir() string {
	return s.destDir
}

// HTTPClient returns the store's http client.
func (s *Store) HTTPClient() *http.Client {
	return s.hc
}

// Fetch downloads the image at url=u into the store's directory. It probes
// the resource's headers first and only downloads it if the policy admits
// it. The body is staged in a temporary file inside the directory, compared
// against every file already there, and committed under a fresh name unless
// it is a duplicate. Fetch never returns nil, and no staging file outlives the
// call.
func (s *Store) Fetch(ctx context.Context, u string) *Result {
	log.Debugf("fetch: %s", u)

	md, err := s.probe(ctx, u)
	if err != nil {
		return failure(u, fmt.Errorf("%w: %w", ErrConnection, err))
	}

	switch s.policy.Check(*md) {
	case RejectInvalidType:
		return &Result{
			URL:     u,
			Outcome: ValidationRejection,
			Message: fmt.Sprintf("Invalid content type for %s: %s. Must be an image.", u, md.ContentType),
		}

	case RejectTooLarge:
		return &Result{
			URL:     u,
			Outcome: ValidationRejection,
			Message: fmt.Sprintf("File too large for %s: %d bytes.", u, md.ContentLength),
		}
	}

	// stagePath is removed on every return path. After a commit it is either
	// already gone (rename) or a second link to the committed file.
	var stagePath string
	defer func() {
		if stagePath == "" {
			return
		}
		err := os.Remove(stagePath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Errorf("failed to remove staging file: %s", stagePath)
		}
	}()

	stagePath, err = s.stage(ctx, u)
	if err != nil {
		return failure(u, err)
	}

	filename := ResolveFilename(u, md.ContentType, s.policy.Types, s.exists, s.now())

	digest, err := fileutil.HashFile(stagePath, s.hasher)
	if err != nil {
		return failure(u, err)
	}
	log.Debugf("staged %s: file=%s %s=%s", u, stagePath, s.hasher.Name, digest)

	entries, err := os.ReadDir(s.destDir)
	if err != nil {
		return failure(u, err)
	}

	dup, err := s.findDuplicate(ctx, digest, entries)
	if err != nil {
		return failure(u, err)
	}
	if dup != "" {
		log.Debugf("duplicate of %s: %s", dup, u)
		return &Result{
			URL:     u,
			Outcome: DuplicateRejection,
			Message: fmt.Sprintf("Duplicate image detected for %s. Image not saved.", u),
		}
	}

	destPath := filepath.Join(s.destDir, filename)
	err = commit(stagePath, destPath)
	if err != nil {
		return failure(u, err)
	}

	log.Debugf("saved %s --> %s", u, destPath)
	return &Result{
		URL:      u,
		Outcome:  Committed,
		Filename: filename,
		Path:     destPath,
		Message:  fmt.Sprintf("Successfully fetched: %s", filename),
	}
}

func (s *Store) probe(ctx context.Context, u string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTO)
	defer cancel()

	return Probe(ctx, s.hc, u)
}

// stage downloads the body at url=u into a new staging file and returns the
// file's path. The path is returned whenever the file was created, even on
// error, so the caller can remove it.
func (s *Store) stage(ctx context.Context, u string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTO)
	defer cancel()

	rsp, err := GetResponse(ctx, s.hc, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer rsp.Body.Close()

	f, err := fileutil.CreateStage(s.destDir)
	if err != nil {
		return "", err
	}
	stagePath := f.Name()

	var w io.Writer = f
	if s.progress != nil {
		bar := s.newProgressBar(rsp.ContentLength, filepath.Base(u))
		defer bar.Finish()
		w = io.MultiWriter(f, bar)
	}

	cr := NewCapReader(rsp.Body, s.policy.MaxBytes)
	_, err = io.Copy(w, cr)
	if err != nil {
		f.Close()
		return stagePath, err
	}

	err = f.Close()
	if err != nil {
		return stagePath, err
	}

	log.Debugf("downloaded %d bytes: %s", cr.N(), u)
	return stagePath, nil
}

func (s *Store) newProgressBar(size int64, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// exists reports whether name is taken in the store's directory.
func (s *Store) exists(name string) bool {
	return fileutil.FileExists(filepath.Join(s.destDir, name))
}

// findDuplicate hashes each regular file in entries and returns the name of
// the first one whose digest equals d. It returns "" if there is no match.
// Staging files, including the caller's own, are skipped.
func (s *Store) findDuplicate(ctx context.Context, d fileutil.Digest, entries []fs.DirEntry) (string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	var matchMtx sync.Mutex // Protects "match".
	var match string

	for _, e := range entries {
		name := e.Name()
		if fileutil.IsStageName(name) {
			continue
		}

		path := filepath.Join(s.destDir, name)
		if !fileutil.IsRegular(path) {
			continue
		}

		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			other, err := fileutil.HashFile(path, s.hasher)
			if errors.Is(err, fs.ErrNotExist) {
				// Removed since the listing was taken.
				return nil
			}
			if err != nil {
				return err
			}

			if other == d {
				matchMtx.Lock()
				if match == "" {
					match = name
				}
				matchMtx.Unlock()
				return errDuplicateFound
			}
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, errDuplicateFound) {
		return match, nil
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return "", nil
}

// commit gives the staged file its final name. It fails with ErrDestExists
// rather than replace an existing file. The staging name may still exist
// afterwards; the caller removes it.
func commit(stagePath string, destPath string) error {
	err := os.Link(stagePath, destPath)
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrDestExists, destPath)
	}

	// Hard links are not supported everywhere (e.g., some network and fuse
	// filesystems). Fall back to a rename guarded by an existence check.
	log.WithError(err).Debugf("link failed, renaming instead: %s", destPath)
	if fileutil.FileExists(destPath) {
		return fmt.Errorf("%w: %s", ErrDestExists, destPath)
	}
	return os.Rename(stagePath, destPath)
}
