package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/fileutil"
	"github.com/spf13/pflag"
)

const defaultDestDir = "Fetched_Images"

type Config struct {
	URLs         []string      // Urls given on the command line.
	InputFile    string        // File to extract urls from, if any.
	DestDir      string        // Directory images are saved to.
	Verbose      bool          // True for verbose output.
	Jobs         int           // Number of files hashed in parallel during the duplicate scan.
	MaxSize      int64         // Largest image accepted, in bytes.
	ProbeTimeout time.Duration // Bound on each HEAD probe.
	FetchTimeout time.Duration // Bound on each download.
	Types        download.TypeTable
	Hasher       fileutil.Hasher
	Expand       bool // Resolve imgur/postimg/imgbb pages to their images.
	Progress     bool // Draw a progress bar while downloading.
}

func parseArgs(args []string, output io.Writer) (*Config, error) {
	flagSet := pflag.NewFlagSet("imgfetch", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() { usage(flagSet) }

	cfg := &Config{}
	var accept []string
	var hashName string

	flagSet.StringVarP(&cfg.DestDir, "dir", "d", defaultDestDir, "directory to save images to")
	flagSet.StringVarP(&cfg.InputFile, "file", "f", "", "read urls from `path` (any text; urls are extracted)")
	flagSet.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose output")
	flagSet.IntVarP(&cfg.Jobs, "jobs", "j", 1, "files hashed in parallel when checking for duplicates")
	flagSet.Int64Var(&cfg.MaxSize, "max-size", download.DefaultMaxBytes, "largest image accepted, in bytes")
	flagSet.DurationVar(&cfg.ProbeTimeout, "probe-timeout", 10*time.Second, "timeout for each header probe")
	flagSet.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 30*time.Second, "timeout for each download")
	flagSet.StringSliceVar(&accept, "accept", nil, "extra accepted media types as `type=ext` (e.g. image/webp=.webp)")
	flagSet.StringVar(&hashName, "hash", fileutil.SHA256.Name, "digest used to detect duplicates (sha256|blake3)")
	flagSet.BoolVarP(&cfg.Expand, "expand", "x", false, "expand imgur, postimg and imgbb pages into their images")
	flagSet.BoolVar(&cfg.Progress, "progress", false, "show download progress on stderr")

	err := flagSet.Parse(args)
	if err != nil {
		return nil, err
	}

	cfg.URLs = flagSet.Args()

	if cfg.DestDir == "" {
		return nil, fmt.Errorf("--dir must not be empty")
	}
	if cfg.Jobs < 1 {
		return nil, fmt.Errorf("--jobs must be at least 1: have=%d", cfg.Jobs)
	}
	if cfg.MaxSize < 1 {
		return nil, fmt.Errorf("--max-size must be positive: have=%d", cfg.MaxSize)
	}

	cfg.Hasher, err = fileutil.ParseHasher(hashName)
	if err != nil {
		return nil, err
	}

	cfg.Types, err = parseTypes(accept)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseTypes returns the default type table extended with the given
// "type=ext" pairs.
func parseTypes(pairs []string) (download.TypeTable, error) {
	types := download.DefaultTypes()

	for _, p := range pairs {
		mt, ext, ok := strings.Cut(p, "=")
		mt = download.MediaType(mt)
		ext = strings.TrimSpace(ext)
		if !ok || mt == "" || ext == "" {
			return nil, fmt.Errorf("bad --accept value: have=%q want=type=ext", p)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		types[mt] = ext
	}

	return types, nil
}

func usage(flagSet *pflag.FlagSet) {
	out := flagSet.Output()
	fmt.Fprintf(out, "Usage: %s [option]... [url]...\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "Fetches images into a local directory, skipping non-images and duplicates.\n")
	fmt.Fprintf(out, "Without urls or --file, prompts for a comma-separated list.\n")
	flagSet.PrintDefaults()
}
