package fileutil

import (
	"os"
	"strings"
)

// Staging files are named <StagePrefix><random><StageSuffix>.
const (
	StagePrefix = ".imgfetch-"
	StageSuffix = ".part"
)

// FileExists returns true if a file or directory with the given path exists.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// IsDir returns true if a directory with the given path exists.
func IsDir(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.IsDir()
}

// IsRegular returns true if the given path names a regular file. Symlinks are
// followed.
func IsRegular(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.Mode().IsRegular()
}

// IsStageName returns true if the given base name looks like a staging file
// created by CreateStage.
func IsStageName(name string) bool {
	return strings.HasPrefix(name, StagePrefix) && strings.HasSuffix(name, StageSuffix)
}

// CreateStage creates a new, uniquely named staging file inside dir. The
// directory is created if it does not exist.
func CreateStage(dir string) (*os.File, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	return os.CreateTemp(dir, StagePrefix+"*"+StageSuffix)
}
