package fileops

import (
	"path/filepath"
	"strings"

	"github.com/chronicl/ts-api/internal/errors"
)

// PathValidator checks output locations before anything is written
type PathValidator struct{}

// NewPathValidator creates a new PathValidator instance
func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// ValidateOutputDir cleans an output directory path. It need not exist.
func (pv *PathValidator) ValidateOutputDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.ConfigurationError("output directory", "path cannot be empty").
			WithSuggestion("Pass an output directory such as ./ts")
	}
	return filepath.Clean(dir), nil
}

// Resolve joins a slash-separated relative path onto root and rejects paths
// that would land outside root
func (pv *PathValidator) Resolve(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(filepath.FromSlash(rel)) {
		return "", errors.New(errors.FileSystemErrorCode, "invalid export path").
			WithContext("path", rel)
	}

	fullPath := filepath.Join(root, filepath.FromSlash(rel))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", root, err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", fullPath, err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", errors.New(errors.FileSystemErrorCode, "path escapes output directory").
			WithContext("path", rel)
	}
	return fullPath, nil
}
