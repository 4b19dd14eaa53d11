// Package fileops writes and removes generated client output.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/models"
)

// Layout of the generated output
const (
	APIDir      = "api"
	RequestFile = "request.ts"
	PromiseFile = "CancelablePromise.ts"
	IndexFile   = "index.ts"
	Extension   = ".ts"

	DirMode  os.FileMode = 0o755
	FileMode os.FileMode = 0o644
)

// Writer materializes a client export under an output directory
type Writer struct {
	root      string
	validator *PathValidator
}

// NewWriter creates a writer rooted at outputDir
func NewWriter(outputDir string) (*Writer, error) {
	validator := NewPathValidator()
	root, err := validator.ValidateOutputDir(outputDir)
	if err != nil {
		return nil, err
	}
	return &Writer{root: root, validator: validator}, nil
}

// Root returns the cleaned output directory
func (w *Writer) Root() string {
	return w.root
}

// WriteExport creates the output and api directories and writes every file of
// the export. The first failure aborts; files already written are left in place.
func (w *Writer) WriteExport(export models.ClientExport) ([]string, error) {
	for _, dir := range []string{w.root, filepath.Join(w.root, APIDir)} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return nil, errors.WrapFileSystemError("create directory", dir, err)
		}
	}

	var written []string
	for _, file := range export.Files() {
		path, err := w.WriteFile(file.Path, []byte(file.Content))
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteFile writes content to rel inside the output directory through a
// temporary file and rename. It returns the full path written.
func (w *Writer) WriteFile(rel string, content []byte) (string, error) {
	fullPath, err := w.validator.Resolve(w.root, rel)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return "", errors.WrapFileSystemError("create directory", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tsapi-*.tmp")
	if err != nil {
		return "", errors.WrapFileSystemError("create temporary file in", dir, err)
	}
	tempPath := tempFile.Name()

	_, writeErr := tempFile.Write(content)
	closeErr := tempFile.Close()
	cleanup := func() { _ = os.Remove(tempPath) }

	if writeErr != nil {
		cleanup()
		return "", errors.WrapFileSystemError("write", fullPath, writeErr)
	}
	if closeErr != nil {
		cleanup()
		return "", errors.WrapFileSystemError("write", fullPath, closeErr)
	}
	if err := os.Chmod(tempPath, FileMode); err != nil {
		cleanup()
		return "", errors.WrapFileSystemError("set mode of", fullPath, err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		cleanup()
		return "", errors.WrapFileSystemError("write", fullPath, err)
	}
	return fullPath, nil
}

// Clean removes generated output from outputDir: the support files, the index
// and the modules the index re-exports. Other files, including foreign .ts
// files in the api directory, are left alone. The api directory is removed
// when left empty. Missing files are skipped. It returns the removed paths.
func Clean(outputDir string) ([]string, error) {
	root, err := NewPathValidator().ValidateOutputDir(outputDir)
	if err != nil {
		return nil, err
	}

	var removed []string
	remove := func(path string) error {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return errors.WrapFileSystemError("remove", path, err)
		}
		removed = append(removed, path)
		return nil
	}

	apiDir := filepath.Join(root, APIDir)
	indexPath := filepath.Join(apiDir, IndexFile)
	modules, err := indexedModules(indexPath)
	if err != nil {
		return nil, err
	}
	for _, name := range modules {
		if err := remove(filepath.Join(apiDir, name+Extension)); err != nil {
			return removed, err
		}
	}

	for _, path := range []string{indexPath, filepath.Join(root, RequestFile), filepath.Join(root, PromiseFile)} {
		if err := remove(path); err != nil {
			return removed, err
		}
	}

	if rest, err := os.ReadDir(apiDir); err == nil && len(rest) == 0 {
		if err := os.Remove(apiDir); err != nil {
			return removed, errors.WrapFileSystemError("remove", apiDir, err)
		}
	}

	return removed, nil
}

var indexImport = regexp.MustCompile(`from '\./([^'/\\]+)'`)

// indexedModules returns the module names re-exported by the index at path.
// A missing index yields none.
func indexedModules(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	var names []string
	for _, match := range indexImport.FindAllStringSubmatch(string(content), -1) {
		if name := match[1]; name != "." && name != ".." {
			names = append(names, name)
		}
	}
	return names, nil
}

// ModulePath returns the export-relative path of a generated module
func ModulePath(fileName string) string {
	return APIDir + "/" + fileName + Extension
}

// IndexPath is the export-relative path of the index module
func IndexPath() string {
	return fmt.Sprintf("%s/%s", APIDir, IndexFile)
}
