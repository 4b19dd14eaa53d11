package tsapi

import (
	"embed"

	"github.com/chronicl/ts-api/internal/fileops"
)

//go:embed support/request.ts support/CancelablePromise.ts
var supportFS embed.FS

// SupportFiles returns the fixed runtime files written next to the generated api directory
func SupportFiles() []ExportFile {
	files := make([]ExportFile, 0, 2)
	for _, name := range []string{fileops.RequestFile, fileops.PromiseFile} {
		content, err := supportFS.ReadFile("support/" + name)
		if err != nil {
			panic("missing embedded support file " + name)
		}
		files = append(files, ExportFile{Path: name, Content: string(content)})
	}
	return files
}
