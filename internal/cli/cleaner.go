package cli

import (
	"github.com/chronicl/ts-api/internal/fileops"
	"github.com/chronicl/ts-api/internal/utils"
)

// Cleaner removes a previously generated client
type Cleaner struct {
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a new cleaner
func NewCleaner(diagnostics *utils.DiagnosticSystem) *Cleaner {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Cleaner{diagnostics: diagnostics}
}

// Clean deletes the generated files under outputDir and returns their paths.
// Files the generator does not own are left in place.
func (c *Cleaner) Clean(outputDir string) ([]string, error) {
	removed, err := fileops.Clean(outputDir)
	for _, path := range removed {
		c.diagnostics.Verbose("removed %s", path)
	}
	if err != nil {
		return removed, err
	}
	if len(removed) == 0 {
		c.diagnostics.Info("Nothing to clean in %s", outputDir)
	}
	return removed, nil
}
