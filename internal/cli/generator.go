package cli

import (
	"path/filepath"
	"time"

	"github.com/chronicl/ts-api/internal/manifest"
	"github.com/chronicl/ts-api/internal/utils"
	"github.com/chronicl/ts-api/pkg/tsapi"
)

// Generator turns a route manifest into a TypeScript client on disk
type Generator struct {
	diagnostics *utils.DiagnosticSystem
	summary     GenerationSummary
}

// NewGenerator creates a generator reporting through diagnostics
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Generator{diagnostics: diagnostics}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run loads the manifest, registers every route and writes the client.
// Nothing is written when any route fails.
func (g *Generator) Run(cfg Config) error {
	start := time.Now()
	g.summary = GenerationSummary{ManifestPath: cfg.ManifestPath, OutputDir: cfg.OutputDir}

	g.diagnostics.Verbose("Loading manifest %s", cfg.ManifestPath)
	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	routes, err := m.Build()
	if err != nil {
		return err
	}
	g.summary.Types = len(m.Types)
	g.summary.Routes = len(routes)
	g.summary.ServerURL = cfg.ResolveServerURL(m.ServerURL)
	g.diagnostics.Info("Found %d routes and %d types", len(routes), len(m.Types))

	opts := []tsapi.Option{tsapi.WithDiagnosticSystem(g.diagnostics)}
	if cfg.Strict {
		opts = append(opts, tsapi.WithCollisionPolicy(tsapi.CollisionError))
	}
	api := tsapi.New(g.summary.ServerURL, opts...)
	for _, route := range routes {
		api.Register(route, nil)
	}

	export, err := api.Client()
	if err != nil {
		return err
	}
	g.summary.Modules = len(export.Modules)

	if err := api.ExportClient(cfg.OutputDir); err != nil {
		return err
	}
	for _, file := range export.Files() {
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, filepath.Join(cfg.OutputDir, filepath.FromSlash(file.Path)))
	}

	g.diagnostics.Indent()
	for _, path := range g.summary.GeneratedFiles {
		g.diagnostics.List("%s", path)
	}
	g.diagnostics.Unindent()
	g.diagnostics.Verbose("Generation finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
