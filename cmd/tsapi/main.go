package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chronicl/ts-api/internal/cli"
	"github.com/chronicl/ts-api/internal/utils"
)

func main() {
	cli.LoadDotEnv()
	a := &app{stderr: os.Stderr, diagnostics: utils.NewDiagnosticSystem}
	os.Exit(a.run(os.Args[1:], os.Getenv))
}

type app struct {
	stderr      io.Writer
	diagnostics func(utils.DiagnosticLevel) *utils.DiagnosticSystem
}

func (a *app) usage(fs *flag.FlagSet) {
	fmt.Fprintf(a.stderr, "Usage: tsapi [options] [manifest]\n\n")
	fmt.Fprintf(a.stderr, "TypeScript Client Generator\n")
	fmt.Fprintf(a.stderr, "Reads a YAML route manifest and writes a typed TypeScript client for it.\n\n")
	fmt.Fprintf(a.stderr, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(a.stderr, "\nOutput layout:\n")
	fmt.Fprintf(a.stderr, "  <out>/request.ts            Shared request helper\n")
	fmt.Fprintf(a.stderr, "  <out>/CancelablePromise.ts  Cancelable promise type\n")
	fmt.Fprintf(a.stderr, "  <out>/api/<name>.ts         One module per route\n")
	fmt.Fprintf(a.stderr, "  <out>/api/index.ts          Re-exports every module\n")
	fmt.Fprintf(a.stderr, "\nExamples:\n")
	fmt.Fprintf(a.stderr, "  tsapi routes.yaml                        # Generate into ./ts\n")
	fmt.Fprintf(a.stderr, "  tsapi -out web/src/client routes.yaml    # Choose the output directory\n")
	fmt.Fprintf(a.stderr, "  tsapi -strict routes.yaml                # Fail on file name collisions\n")
	fmt.Fprintf(a.stderr, "  tsapi -clean -out web/src/client         # Remove a generated client\n")
}

func (a *app) run(args []string, getenv func(string) string) int {
	cfg, fs, err := cli.ParseConfig(args, getenv, a.stderr)
	fs.Usage = func() { a.usage(fs) }
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(a.stderr, "Error: %v\n\n", err)
		a.usage(fs)
		return 2
	}
	if cfg.Help {
		a.usage(fs)
		return 0
	}

	diagnostics := a.diagnostics(cfg.DiagnosticLevel())
	diagnostics.Section("TypeScript Client Generator")

	if cfg.Clean {
		diagnostics.Info("Cleaning %s", cfg.OutputDir)
		removed, err := cli.NewCleaner(diagnostics).Clean(cfg.OutputDir)
		if err != nil {
			diagnostics.Error("Clean operation failed: %v", err)
			return 1
		}
		diagnostics.Success("Removed %d generated files", len(removed))
		return 0
	}

	if cfg.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Manifest: %s", cfg.ManifestPath)
		diagnostics.List("Output: %s", cfg.OutputDir)
		if cfg.ServerURL != "" {
			diagnostics.List("Server URL: %s", cfg.ServerURL)
		}
		diagnostics.List("Strict collisions: %t", cfg.Strict)
	}

	diagnostics.Subsection("Client Generation")
	generator := cli.NewGenerator(diagnostics)
	if err := generator.Run(cfg); err != nil {
		cli.NewDiagnosticReporterTo(cfg.Verbose, a.stderr).ReportError(err)
		return 1
	}

	summary := generator.GetSummary()
	diagnostics.Summary("Generation Complete!", summary.Stats())
	diagnostics.Success("Client written to %s", cfg.OutputDir)
	return 0
}
