package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"

	"github.com/chronicl/ts-api/internal/utils"
)

// Environment variables read when the matching flag is not set
const (
	EnvManifest  = "TSAPI_MANIFEST"
	EnvOutputDir = "TSAPI_OUT_DIR"
	EnvServerURL = "TSAPI_SERVER_URL"
)

// Defaults used when neither flags, environment nor manifest set a value
const (
	DefaultManifest  = "tsapi.yaml"
	DefaultOutputDir = "ts"
	DefaultServerURL = "http://localhost:3000"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// ManifestPath is the YAML route manifest to generate from
	ManifestPath string

	// OutputDir receives request.ts, CancelablePromise.ts and api/
	OutputDir string

	// ServerURL overrides the manifest's server_url when set
	ServerURL string

	// Strict turns file-name collisions into errors
	Strict bool

	Verbose bool
	Quiet   bool
	Clean   bool
	Help    bool
}

// DiagnosticLevel maps -quiet and -verbose to a level
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ParseConfig reads flags from args, then fills unset values from getenv.
// A single positional argument is taken as the manifest path.
func ParseConfig(args []string, getenv func(string) string, output io.Writer) (Config, *flag.FlagSet, error) {
	var cfg Config
	fs := flag.NewFlagSet("tsapi", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.ManifestPath, "manifest", "", "YAML route manifest (env "+EnvManifest+", default "+DefaultManifest+")")
	fs.StringVar(&cfg.OutputDir, "out", "", "Output directory for the client (env "+EnvOutputDir+", default "+DefaultOutputDir+")")
	fs.StringVar(&cfg.ServerURL, "server-url", "", "Base URL of the server (env "+EnvServerURL+", default: manifest server_url or "+DefaultServerURL+")")
	fs.BoolVar(&cfg.Strict, "strict", false, "Fail when two routes generate the same client module")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output and detailed error reporting")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Only show errors and final results")
	fs.BoolVar(&cfg.Clean, "clean", false, "Delete the generated client from the output directory")
	fs.BoolVar(&cfg.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return cfg, fs, err
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		if cfg.ManifestPath != "" && cfg.ManifestPath != rest[0] {
			return cfg, fs, fmt.Errorf("manifest given twice: -manifest %s and %s", cfg.ManifestPath, rest[0])
		}
		cfg.ManifestPath = rest[0]
	default:
		return cfg, fs, fmt.Errorf("expected at most one manifest path, got %d arguments", len(rest))
	}

	if cfg.Quiet && cfg.Verbose {
		return cfg, fs, fmt.Errorf("-quiet and -verbose cannot be combined")
	}

	cfg.ManifestPath = firstNonEmpty(cfg.ManifestPath, getenv(EnvManifest), DefaultManifest)
	cfg.OutputDir = firstNonEmpty(cfg.OutputDir, getenv(EnvOutputDir), DefaultOutputDir)
	cfg.ServerURL = firstNonEmpty(cfg.ServerURL, getenv(EnvServerURL))
	return cfg, fs, nil
}

// ResolveServerURL applies the remaining precedence: the manifest, then the default
func (c Config) ResolveServerURL(manifestURL string) string {
	return firstNonEmpty(c.ServerURL, manifestURL, DefaultServerURL)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
