package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/chronicl/ts-api/internal/errors"
)

// DiagnosticReporter prints failed generations in a readable form
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterTo(verbose, os.Stderr)
}

// NewDiagnosticReporterTo creates a reporter writing to out
func NewDiagnosticReporterTo(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err. Collected errors are printed one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Client Generation Failed\n")
	fmt.Fprintf(r.out, "===============================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "%d problems found\n\n", multi.Count())
		for i, coded := range multi.Errors {
			fmt.Fprintf(r.out, "[%d/%d] ", i+1, multi.Count())
			r.reportCoded(coded)
		}
		return
	}

	var coded errors.CodedError
	if stderrors.As(err, &coded) {
		r.reportCoded(coded)
		return
	}
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
}

func (r *DiagnosticReporter) reportCoded(err errors.CodedError) {
	title := errorTitle(err.ErrorCode())
	color.New(color.FgRed, color.Bold).Fprintf(r.out, "%s\n", title)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(title)))

	fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc.String())
	}
	fmt.Fprintln(r.out)

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	if r.verbose {
		r.printErrorChain(err)
	}
}

func errorTitle(code errors.ErrorCode) string {
	switch code {
	case errors.SignatureErrorCode:
		return "Handler Signature Error"
	case errors.CollisionErrorCode:
		return "File Name Collision"
	case errors.SyntaxErrorCode:
		return "Type Expression Syntax Error"
	case errors.TemplateErrorCode:
		return "Template Error"
	case errors.FileSystemErrorCode:
		return "File System Error"
	case errors.ConfigurationErrorCode:
		return "Manifest Error"
	case errors.BindingErrorCode:
		return "Request Binding Error"
	default:
		return "Error"
	}
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintln(r.out)
}

// formatContextKey turns snake_case into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	cause := stderrors.Unwrap(err)
	if cause == nil {
		return
	}
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(r.out, "    %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
	fmt.Fprintln(r.out)
}

// GenerationSummary contains information about one generation run
type GenerationSummary struct {
	ManifestPath   string
	OutputDir      string
	ServerURL      string
	Types          int
	Routes         int
	Modules        int
	GeneratedFiles []string
}

// Stats returns the summary in the form DiagnosticSystem.Summary prints
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Manifest":  s.ManifestPath,
		"Output":    s.OutputDir,
		"ServerURL": s.ServerURL,
		"Types":     s.Types,
		"Routes":    s.Routes,
		"Modules":   s.Modules,
		"Files":     len(s.GeneratedFiles),
	}
}
