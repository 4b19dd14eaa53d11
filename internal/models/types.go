package models

import (
	"fmt"
	"strings"
)

// Method is the closed set of HTTP methods a route can be declared with
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
	MethodHead
	MethodOptions
	MethodConnect
	MethodPatch
	MethodTrace
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodHead:    "HEAD",
	MethodOptions: "OPTIONS",
	MethodConnect: "CONNECT",
	MethodPatch:   "PATCH",
	MethodTrace:   "TRACE",
}

// AllMethods returns every method in declaration order
func AllMethods() []Method {
	return []Method{
		MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead,
		MethodOptions, MethodConnect, MethodPatch, MethodTrace,
	}
}

// String returns the upper-case wire name of the method
func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// IsValid reports whether m is one of the nine declared methods
func (m Method) IsValid() bool {
	return m >= 0 && int(m) < len(methodNames)
}

// ParseMethod parses a method name in any letter case
func ParseMethod(s string) (Method, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range methodNames {
		if name == upper {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("unknown HTTP method %q", s)
}

// ExtractorKind is the request channel a route parameter is sourced from
type ExtractorKind int

const (
	// KindOpaque parameters are never serialized by the client
	KindOpaque ExtractorKind = iota
	KindBody
	KindPath
	KindQuery
)

// String returns the kind's name
func (k ExtractorKind) String() string {
	switch k {
	case KindBody:
		return "Body"
	case KindPath:
		return "Path"
	case KindQuery:
		return "Query"
	default:
		return "Opaque"
	}
}

// ChannelName returns the client argument name used for the channel, or "" for opaque
func (k ExtractorKind) ChannelName() string {
	switch k {
	case KindBody:
		return "body"
	case KindPath:
		return "path"
	case KindQuery:
		return "query"
	default:
		return ""
	}
}

// Serialized reports whether the kind contributes to the generated client
func (k ExtractorKind) Serialized() bool {
	return k != KindOpaque
}

// TypeDescriptor describes one type as the client sees it.
// Identity is by Name; Expr is how the type is spelled at a use site.
type TypeDescriptor struct {
	// Name is the canonical name, e.g. "Result" or "string"
	Name string

	// Expr is the use-site expression, e.g. "Result<AuthResponse, Error>". Defaults to Name.
	Expr string

	// Declaration is the declaration text without the export qualifier.
	// Empty for builtins and composite expressions, which declare nothing.
	Declaration string

	// Dependencies are the directly nested types
	Dependencies []*TypeDescriptor
}

// TypeExpr returns the use-site expression of the descriptor
func (t *TypeDescriptor) TypeExpr() string {
	if t.Expr != "" {
		return t.Expr
	}
	return t.Name
}

// Declares reports whether the descriptor carries declaration text
func (t *TypeDescriptor) Declares() bool {
	return strings.TrimSpace(t.Declaration) != ""
}

// ParameterEntry is one classified handler parameter
type ParameterEntry struct {
	Kind ExtractorKind
	Type *TypeDescriptor
}

// RouteDescriptor is an immutable description of one registered endpoint
type RouteDescriptor struct {
	Method     Method
	Path       string
	Parameters []ParameterEntry

	// Response is nil when the route declares no response type
	Response *TypeDescriptor
}

// String identifies the route in diagnostics, e.g. "GET /user/:id"
func (r RouteDescriptor) String() string {
	return r.Method.String() + " " + r.Path
}

// SerializedParameters returns the non-opaque parameters in declaration order
func (r RouteDescriptor) SerializedParameters() []ParameterEntry {
	var result []ParameterEntry
	for _, p := range r.Parameters {
		if p.Kind.Serialized() {
			result = append(result, p)
		}
	}
	return result
}

// GeneratedModule is the client source text produced for one route
type GeneratedModule struct {
	FileName   string
	SourceText string
}

// ExportFile is one file of a client export, addressed relative to the output directory
type ExportFile struct {
	Path    string // slash-separated, e.g. "api/userLogin.ts"
	Content string
}

// ClientExport is the complete generated client: support files, the index and one module per route
type ClientExport struct {
	SupportFiles []ExportFile
	Index        ExportFile
	Modules      []ExportFile // sorted by path
}

// Files returns every file in write order: support files, index, modules
func (c ClientExport) Files() []ExportFile {
	files := make([]ExportFile, 0, len(c.SupportFiles)+1+len(c.Modules))
	files = append(files, c.SupportFiles...)
	files = append(files, c.Index)
	return append(files, c.Modules...)
}
