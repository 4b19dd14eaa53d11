// Package manifest reads a YAML route manifest and turns it into route descriptors.
//
// A manifest declares the client-visible types and the routes that use them:
//
//	server_url: http://localhost:3000
//	types:
//	  - name: Auth
//	    declaration: "interface Auth { username: string, password: string, }"
//	    deps: [string]
//	routes:
//	  - method: post
//	    path: /user/login
//	    params: ["Json<Auth>", "Data<Store>"]
//	    response: Result<AuthResponse, Error>
package manifest

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/chronicl/ts-api/internal/codegen"
	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/extract"
	"github.com/chronicl/ts-api/internal/models"
	"github.com/chronicl/ts-api/internal/typeexpr"
	"github.com/chronicl/ts-api/internal/typeinfo"
)

// Manifest is the decoded document
type Manifest struct {
	ServerURL string      `yaml:"server_url"`
	Types     []TypeSpec  `yaml:"types"`
	Routes    []RouteSpec `yaml:"routes"`

	file string
}

// TypeSpec declares one named type
type TypeSpec struct {
	Name        string   `yaml:"name"`
	Expr        string   `yaml:"expr"`
	Declaration string   `yaml:"declaration"`
	Deps        []string `yaml:"deps"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line the entry starts on
func (t *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain TypeSpec
	if err := checkKeys(node, "name", "expr", "declaration", "deps"); err != nil {
		return err
	}
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.Line = node.Line
	return nil
}

// RouteSpec declares one route. Params are type expressions in handler order.
type RouteSpec struct {
	Method   string   `yaml:"method"`
	Path     string   `yaml:"path"`
	Params   []string `yaml:"params"`
	Response string   `yaml:"response"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line the entry starts on
func (r *RouteSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain RouteSpec
	if err := checkKeys(node, "method", "path", "params", "response"); err != nil {
		return err
	}
	if err := node.Decode((*plain)(r)); err != nil {
		return err
	}
	r.Line = node.Line
	return nil
}

// checkKeys rejects mapping keys outside allowed. Node.Decode does not
// inherit the decoder's KnownFields setting.
func checkKeys(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}
	return nil
}

// Load reads and decodes the manifest at path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read manifest", path, err)
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, withFile(err, path)
	}
	m.file = path
	return m, nil
}

// Decode reads a manifest from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if stderrors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, errors.WrapConfigurationError("manifest", "decode", err)
	}
	return &m, nil
}

// File returns the path the manifest was loaded from, if any
func (m *Manifest) File() string {
	return m.file
}

func (m *Manifest) location(line int) errors.SourceLocation {
	return errors.SourceLocation{File: m.fileName(), Line: line}
}

func (m *Manifest) fileName() string {
	if m.file == "" {
		return "manifest"
	}
	return m.file
}

func withFile(err error, path string) error {
	var base *errors.BaseError
	if stderrors.As(err, &base) {
		base.WithLocation(errors.SourceLocation{File: path})
	}
	return err
}

// Build defines every type and describes every route. All problems are
// reported together.
func (m *Manifest) Build() ([]models.RouteDescriptor, error) {
	registry := typeinfo.NewRegistry()
	var errs *errors.MultipleErrors

	for _, t := range m.Types {
		if _, err := registry.Define(t.Name, t.Expr, t.Declaration, t.Deps...); err != nil {
			errors.AddToMultiple(&errs, errors.ConfigurationError("type "+t.Name, err.Error()).
				WithLocation(m.location(t.Line)))
		}
	}

	routes := make([]models.RouteDescriptor, 0, len(m.Routes))
	for _, spec := range m.Routes {
		route, err := m.buildRoute(spec, registry)
		if err != nil {
			errors.AddToMultiple(&errs, err)
			continue
		}
		routes = append(routes, route)
	}

	if err := registry.Validate(); err != nil {
		errors.AddToMultiple(&errs, errors.ConfigurationError("types", err.Error()).
			WithLocation(errors.SourceLocation{File: m.fileName()}).
			WithSuggestion("Add an entry under types: for each name, or use a builtin such as string or number"))
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return routes, nil
}

func (m *Manifest) buildRoute(spec RouteSpec, registry *typeinfo.Registry) (models.RouteDescriptor, errors.CodedError) {
	label := spec.Method + " " + spec.Path
	method, err := models.ParseMethod(spec.Method)
	if err != nil {
		return models.RouteDescriptor{}, errors.ConfigurationError("route "+label, err.Error()).
			WithLocation(m.location(spec.Line))
	}

	route := models.RouteDescriptor{Method: method, Path: spec.Path}
	for i, param := range spec.Params {
		part := fmt.Sprintf("parameter %d", i+1)
		entry, err := describeParam(param, registry)
		if err != nil {
			return models.RouteDescriptor{}, m.routeError(label, part, spec.Line, err)
		}
		if entry.Kind == models.KindPath {
			if err := codegen.CheckPathChannel(spec.Path, typeinfo.IsScalar(entry.Type)); err != nil {
				return models.RouteDescriptor{}, m.routeError(label, part, spec.Line, err)
			}
		}
		route.Parameters = append(route.Parameters, entry)
	}

	if spec.Response != "" {
		response, err := describeResponse(spec.Response, registry)
		if err != nil {
			return models.RouteDescriptor{}, m.routeError(label, "response", spec.Line, err)
		}
		route.Response = response
	}
	return route, nil
}

func (m *Manifest) routeError(route, part string, line int, cause error) errors.CodedError {
	return errors.ConfigurationError("route "+route, part+" is invalid").
		WithCause(cause).
		WithLocation(m.location(line))
}

// describeParam classifies a declared parameter. Opaque parameters keep their
// spelling but are not resolved against the registry.
func describeParam(input string, registry *typeinfo.Registry) (models.ParameterEntry, error) {
	expr, err := typeexpr.Parse(input)
	if err != nil {
		return models.ParameterEntry{}, err
	}

	kind, serialized := extract.Classify(expr.Declared())
	if !serialized {
		return models.ParameterEntry{Kind: models.KindOpaque, Type: &models.TypeDescriptor{Name: expr.String()}}, nil
	}

	inner, err := expr.Inner()
	if err != nil {
		return models.ParameterEntry{}, err
	}
	return models.ParameterEntry{Kind: kind, Type: typeexpr.Describe(inner, registry)}, nil
}

// describeResponse resolves the response type; a Json<T> wrapper is unwrapped
func describeResponse(input string, registry *typeinfo.Registry) (*models.TypeDescriptor, error) {
	expr, err := typeexpr.Parse(input)
	if err != nil {
		return nil, err
	}
	if expr.IsRef() {
		return nil, errors.NewSyntaxError("response cannot be a reference").WithInput(input)
	}
	if expr.Declared().Wrapper == extract.WrapperJSON {
		if expr, err = expr.Inner(); err != nil {
			return nil, err
		}
	}
	return typeexpr.Describe(expr, registry), nil
}
