// Package codegen turns route descriptors into TypeScript client modules.
package codegen

import (
	"fmt"
	"strings"

	"github.com/chronicl/ts-api/internal/models"
	"github.com/chronicl/ts-api/internal/typeinfo"
)

// JSONMediaType is sent with every body channel
const JSONMediaType = "application/json; charset=utf-8"

// PromiseType is the client's asynchronous result wrapper
const PromiseType = "CancelablePromise"

// Param is one entry of the generated parameter signature
type Param struct {
	Name string
	Type string
}

// String renders the fragment as "body: User"
func (p Param) String() string {
	return p.Name + ": " + p.Type
}

// ClientFunctionSpec is everything the emitter needs to write one client module
type ClientFunctionSpec struct {
	Route     models.RouteDescriptor
	ServerURL string
	Method    string
	URL       string // client path, e.g. /user/{id}

	Params  []Param
	Options []string // call option lines, e.g. "body," or "query,"

	// Response is the return annotation, e.g. "CancelablePromise<User>". Empty when the route has no response.
	Response string

	Dependencies *typeinfo.DependencySet
}

// Signature renders the parameter list without parentheses
func (s ClientFunctionSpec) Signature() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Assemble builds the client function spec for a route. Parameters keep their
// declaration order; opaque parameters contribute nothing.
func Assemble(route models.RouteDescriptor, serverURL string) ClientFunctionSpec {
	spec := ClientFunctionSpec{
		Route:        route,
		ServerURL:    serverURL,
		Method:       route.Method.String(),
		URL:          ClientPath(route.Path),
		Dependencies: typeinfo.NewDependencySet(),
	}

	for _, param := range route.SerializedParameters() {
		name := param.Kind.ChannelName()
		spec.Params = append(spec.Params, Param{Name: name, Type: param.Type.TypeExpr()})
		spec.Options = append(spec.Options, optionLines(route, param)...)
		typeinfo.Collect(param.Type, spec.Dependencies)
	}

	if route.Response != nil {
		spec.Response = fmt.Sprintf("%s<%s>", PromiseType, route.Response.TypeExpr())
		typeinfo.Collect(route.Response, spec.Dependencies)
	}

	return spec
}

// optionLines describes how the client runtime serializes one channel
func optionLines(route models.RouteDescriptor, param models.ParameterEntry) []string {
	switch param.Kind {
	case models.KindBody:
		return []string{"body,", fmt.Sprintf("mediaType: %s,", quote(JSONMediaType))}
	case models.KindPath:
		segments := DynamicSegments(route.Path)
		if typeinfo.IsScalar(param.Type) && len(segments) == 1 {
			return []string{fmt.Sprintf("path: { %s: path },", propertyKey(segments[0]))}
		}
		return []string{"path,"}
	case models.KindQuery:
		return []string{"query,"}
	default:
		return nil
	}
}

func propertyKey(name string) string {
	for i, r := range name {
		isLetter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isLetter && (i == 0 || r < '0' || r > '9') {
			return quote(name)
		}
	}
	if name == "" {
		return quote(name)
	}
	return name
}
