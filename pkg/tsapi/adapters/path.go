// Package adapters mounts tsapi routes on gin, echo and fiber.
package adapters

import (
	"strings"

	"github.com/chronicl/ts-api/internal/codegen"
)

// routeParams maps the parameter names of a route path to the keys the
// framework stores them under
type routeParams struct {
	names    []string
	keys     map[string]string
	wildcard string // route name of the trailing wildcard, "" when absent
}

func (p routeParams) key(name string) string {
	if key, ok := p.keys[name]; ok {
		return key
	}
	return name
}

// wildcardFunc returns the path token for a wildcard and the key its value is read by
type wildcardFunc func(name string) (token, key string)

// convertPath rewrites a route path for a framework. Parameters keep the
// :name form; a trailing *name is replaced by the wildcard token.
func convertPath(path string, wildcard wildcardFunc) (string, routeParams) {
	params := routeParams{keys: make(map[string]string)}
	var b strings.Builder
	for _, seg := range codegen.ParsePath(path) {
		b.WriteByte('/')
		switch seg.Kind {
		case codegen.SegmentParam:
			b.WriteString(":" + seg.Name)
			params.keys[seg.Name] = seg.Name
		case codegen.SegmentWildcard:
			token, key := wildcard(seg.Name)
			b.WriteString(token)
			params.keys[seg.Name] = key
			params.wildcard = seg.Name
		default:
			b.WriteString(seg.Name)
		}
		if seg.IsDynamic() {
			params.names = append(params.names, seg.Name)
		}
	}
	if b.Len() == 0 {
		return "/", params
	}
	return b.String(), params
}
