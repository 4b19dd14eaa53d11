package tsapi

import (
	"sort"
	"sync"
)

// RouteInfo is one dispatch table entry
type RouteInfo struct {
	Route   RouteDescriptor
	Handler HandlerFunc
}

// Key identifies the entry by method and path, e.g. "GET /user/:id"
func (r RouteInfo) Key() string {
	return r.Route.String()
}

// DispatchTable maps method and path to a handler
type DispatchTable struct {
	mu     sync.RWMutex
	routes map[string]RouteInfo
}

// NewDispatchTable creates an empty dispatch table
func NewDispatchTable() *DispatchTable {
	return &DispatchTable{
		routes: make(map[string]RouteInfo),
	}
}

// Add stores an entry, replacing any entry with the same method and path.
// It reports whether an entry was replaced.
func (t *DispatchTable) Add(info RouteInfo) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, replaced := t.routes[info.Key()]
	t.routes[info.Key()] = info
	return replaced
}

// Lookup returns the entry for method and path
func (t *DispatchTable) Lookup(method Method, path string) (RouteInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.routes[RouteDescriptor{Method: method, Path: path}.String()]
	return info, ok
}

// Len returns the number of entries
func (t *DispatchTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// All returns every entry sorted by path, then method
func (t *DispatchTable) All() []RouteInfo {
	t.mu.RLock()
	result := make([]RouteInfo, 0, len(t.routes))
	for _, info := range t.routes {
		result = append(result, info)
	}
	t.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Route, result[j].Route
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Method < b.Method
	})
	return result
}

// MountAll attaches every entry to the server in path, method order
func (t *DispatchTable) MountAll(server WebServerInterface, middlewares ...MiddlewareFunc) {
	for _, info := range t.All() {
		server.RegisterRoute(info.Route.Method.String(), info.Route.Path, info.Handler, middlewares...)
	}
}
