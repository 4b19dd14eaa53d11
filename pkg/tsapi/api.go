package tsapi

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/chronicl/ts-api/internal/codegen"
	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/fileops"
	"github.com/chronicl/ts-api/internal/typeinfo"
	"github.com/chronicl/ts-api/internal/utils"
)

// CollisionPolicy decides what happens when two routes derive the same client file name
type CollisionPolicy int

const (
	// CollisionOverwrite keeps the most recently registered route's module
	CollisionOverwrite CollisionPolicy = iota
	// CollisionError records a CollisionError and keeps the first route's module
	CollisionError
)

func (p CollisionPolicy) String() string {
	if p == CollisionError {
		return "error"
	}
	return "overwrite"
}

// Option configures an API
type Option func(*API)

// WithDiagnostics sets the diagnostic level. A nil writer prints to the terminal.
func WithDiagnostics(level DiagnosticLevel, w io.Writer) Option {
	return func(a *API) {
		if w == nil {
			a.diagnostics = utils.NewDiagnosticSystem(level)
			return
		}
		a.diagnostics = utils.NewWriterDiagnostics(level, w)
	}
}

// WithDiagnosticSystem shares an existing diagnostic system
func WithDiagnosticSystem(ds *utils.DiagnosticSystem) Option {
	return func(a *API) {
		if ds != nil {
			a.diagnostics = ds
		}
	}
}

// WithCollisionPolicy sets the file-name collision policy
func WithCollisionPolicy(policy CollisionPolicy) Option {
	return func(a *API) {
		a.policy = policy
	}
}

// WithData registers shared state handed to Data[T] parameters. Values are
// matched by exact type first, then by assignability, in registration order.
func WithData(values ...interface{}) Option {
	return func(a *API) {
		a.describer.shared.addData(values...)
	}
}

// WithReflector replaces the reflector used to describe Go types
func WithReflector(r *typeinfo.Reflector) Option {
	return func(a *API) {
		if r != nil {
			a.describer.reflector = r
		}
	}
}

type moduleEntry struct {
	route  RouteDescriptor
	module GeneratedModule
}

// API accumulates routes and produces their TypeScript client
type API struct {
	mu          sync.Mutex
	serverURL   string
	policy      CollisionPolicy
	diagnostics *utils.DiagnosticSystem
	describer   *describer
	emitter     *codegen.Emitter
	dispatch    *DispatchTable
	routes      []RouteDescriptor
	modules     map[string]moduleEntry
	errs        *errors.MultipleErrors
}

// New creates an API whose generated client calls serverURL
func New(serverURL string, opts ...Option) *API {
	a := &API{
		serverURL:   serverURL,
		policy:      CollisionOverwrite,
		diagnostics: utils.NewQuietDiagnostics(),
		describer: &describer{
			reflector:  typeinfo.NewReflector(),
			classifier: defaultDescriber.classifier,
			shared:     newBindShared(),
		},
		emitter:  codegen.NewEmitter(),
		dispatch: NewDispatchTable(),
		modules:  make(map[string]moduleEntry),
		errs:     errors.NewMultipleErrors(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ServerURL returns the base URL embedded in every generated module
func (a *API) ServerURL() string {
	return a.serverURL
}

// Handle describes fn and registers the resulting route and handler
func (a *API) Handle(method Method, path string, fn interface{}) *API {
	h, err := a.describer.describe(method, path, fn)
	if err != nil {
		a.mu.Lock()
		a.addError(err)
		a.mu.Unlock()
		a.diagnostics.Error("%v", err)
		return a
	}
	return a.Register(h.route, h.serve)
}

// Register adds a described route. handler may be nil for routes that only
// contribute to the client. Failures are collected and reported by Err.
func (a *API) Register(route RouteDescriptor, handler HandlerFunc) *API {
	a.mu.Lock()
	defer a.mu.Unlock()

	route.Path = codegen.NormalizePath(route.Path)
	if !route.Method.IsValid() {
		a.addError(errors.NewSignatureError(route.String(), fmt.Sprintf("unknown method %s", route.Method)))
		return a
	}

	module, err := a.emitter.Generate(route, a.serverURL)
	if err != nil {
		a.addError(err)
		a.diagnostics.Error("%s: %v", route, err)
		return a
	}

	for i, p := range route.Parameters {
		if !p.Kind.Serialized() {
			a.diagnostics.Warn("%s: parameter %d (%s) is not part of the generated client", route, i+1, typeLabel(p.Type))
		}
	}

	if existing, ok := a.modules[module.FileName]; ok && existing.route.String() != route.String() {
		collision := errors.NewCollisionError(module.FileName, existing.route.String(), route.String())
		if a.policy == CollisionError {
			a.addError(collision)
			a.diagnostics.Error("%v", collision)
			return a
		}
		a.diagnostics.Warn("%s; keeping %s", collision.Error(), route)
	}

	a.modules[module.FileName] = moduleEntry{route: route, module: module}
	a.storeRoute(route)
	if handler != nil {
		a.dispatch.Add(RouteInfo{Route: route, Handler: handler})
	}
	a.diagnostics.Debug("registered %s as %s", route, fileops.ModulePath(module.FileName))
	return a
}

func (a *API) storeRoute(route RouteDescriptor) {
	for i, r := range a.routes {
		if r.String() == route.String() {
			a.routes[i] = route
			return
		}
	}
	a.routes = append(a.routes, route)
}

func (a *API) addError(err error) {
	var coded errors.CodedError
	if stderrors.As(err, &coded) {
		a.errs.Add(coded)
		return
	}
	a.errs.Add(errors.Wrap(errors.UnknownErrorCode, "route registration failed", err))
}

func typeLabel(t *TypeDescriptor) string {
	if t == nil {
		return "unknown"
	}
	return t.TypeExpr()
}

// Err returns every registration error collected so far, or nil
func (a *API) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errs.ErrOrNil()
}

// Routes returns the registered routes in registration order
func (a *API) Routes() []RouteDescriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]RouteDescriptor(nil), a.routes...)
}

// Modules returns the generated modules sorted by file name
func (a *API) Modules() []GeneratedModule {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sortedModules()
}

func (a *API) sortedModules() []GeneratedModule {
	result := make([]GeneratedModule, 0, len(a.modules))
	for _, entry := range a.modules {
		result = append(result, entry.module)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FileName < result[j].FileName
	})
	return result
}

// Client builds the complete client export in memory
func (a *API) Client() (ClientExport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.errs.ErrOrNil(); err != nil {
		return ClientExport{}, err
	}

	modules := a.sortedModules()
	names := make([]string, 0, len(modules))
	export := ClientExport{SupportFiles: SupportFiles()}
	for _, m := range modules {
		names = append(names, m.FileName)
		export.Modules = append(export.Modules, ExportFile{
			Path:    fileops.ModulePath(m.FileName),
			Content: m.SourceText,
		})
	}

	index, err := a.emitter.EmitIndex(names)
	if err != nil {
		return ClientExport{}, err
	}
	export.Index = ExportFile{Path: fileops.IndexPath(), Content: index}
	return export, nil
}

// ExportClient writes the client into dir, creating it when missing
func (a *API) ExportClient(dir string) error {
	export, err := a.Client()
	if err != nil {
		return err
	}

	writer, err := fileops.NewWriter(dir)
	if err != nil {
		return err
	}
	written, err := writer.WriteExport(export)
	for _, path := range written {
		a.diagnostics.Debug("wrote %s", path)
	}
	if err != nil {
		a.diagnostics.Error("%v", err)
		return err
	}
	a.diagnostics.Verbose("exported %d modules to %s", len(export.Modules), writer.Root())
	return nil
}

// Mount attaches every route with a handler to server in path, method order
func (a *API) Mount(server WebServerInterface, middlewares ...MiddlewareFunc) error {
	if err := a.Err(); err != nil {
		return err
	}
	a.dispatch.MountAll(server, middlewares...)
	a.diagnostics.Verbose("mounted %d routes on %s", a.dispatch.Len(), server.Name())
	return nil
}

// Dispatch exposes the method and path dispatch table
func (a *API) Dispatch() *DispatchTable {
	return a.dispatch
}
