package tsapi

import (
	"context"
	"net/http"
	"net/url"
	"sort"
)

// fakeContext is an in-memory RequestContext
type fakeContext struct {
	method  string
	path    string
	headers map[string]string
	params  map[string]string
	query   url.Values
	form    url.Values
	cookies []*http.Cookie
	body    []byte

	status   int
	response interface{}
}

func newFakeContext(method, path string) *fakeContext {
	return &fakeContext{
		method:  method,
		path:    path,
		headers: map[string]string{},
		params:  map[string]string{},
		query:   url.Values{},
		form:    url.Values{},
	}
}

func (f *fakeContext) withParam(name, value string) *fakeContext {
	f.params[name] = value
	return f
}

func (f *fakeContext) withBody(body string) *fakeContext {
	f.body = []byte(body)
	return f
}

func (f *fakeContext) Context() context.Context { return context.Background() }
func (f *fakeContext) Method() string           { return f.method }
func (f *fakeContext) Path() string             { return f.path }
func (f *fakeContext) Header(key string) string { return f.headers[key] }
func (f *fakeContext) Param(name string) string { return f.params[name] }

func (f *fakeContext) ParamNames() []string {
	names := make([]string, 0, len(f.params))
	for name := range f.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeContext) QueryParams() map[string][]string         { return f.query }
func (f *fakeContext) FormParams() (map[string][]string, error) { return f.form, nil }
func (f *fakeContext) Cookies() []*http.Cookie                  { return f.cookies }
func (f *fakeContext) Body() ([]byte, error)                    { return f.body, nil }

func (f *fakeContext) JSON(code int, v interface{}) error {
	f.status = code
	f.response = v
	return nil
}

func (f *fakeContext) NoContent(code int) error {
	f.status = code
	return nil
}

// fakeServer records mounted routes
type fakeServer struct {
	mounted     []string
	handlers    map[string]HandlerFunc
	middlewares map[string]int
}

func newFakeServer() *fakeServer {
	return &fakeServer{handlers: map[string]HandlerFunc{}, middlewares: map[string]int{}}
}

func (s *fakeServer) RegisterRoute(method string, path string, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	key := method + " " + path
	s.mounted = append(s.mounted, key)
	s.handlers[key] = handler
	s.middlewares[key] = len(middlewares)
}

func (s *fakeServer) Use(MiddlewareFunc)           {}
func (s *fakeServer) Start(string) error         { return nil }
func (s *fakeServer) Stop(context.Context) error { return nil }
func (s *fakeServer) Name() string               { return "fake" }
