package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chronicl/ts-api/pkg/tsapi"
)

// GinAdapter implements tsapi.WebServerInterface for Gin
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with a default Gin engine
func NewDefaultGinAdapter() *GinAdapter {
	return &GinAdapter{engine: gin.Default()}
}

func ginWildcard(name string) (string, string) {
	return "*" + name, name
}

// RegisterRoute registers a route with the Gin engine
func (ga *GinAdapter) RegisterRoute(method string, path string, handler tsapi.HandlerFunc, middlewares ...tsapi.MiddlewareFunc) {
	ginPath, params := convertPath(path, ginWildcard)

	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	for _, middleware := range middlewares {
		handlers = append(handlers, ga.convertMiddleware(middleware, params))
	}
	handlers = append(handlers, ga.convertHandler(handler, params))

	ga.engine.Handle(method, ginPath, handlers...)
}

// Use registers a global middleware with the Gin engine
func (ga *GinAdapter) Use(middleware tsapi.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware, routeParams{}))
}

// Start serves the engine on addr until Stop is called
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	err := ga.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// convertHandler converts tsapi.HandlerFunc to gin.HandlerFunc
func (ga *GinAdapter) convertHandler(handler tsapi.HandlerFunc, params routeParams) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler(&GinRequestContext{ctx: c, params: params}); err != nil {
			code, body := tsapi.ErrorResponse(err)
			c.JSON(code, body)
		}
	}
}

// convertMiddleware converts tsapi.MiddlewareFunc to gin.HandlerFunc. A
// middleware that returns without calling next stops the chain.
func (ga *GinAdapter) convertMiddleware(middleware tsapi.MiddlewareFunc, params routeParams) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		next := func(tsapi.RequestContext) error {
			called = true
			c.Next()
			return nil
		}

		if err := middleware(next)(&GinRequestContext{ctx: c, params: params}); err != nil {
			code, body := tsapi.ErrorResponse(err)
			c.AbortWithStatusJSON(code, body)
			return
		}
		if !called {
			c.Abort()
		}
	}
}

// GinRequestContext implements tsapi.RequestContext for Gin
type GinRequestContext struct {
	ctx    *gin.Context
	params routeParams
}

// Context returns the request context
func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// Header returns a request header
func (grc *GinRequestContext) Header(key string) string {
	return grc.ctx.GetHeader(key)
}

// Param returns a path parameter. Gin keeps the leading slash of a wildcard
// match; it is removed here.
func (grc *GinRequestContext) Param(name string) string {
	value := grc.ctx.Param(grc.params.key(name))
	if name == grc.params.wildcard {
		return strings.TrimPrefix(value, "/")
	}
	return value
}

// ParamNames returns the route's parameter names
func (grc *GinRequestContext) ParamNames() []string {
	if grc.params.names != nil {
		return grc.params.names
	}
	var names []string
	for _, param := range grc.ctx.Params {
		names = append(names, param.Key)
	}
	return names
}

// QueryParams returns all query parameters
func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.ctx.Request.URL.Query()
}

// FormParams returns all form parameters
func (grc *GinRequestContext) FormParams() (map[string][]string, error) {
	if err := grc.ctx.Request.ParseForm(); err != nil {
		return nil, err
	}
	return grc.ctx.Request.PostForm, nil
}

// Cookies returns the request cookies
func (grc *GinRequestContext) Cookies() []*http.Cookie {
	return grc.ctx.Request.Cookies()
}

// Body returns the raw request body
func (grc *GinRequestContext) Body() ([]byte, error) {
	if grc.ctx.Request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(grc.ctx.Request.Body)
}

// JSON writes a JSON response
func (grc *GinRequestContext) JSON(code int, v interface{}) error {
	grc.ctx.JSON(code, v)
	return nil
}

// NoContent writes a status without a body
func (grc *GinRequestContext) NoContent(code int) error {
	grc.ctx.Status(code)
	return nil
}
