package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chronicl/ts-api/pkg/tsapi"
)

// EchoAdapter implements tsapi.WebServerInterface for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	return &EchoAdapter{engine: echo.New()}
}

// Echo supports a single unnamed wildcard
func echoWildcard(string) (string, string) {
	return "*", "*"
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, path string, handler tsapi.HandlerFunc, middlewares ...tsapi.MiddlewareFunc) {
	echoPath, params := convertPath(path, echoWildcard)

	echoMiddlewares := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		echoMiddlewares[i] = ea.convertMiddleware(mw, params)
	}

	ea.engine.Add(method, echoPath, ea.convertHandler(handler, params), echoMiddlewares...)
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware tsapi.MiddlewareFunc) {
	ea.engine.Use(ea.convertMiddleware(middleware, routeParams{}))
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	err := ea.engine.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// convertHandler converts tsapi.HandlerFunc to echo.HandlerFunc
func (ea *EchoAdapter) convertHandler(handler tsapi.HandlerFunc, params routeParams) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := handler(&EchoRequestContext{context: c, params: params}); err != nil {
			return c.JSON(tsapi.ErrorResponse(err))
		}
		return nil
	}
}

// convertMiddleware converts tsapi.MiddlewareFunc to echo.MiddlewareFunc
func (ea *EchoAdapter) convertMiddleware(middleware tsapi.MiddlewareFunc, params routeParams) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tsNext := func(tsapi.RequestContext) error {
				return next(c)
			}
			if err := middleware(tsNext)(&EchoRequestContext{context: c, params: params}); err != nil {
				return c.JSON(tsapi.ErrorResponse(err))
			}
			return nil
		}
	}
}

// EchoRequestContext implements tsapi.RequestContext for Echo
type EchoRequestContext struct {
	context echo.Context
	params  routeParams
}

// Context returns the request context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// Header returns a request header
func (erc *EchoRequestContext) Header(key string) string {
	return erc.context.Request().Header.Get(key)
}

// Param returns a path parameter by its route name
func (erc *EchoRequestContext) Param(name string) string {
	return erc.context.Param(erc.params.key(name))
}

// ParamNames returns the route's parameter names
func (erc *EchoRequestContext) ParamNames() []string {
	if erc.params.names != nil {
		return erc.params.names
	}
	return erc.context.ParamNames()
}

// QueryParams returns all query parameters
func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

// FormParams returns all form parameters
func (erc *EchoRequestContext) FormParams() (map[string][]string, error) {
	return erc.context.FormParams()
}

// Cookies returns the request cookies
func (erc *EchoRequestContext) Cookies() []*http.Cookie {
	return erc.context.Cookies()
}

// Body returns the raw request body
func (erc *EchoRequestContext) Body() ([]byte, error) {
	body := erc.context.Request().Body
	if body == nil {
		return nil, nil
	}
	return io.ReadAll(body)
}

// JSON writes a JSON response
func (erc *EchoRequestContext) JSON(code int, v interface{}) error {
	return erc.context.JSON(code, v)
}

// NoContent writes a status without a body
func (erc *EchoRequestContext) NoContent(code int) error {
	return erc.context.NoContent(code)
}
