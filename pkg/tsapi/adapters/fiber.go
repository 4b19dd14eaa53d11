package adapters

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/chronicl/ts-api/pkg/tsapi"
)

// FiberAdapter wraps a Fiber app to implement tsapi.WebServerInterface
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter instance
func NewFiberAdapter() *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(tsapi.ErrorBody{Error: err.Error()})
		},
	})
	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with request logging and panic recovery
func NewDefaultFiberAdapter() *FiberAdapter {
	adapter := NewFiberAdapter()
	adapter.app.Use(logger.New())
	adapter.app.Use(recover.New())
	return adapter
}

// Fiber supports a single unnamed wildcard
func fiberWildcard(string) (string, string) {
	return "*", "*"
}

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(method string, path string, handler tsapi.HandlerFunc, middlewares ...tsapi.MiddlewareFunc) {
	fiberPath, params := convertPath(path, fiberWildcard)

	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, mw := range middlewares {
		handlers = append(handlers, convertMiddlewareToFiber(mw, params))
	}
	handlers = append(handlers, convertHandlerToFiber(handler, params))

	fa.app.Add(strings.ToUpper(method), fiberPath, handlers...)
}

// Use adds middleware to the Fiber app
func (fa *FiberAdapter) Use(middleware tsapi.MiddlewareFunc) {
	fa.app.Use(convertMiddlewareToFiber(middleware, routeParams{}))
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// convertHandlerToFiber converts a tsapi handler to a Fiber handler
func convertHandlerToFiber(handler tsapi.HandlerFunc, params routeParams) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(&FiberRequestContext{ctx: c, params: params}); err != nil {
			code, body := tsapi.ErrorResponse(err)
			return c.Status(code).JSON(body)
		}
		return nil
	}
}

// convertMiddlewareToFiber converts a tsapi middleware to a Fiber middleware
func convertMiddlewareToFiber(middleware tsapi.MiddlewareFunc, params routeParams) fiber.Handler {
	return func(c *fiber.Ctx) error {
		next := func(tsapi.RequestContext) error {
			return c.Next()
		}
		if err := middleware(next)(&FiberRequestContext{ctx: c, params: params}); err != nil {
			code, body := tsapi.ErrorResponse(err)
			return c.Status(code).JSON(body)
		}
		return nil
	}
}

// FiberRequestContext wraps fiber.Ctx to implement tsapi.RequestContext
type FiberRequestContext struct {
	ctx    *fiber.Ctx
	params routeParams
}

// Context returns the request's user context
func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

// Method returns the HTTP method
func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

// Path returns the request path
func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

// Header returns a request header
func (frc *FiberRequestContext) Header(key string) string {
	return frc.ctx.Get(key)
}

// Param returns a path parameter by its route name
func (frc *FiberRequestContext) Param(name string) string {
	return frc.ctx.Params(frc.params.key(name))
}

// ParamNames returns the route's parameter names
func (frc *FiberRequestContext) ParamNames() []string {
	if frc.params.names != nil {
		return frc.params.names
	}
	return frc.ctx.Route().Params
}

// QueryParams returns all query parameters
func (frc *FiberRequestContext) QueryParams() map[string][]string {
	values := make(map[string][]string)
	frc.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = append(values[string(key)], string(value))
	})
	return values
}

// FormParams returns url-encoded or multipart form values
func (frc *FiberRequestContext) FormParams() (map[string][]string, error) {
	if strings.HasPrefix(frc.ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := frc.ctx.MultipartForm()
		if err != nil {
			return nil, err
		}
		return form.Value, nil
	}

	values := make(map[string][]string)
	frc.ctx.Request().PostArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = append(values[string(key)], string(value))
	})
	return values, nil
}

// Cookies returns the request cookies
func (frc *FiberRequestContext) Cookies() []*http.Cookie {
	var cookies []*http.Cookie
	frc.ctx.Request().Header.VisitAllCookie(func(key, value []byte) {
		cookies = append(cookies, &http.Cookie{Name: string(key), Value: string(value)})
	})
	return cookies
}

// Body returns a copy of the request body; Fiber reuses its buffers
func (frc *FiberRequestContext) Body() ([]byte, error) {
	return append([]byte(nil), frc.ctx.Body()...), nil
}

// JSON writes a JSON response
func (frc *FiberRequestContext) JSON(code int, v interface{}) error {
	return frc.ctx.Status(code).JSON(v)
}

// NoContent writes a status without a body
func (frc *FiberRequestContext) NoContent(code int) error {
	return frc.ctx.SendStatus(code)
}
