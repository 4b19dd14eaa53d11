package tsapi

import (
	"context"
	"errors"
	"net/http"
)

// WebServerInterface is the dispatch runtime routes are mounted on
type WebServerInterface interface {
	// Route registration. Paths use :name for parameters and *name for a trailing wildcard.
	RegisterRoute(method string, path string, handler HandlerFunc, middlewares ...MiddlewareFunc)

	// Global middleware
	Use(middleware MiddlewareFunc)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Server information
	Name() string
}

// RequestContext provides a framework-agnostic view of one request
type RequestContext interface {
	Context() context.Context

	// Request data
	Method() string
	Path() string
	Header(key string) string

	// Parameters
	Param(name string) string
	ParamNames() []string
	QueryParams() map[string][]string
	FormParams() (map[string][]string, error)
	Cookies() []*http.Cookie

	// Body returns the raw request body
	Body() ([]byte, error)

	// Response
	JSON(code int, v interface{}) error
	NoContent(code int) error
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error

// MiddlewareFunc defines the signature for middleware
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// HTTPError represents an HTTP error with status code and message
type HTTPError struct {
	Code     int         `json:"code"`
	Message  interface{} `json:"message"`
	Internal error       `json:"-"`
}

// Error makes HTTPError implement the error interface
func (he *HTTPError) Error() string {
	if he.Internal != nil {
		return he.Internal.Error()
	}
	if s, ok := he.Message.(string); ok {
		return s
	}
	return http.StatusText(he.Code)
}

// Unwrap returns the internal error
func (he *HTTPError) Unwrap() error {
	return he.Internal
}

// NewHTTPError creates a new HTTPError. The optional first argument is the
// message, the optional second an internal error.
func NewHTTPError(code int, message ...interface{}) *HTTPError {
	he := &HTTPError{Code: code}
	if len(message) > 0 {
		he.Message = message[0]
	} else {
		he.Message = http.StatusText(code)
	}
	if len(message) > 1 {
		if err, ok := message[1].(error); ok {
			he.Internal = err
		}
	}
	return he
}

// ErrorBody is the JSON body adapters write for a failed request
type ErrorBody struct {
	Error interface{} `json:"error"`
}

// ErrorResponse maps a handler error to a status code and JSON body
func ErrorResponse(err error) (int, ErrorBody) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, ErrorBody{Error: httpErr.Message}
	}
	return http.StatusInternalServerError, ErrorBody{Error: err.Error()}
}
