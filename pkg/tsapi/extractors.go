package tsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/extract"
)

// extractor is implemented by every parameter wrapper
type extractor interface {
	wrapperName() string
	innerType() reflect.Type
}

// bindable wrappers fill themselves from a request
type bindable interface {
	bind(rc RequestContext, b *binder) error
}

// payloader unwraps a response wrapper
type payloader interface {
	payload() interface{}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Json is a JSON request body, or a JSON response when returned from a handler
type Json[T any] struct {
	Value T
}

// NewJson wraps v as a JSON response
func NewJson[T any](v T) Json[T] {
	return Json[T]{Value: v}
}

func (Json[T]) wrapperName() string     { return extract.WrapperJSON }
func (Json[T]) innerType() reflect.Type { return typeOf[T]() }
func (j Json[T]) payload() interface{}  { return j.Value }

func (j *Json[T]) bind(rc RequestContext, b *binder) error {
	body, err := rc.Body()
	if err != nil {
		return errors.NewBindingError("body", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.NewBindingError("body", fmt.Errorf("request body is empty"))
	}
	if err := json.Unmarshal(body, &j.Value); err != nil {
		return errors.NewBindingError("body", err)
	}
	return b.validateValue("body", &j.Value)
}

// Path holds route parameters. A struct T is filled by parameter name (json
// tags); any other T is parsed from the route's single dynamic segment.
type Path[T any] struct {
	Value T
}

func (Path[T]) wrapperName() string     { return extract.WrapperPath }
func (Path[T]) innerType() reflect.Type { return typeOf[T]() }

func (p *Path[T]) bind(rc RequestContext, b *binder) error {
	if isStruct(typeOf[T]()) {
		values := make(map[string][]string, len(b.segments))
		for _, name := range b.segments {
			values[name] = []string{rc.Param(name)}
		}
		return b.decode("path", &p.Value, values)
	}
	if len(b.segments) != 1 {
		return errors.NewBindingError("path", fmt.Errorf("expected one path parameter, route has %d", len(b.segments)))
	}
	if err := parseScalar(reflect.ValueOf(&p.Value).Elem(), rc.Param(b.segments[0])); err != nil {
		return errors.NewBindingError("path", err)
	}
	return nil
}

// Query holds the decoded query string. T must be a struct.
type Query[T any] struct {
	Value T
}

func (Query[T]) wrapperName() string     { return extract.WrapperQuery }
func (Query[T]) innerType() reflect.Type { return typeOf[T]() }

func (q *Query[T]) bind(rc RequestContext, b *binder) error {
	return b.decode("query", &q.Value, rc.QueryParams())
}

// Form holds a decoded form body. T must be a struct. Forms are not part of
// the generated client.
type Form[T any] struct {
	Value T
}

func (Form[T]) wrapperName() string     { return extract.WrapperForm }
func (Form[T]) innerType() reflect.Type { return typeOf[T]() }

func (f *Form[T]) bind(rc RequestContext, b *binder) error {
	values, err := rc.FormParams()
	if err != nil {
		return errors.NewBindingError("form", err)
	}
	return b.decode("form", &f.Value, values)
}

// Data is shared server state registered with WithData
type Data[T any] struct {
	Value T
}

func (Data[T]) wrapperName() string     { return extract.WrapperData }
func (Data[T]) innerType() reflect.Type { return typeOf[T]() }

func (d *Data[T]) bind(_ RequestContext, b *binder) error {
	t := typeOf[T]()
	v, ok := b.shared.lookupData(t)
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("no shared data of type %s", t))
	}
	reflect.ValueOf(&d.Value).Elem().Set(v)
	return nil
}

// CookieJar gives a handler the request cookies
type CookieJar struct {
	cookies []*http.Cookie
}

func (CookieJar) wrapperName() string     { return extract.WrapperCookieJar }
func (CookieJar) innerType() reflect.Type { return nil }

func (j *CookieJar) bind(rc RequestContext, _ *binder) error {
	j.cookies = rc.Cookies()
	return nil
}

// Get returns the first cookie with the given name
func (j CookieJar) Get(name string) (*http.Cookie, bool) {
	for _, c := range j.cookies {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// All returns every cookie of the request
func (j CookieJar) All() []*http.Cookie {
	return append([]*http.Cookie(nil), j.cookies...)
}
