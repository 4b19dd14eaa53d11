package tsapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/chronicl/ts-api/internal/codegen"
	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/extract"
	"github.com/chronicl/ts-api/internal/typeinfo"
)

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	extractorType = reflect.TypeOf((*extractor)(nil)).Elem()
)

// describer turns Go handler functions into route descriptors
type describer struct {
	reflector  *typeinfo.Reflector
	classifier *extract.Registry
	shared     *bindShared
}

var defaultDescriber = &describer{
	reflector:  typeinfo.NewReflector(),
	classifier: extract.DefaultRegistry,
	shared:     newBindShared(),
}

// Describe inspects a handler function and returns the route it declares and
// a HandlerFunc that binds each request into its parameters.
//
// The handler must look like
//
//	func(ctx context.Context, p1 W1, ..., pn Wn) (R, error)
//	func(ctx context.Context, p1 W1, ..., pn Wn) error
//
// where each Wi is Json[T], Path[T], Query[T], Form[T], Data[T], CookieJar or a
// pointer to one of them, and R is a plain type or Json[T]. Any other parameter
// type is opaque: it is left out of the client and receives its zero value.
func Describe(method Method, path string, fn interface{}) (RouteDescriptor, HandlerFunc, error) {
	h, err := defaultDescriber.describe(method, path, fn)
	if err != nil {
		return RouteDescriptor{}, nil, err
	}
	return h.route, h.serve, nil
}

type paramSpec struct {
	declared reflect.Type
	base     reflect.Type // declared type with pointers removed
	refs     int
	bindable bool
}

// value produces the argument passed to the handler
func (p paramSpec) value(rc RequestContext, b *binder) (reflect.Value, error) {
	if !p.bindable {
		return reflect.Zero(p.declared), nil
	}
	ptr := reflect.New(p.base)
	if err := ptr.Interface().(bindable).bind(rc, b); err != nil {
		return reflect.Value{}, err
	}
	if p.refs == 0 {
		return ptr.Elem(), nil
	}
	v := ptr
	for i := 1; i < p.refs; i++ {
		next := reflect.New(v.Type())
		next.Elem().Set(v)
		v = next
	}
	return v, nil
}

type describedHandler struct {
	route       RouteDescriptor
	fn          reflect.Value
	params      []paramSpec
	hasResponse bool
	binder      *binder
}

func (d *describer) describe(method Method, path string, fn interface{}) (*describedHandler, error) {
	path = codegen.NormalizePath(path)
	route := RouteDescriptor{Method: method, Path: path}

	if !method.IsValid() {
		return nil, errors.NewSignatureError(route.String(), fmt.Sprintf("unknown method %s", method))
	}

	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, errors.NewSignatureError(route.String(), fmt.Sprintf("handler must be a function, got %T", fn))
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, errors.NewSignatureError(route.String(), "handler must not be variadic")
	}
	if err := checkFirstParam(route.String(), ft); err != nil {
		return nil, err
	}

	segments := codegen.DynamicSegments(path)
	h := &describedHandler{
		fn:     fv,
		binder: &binder{shared: d.shared, segments: segments},
	}

	for i := 1; i < ft.NumIn(); i++ {
		spec, entry, err := d.param(route, i, ft.In(i))
		if err != nil {
			return nil, err
		}
		h.params = append(h.params, spec)
		route.Parameters = append(route.Parameters, entry)
	}

	response, err := d.response(route.String(), ft)
	if err != nil {
		return nil, err
	}
	route.Response = response
	h.hasResponse = response != nil
	h.route = route
	return h, nil
}

// checkFirstParam requires context.Context and recognises method expressions
func checkFirstParam(route string, ft reflect.Type) error {
	if ft.NumIn() == 0 {
		return errors.NewSignatureError(route, "handler must take context.Context as its first parameter")
	}
	first := ft.In(0)
	if first == contextType {
		return nil
	}
	if isReceiverLike(first) {
		return errors.NewSignatureError(route,
			fmt.Sprintf("first parameter is a receiver of type %s", first)).
			WithSuggestion("Pass a bound method value such as svc.Login instead of a method expression such as (*Service).Login")
	}
	return errors.NewSignatureError(route,
		fmt.Sprintf("first parameter must be context.Context, got %s", first))
}

// isReceiverLike reports whether t looks like the receiver of a method expression
func isReceiverLike(t reflect.Type) bool {
	if t.Implements(extractorType) || reflect.PointerTo(t).Implements(extractorType) {
		return false
	}
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	return base.Name() != "" && base.Kind() == reflect.Struct && t.NumMethod() > 0
}

func (d *describer) param(route RouteDescriptor, index int, t reflect.Type) (paramSpec, ParameterEntry, error) {
	spec := paramSpec{declared: t, base: t}
	for spec.base.Kind() == reflect.Pointer {
		spec.base = spec.base.Elem()
		spec.refs++
	}

	ext, isExtractor := reflect.Zero(spec.base).Interface().(extractor)
	opaque := ParameterEntry{Kind: KindOpaque, Type: &TypeDescriptor{Name: t.String()}}
	if !isExtractor {
		return spec, opaque, nil
	}
	spec.bindable = true

	inner := ext.innerType()
	if err := checkWrapper(route, index, ext.wrapperName(), inner); err != nil {
		return spec, ParameterEntry{}, err
	}

	declared := extract.Declared{Wrapper: ext.wrapperName()}
	for i := 0; i < spec.refs; i++ {
		declared = extract.Reference(declared)
	}
	kind, serialized := d.classifier.Classify(declared)
	if !serialized {
		return spec, opaque, nil
	}

	desc, err := d.reflector.Describe(inner)
	if err != nil {
		return spec, ParameterEntry{}, errors.NewSignatureError(route.String(),
			fmt.Sprintf("parameter %d (%s) cannot be described", index, t)).WithCause(err)
	}
	return spec, ParameterEntry{Kind: kind, Type: desc}, nil
}

// checkWrapper enforces the shapes each wrapper can bind at runtime
func checkWrapper(route RouteDescriptor, index int, wrapper string, inner reflect.Type) error {
	switch wrapper {
	case extract.WrapperQuery, extract.WrapperForm:
		if !isStruct(inner) {
			return errors.NewSignatureError(route.String(),
				fmt.Sprintf("parameter %d: %s requires a struct type, got %s", index, wrapper, inner))
		}
	case extract.WrapperPath:
		scalar := !isStruct(inner)
		if scalar && !scalarSupported(inner) {
			return errors.NewSignatureError(route.String(),
				fmt.Sprintf("parameter %d: cannot parse path parameters into %s", index, inner))
		}
		if err := codegen.CheckPathChannel(route.Path, scalar); err != nil {
			sigErr := errors.NewSignatureError(route.String(), fmt.Sprintf("parameter %d: %v", index, err))
			if scalar && len(codegen.DynamicSegments(route.Path)) > 1 {
				sigErr = sigErr.WithSuggestion("Use a struct with one field per segment")
			}
			return sigErr
		}
	}
	return nil
}

// response validates the results and describes the response type
func (d *describer) response(route string, ft reflect.Type) (*TypeDescriptor, error) {
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) != errorType {
			return nil, errors.NewSignatureError(route, "handler must return (T, error) or error")
		}
		return nil, nil
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.NewSignatureError(route, "the last result of a handler must be error")
		}
	default:
		return nil, errors.NewSignatureError(route, "handler must return (T, error) or error")
	}

	rt := ft.Out(0)
	base := rt
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if ext, ok := reflect.Zero(base).Interface().(extractor); ok {
		if ext.wrapperName() != extract.WrapperJSON {
			return nil, errors.NewSignatureError(route,
				fmt.Sprintf("response must be a plain type or Json[T], got %s", rt))
		}
		rt = ext.innerType()
	}

	desc, err := d.reflector.Describe(rt)
	if err != nil {
		return nil, errors.NewSignatureError(route,
			fmt.Sprintf("response type %s cannot be described", rt)).WithCause(err)
	}
	return desc, nil
}

// serve binds the request, calls the handler and writes its result
func (h *describedHandler) serve(rc RequestContext) error {
	ctx := rc.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	args := make([]reflect.Value, 0, len(h.params)+1)
	args = append(args, reflect.ValueOf(&ctx).Elem())
	for _, p := range h.params {
		v, err := p.value(rc, h.binder)
		if err != nil {
			return requestError(err)
		}
		args = append(args, v)
	}

	out := h.fn.Call(args)
	if errValue := out[len(out)-1]; !errValue.IsNil() {
		return errValue.Interface().(error)
	}
	if !h.hasResponse {
		return rc.NoContent(http.StatusNoContent)
	}
	return rc.JSON(http.StatusOK, responsePayload(out[0]))
}

// requestError maps binding failures to 400 responses
func requestError(err error) error {
	var bindingErr *errors.BindingError
	if stderrors.As(err, &bindingErr) {
		return NewHTTPError(http.StatusBadRequest, bindingErr.Error(), err)
	}
	return err
}

func responsePayload(v reflect.Value) interface{} {
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}
	if p, ok := v.Interface().(payloader); ok {
		return p.payload()
	}
	return v.Interface()
}
