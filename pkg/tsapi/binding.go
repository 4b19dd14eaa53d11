package tsapi

import (
	"encoding"
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/chronicl/ts-api/internal/errors"
)

var (
	uuidType            = reflect.TypeOf(uuid.UUID{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// bindShared is the decoding state shared by every route of an API
type bindShared struct {
	decoder  *schema.Decoder
	validate *validator.Validate
	data     []reflect.Value
}

func newBindShared() *bindShared {
	decoder := schema.NewDecoder()
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(uuid.UUID{}, func(s string) reflect.Value {
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(id)
	})

	return &bindShared{
		decoder:  decoder,
		validate: validator.New(),
	}
}

// addData registers shared state for Data[T] parameters
func (s *bindShared) addData(values ...interface{}) {
	for _, v := range values {
		if v == nil {
			continue
		}
		s.data = append(s.data, reflect.ValueOf(v))
	}
}

// lookupData finds state of exactly type t, or failing that the first
// registered value assignable to t
func (s *bindShared) lookupData(t reflect.Type) (reflect.Value, bool) {
	for _, v := range s.data {
		if v.Type() == t {
			return v, true
		}
	}
	for _, v := range s.data {
		if v.Type().AssignableTo(t) {
			return v, true
		}
	}
	return reflect.Value{}, false
}

// binder decodes the parameters of one route
type binder struct {
	shared   *bindShared
	segments []string // dynamic segment names of the route path
}

func (b *binder) decode(channel string, dst interface{}, values map[string][]string) error {
	if err := b.shared.decoder.Decode(dst, values); err != nil {
		return errors.NewBindingError(channel, err)
	}
	return b.validateValue(channel, dst)
}

// validateValue runs struct validation tags; other kinds pass unchecked
func (b *binder) validateValue(channel string, ptr interface{}) error {
	v := reflect.ValueOf(ptr)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := b.shared.validate.Struct(v.Interface())
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fe.Field()+": "+formatValidationError(fe))
		}
		err = fmt.Errorf("%s", strings.Join(messages, "; "))
	}
	return errors.NewBindingError(channel, err)
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func isStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct
}

// scalarSupported reports whether parseScalar can fill a value of type t
func scalarSupported(t reflect.Type) bool {
	if t == uuidType || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// parseScalar parses raw into the settable value v
func parseScalar(v reflect.Value, raw string) error {
	t := v.Type()
	if t == uuidType {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(id))
		return nil
	}
	if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(raw))
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("cannot parse path parameter into %s", t)
	}
	return nil
}
