package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gorilla/mux"
)

// BindError represents an error that occurred during request binding.
type BindError struct {
	Source string // "path" or "query"
	Field  string
	Err    error
}

func (e *BindError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s: %s", e.Source, e.Field, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Err.Error())
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Bind populates req from the route variables and query string.
// req must be a pointer to a struct whose fields carry path or query tags.
// Pointer fields are optional; everything else is required.
func Bind(r *http.Request, req any) error {
	rv := reflect.ValueOf(req)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.New("req must be pointer to struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	vars := mux.Vars(r)
	query := r.URL.Query()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)

		if tag := field.Tag.Get("path"); tag != "" {
			value, ok := vars[tag]
			if err := bindValue(fv, "path", tag, value, ok && value != ""); err != nil {
				return err
			}
		}

		if tag := field.Tag.Get("query"); tag != "" {
			if err := bindValue(fv, "query", tag, query.Get(tag), query.Has(tag)); err != nil {
				return err
			}
		}
	}

	return nil
}

func bindValue(fv reflect.Value, source, tag, value string, present bool) error {
	target := fv.Type()
	optional := target.Kind() == reflect.Ptr

	if !present {
		if optional {
			return nil
		}
		return &BindError{Source: source, Field: tag, Err: errors.New("missing required value")}
	}

	if optional {
		target = target.Elem()
	}
	converted, err := convertString(value, target)
	if err != nil {
		return &BindError{Source: source, Field: tag, Err: err}
	}

	if optional {
		ptr := reflect.New(target)
		ptr.Elem().Set(converted)
		fv.Set(ptr)
		return nil
	}
	fv.Set(converted)
	return nil
}

// convertString converts s to a string, integer or bool of targetType.
func convertString(s string, targetType reflect.Type) (reflect.Value, error) {
	switch targetType.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(targetType), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(s, 10, targetType.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%q is not a valid integer", s)
		}
		return reflect.ValueOf(v).Convert(targetType), nil

	case reflect.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%q is not a valid bool", s)
		}
		return reflect.ValueOf(v), nil

	default:
		return reflect.Value{}, errors.New("unsupported type: " + targetType.String())
	}
}
