package overload

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Marshaller converts matched call arguments into the exact Go types a
// reflectively registered function declares, and its results back.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// Coerce converts val to targetType. Containers are rebuilt element by
// element, so []any{1, 2} becomes []int{1, 2}; nil becomes the zero value
// of nilable types.
func (m *Marshaller) Coerce(val any, targetType reflect.Type) (reflect.Value, error) {
	if val == nil {
		switch targetType.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(targetType), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", targetType)
	}

	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(targetType) {
		return rv, nil
	}

	switch targetType.Kind() {
	case reflect.Slice:
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			return m.toSlice(rv, targetType)
		}
	case reflect.Array:
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == targetType.Len() {
			return m.toArray(rv, targetType)
		}
	case reflect.Map:
		if rv.Kind() == reflect.Map {
			return m.toMap(rv, targetType)
		}
	}

	if rv.Kind() == targetType.Kind() && rv.Type().ConvertibleTo(targetType) {
		return rv.Convert(targetType), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), targetType)
}

func (m *Marshaller) toSlice(rv reflect.Value, targetType reflect.Type) (reflect.Value, error) {
	elemType := targetType.Elem()
	slice := reflect.MakeSlice(targetType, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := m.Coerce(rv.Index(i).Interface(), elemType)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		slice = reflect.Append(slice, ev)
	}
	return slice, nil
}

func (m *Marshaller) toArray(rv reflect.Value, targetType reflect.Type) (reflect.Value, error) {
	arr := reflect.New(targetType).Elem()
	for i := 0; i < rv.Len(); i++ {
		ev, err := m.Coerce(rv.Index(i).Interface(), targetType.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		arr.Index(i).Set(ev)
	}
	return arr, nil
}

func (m *Marshaller) toMap(rv reflect.Value, targetType reflect.Type) (reflect.Value, error) {
	result := reflect.MakeMapWithSize(targetType, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kv, err := m.Coerce(iter.Key().Interface(), targetType.Key())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("map key: %w", err)
		}
		vv, err := m.Coerce(iter.Value().Interface(), targetType.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("map value: %w", err)
		}
		result.SetMapIndex(kv, vv)
	}
	return result, nil
}

// Call invokes fn with args coerced to its parameter types and maps the
// results: no result is nil, a trailing error is returned as the error,
// a single remaining result is returned as is and several become []any.
func (m *Marshaller) Call(fn reflect.Value, args []any) (any, error) {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	isVariadic := fnType.IsVariadic()

	if isVariadic {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("expected %d arguments, got %d", numIn, len(args))
	}

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		var targetType reflect.Type
		if isVariadic && i >= numIn-1 {
			targetType = fnType.In(numIn - 1).Elem()
		} else {
			targetType = fnType.In(i)
		}
		val, err := m.Coerce(arg, targetType)
		if err != nil {
			return nil, fmt.Errorf("argument %d conversion failed: %w", i, err)
		}
		goArgs[i] = val
	}

	return m.results(fnType, fn.Call(goArgs))
}

func (m *Marshaller) results(fnType reflect.Type, results []reflect.Value) (any, error) {
	var err error
	if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
		if e := results[n-1].Interface(); e != nil {
			err = e.(error)
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return nil, err
	case 1:
		return results[0].Interface(), err
	}
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Interface()
	}
	return out, err
}
