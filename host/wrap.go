package host

import (
	"errors"
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap adapts an ordinary Go function to a Callable. Parameters may be any
// type FromGo produces a convertible value for (numbers, strings, bools,
// slices, string-keyed maps, any) or Value itself; a trailing variadic
// parameter collects the remaining arguments. Missing arguments are passed
// as zero values. The function may return nothing, a value, an error, or a
// value and an error.
func Wrap(fn any) (Callable, error) {
	if c, ok := fn.(Callable); ok {
		return c, nil
	}
	if c, ok := fn.(func([]Value) (Value, error)); ok {
		return c, nil
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("host: cannot wrap %T: not a function", fn)
	}
	ft := rv.Type()
	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("host: cannot wrap %s: second result must be error", ft)
		}
	default:
		return nil, fmt.Errorf("host: cannot wrap %s: too many results", ft)
	}

	return func(args []Value) (Value, error) {
		in, err := buildArgs(ft, args)
		if err != nil {
			return Null(), err
		}
		out := rv.Call(in)
		switch len(out) {
		case 0:
			return Null(), nil
		case 1:
			if ft.Out(0) == errorType {
				if e, _ := out[0].Interface().(error); e != nil {
					return Null(), e
				}
				return Null(), nil
			}
			return FromGo(out[0].Interface()), nil
		default:
			if e, _ := out[1].Interface().(error); e != nil {
				return Null(), e
			}
			return FromGo(out[0].Interface()), nil
		}
	}, nil
}

// MustWrap is Wrap that panics on error. Use it for static definitions.
func MustWrap(fn any) Callable {
	c, err := Wrap(fn)
	if err != nil {
		panic(err)
	}
	return c
}

func buildArgs(ft reflect.Type, args []Value) ([]reflect.Value, error) {
	n := ft.NumIn()
	fixed := n
	if ft.IsVariadic() {
		fixed = n - 1
	}
	in := make([]reflect.Value, 0, max(n, len(args)))
	for i := 0; i < fixed; i++ {
		t := ft.In(i)
		if i >= len(args) {
			in = append(in, reflect.Zero(t))
			continue
		}
		av, err := convertArg(args[i], t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, av)
	}
	if ft.IsVariadic() {
		et := ft.In(n - 1).Elem()
		for i := fixed; i < len(args); i++ {
			av, err := convertArg(args[i], et)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, av)
		}
	}
	return in, nil
}

var errArgType = errors.New("incompatible argument")

func convertArg(v Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	if v.IsNull() {
		return reflect.Zero(t), nil
	}
	switch t.Kind() {
	case reflect.Interface:
		x := v.Interface()
		if x == nil {
			return reflect.Zero(t), nil
		}
		xv := reflect.ValueOf(x)
		if !xv.Type().Implements(t) {
			return reflect.Value{}, fmt.Errorf("%w: %s does not implement %s", errArgType, xv.Type(), t)
		}
		return xv.Convert(t), nil
	case reflect.Slice:
		if v.Kind() != KindArray {
			break
		}
		out := reflect.MakeSlice(t, 0, v.Array().Len())
		for _, e := range v.Array().All() {
			ev, err := convertArg(e, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, ev)
		}
		return out, nil
	case reflect.Map:
		if v.Kind() != KindArray || t.Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(t, v.Array().Len())
		for k, e := range v.Array().All() {
			ev, err := convertArg(e, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(k.String()).Convert(t.Key()), ev)
		}
		return out, nil
	case reflect.String:
		if v.Kind() == KindString {
			return reflect.ValueOf(v.Str()).Convert(t), nil
		}
	case reflect.Bool:
		if v.Kind() == KindBool {
			return reflect.ValueOf(v.Bool()).Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		switch v.Kind() {
		case KindInt:
			return reflect.ValueOf(v.Int()).Convert(t), nil
		case KindFloat:
			return reflect.ValueOf(v.Float()).Convert(t), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", errArgType, v.Kind(), t)
}
