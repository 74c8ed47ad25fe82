package core

import (
	"reflect"
	"sync/atomic"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Unit is a deferred callable: one function plus its bound arguments.
//
// A Unit is invoked at most once. It is owned by exactly one queue at a time
// and is handed between queues (or to a worker goroutine) by pointer, never
// copied.
type Unit struct {
	call     func() error
	consumed atomic.Bool
	owned    atomic.Bool // set once a dispatcher queue or worker takes it
}

// NewUnit binds fn to args.
//
// fn may be any func value. Arguments are checked against the parameter list
// at construction time, so a mismatch is reported here rather than when the
// unit runs. Arguments are captured by value; pass a pointer to share state
// with the caller. A nil argument binds the zero value of a pointer,
// interface, map, slice, func or chan parameter. If the last result of fn
// implements error, Invoke returns it; other results are discarded.
//
// A *Unit passed with no arguments is returned unchanged. A dispatcher accepts
// a given *Unit only once; scheduling it again returns ErrUnitEnqueued.
func NewUnit(fn any, args ...any) (*Unit, error) {
	if fn == nil {
		return nil, ErrNilCallable
	}

	if len(args) == 0 {
		switch f := fn.(type) {
		case *Unit:
			if f == nil {
				return nil, ErrNilCallable
			}
			return f, nil
		case func():
			if f == nil {
				return nil, ErrNilCallable
			}
			return Bind(f), nil
		case func() error:
			if f == nil {
				return nil, ErrNilCallable
			}
			return BindErr(f), nil
		}
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, ErrNotCallable
	}
	if v.IsNil() {
		return nil, ErrNilCallable
	}

	in, err := bindArgs(v.Type(), args)
	if err != nil {
		return nil, err
	}

	returnsErr := false
	if n := v.Type().NumOut(); n > 0 && v.Type().Out(n-1).Implements(errorType) {
		returnsErr = true
	}

	return &Unit{call: func() error {
		out := v.Call(in)
		if !returnsErr {
			return nil
		}
		last := out[len(out)-1]
		if nilable(last.Kind()) && last.IsNil() {
			return nil
		}
		return last.Interface().(error)
	}}, nil
}

func bindArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := t.NumIn()
	if t.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, &BindError{Index: -1, Reason: "too few arguments for variadic callable"}
		}
	} else if len(args) != numIn {
		return nil, &BindError{Index: -1, Reason: "argument count does not match callable arity"}
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			want = t.In(numIn - 1).Elem()
		} else {
			want = t.In(i)
		}

		if arg == nil {
			if !nilable(want.Kind()) {
				return nil, &BindError{Index: i, Reason: "nil bound to non-nilable parameter " + want.String()}
			}
			in[i] = reflect.Zero(want)
			continue
		}

		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(want) {
			return nil, &BindError{Index: i, Reason: av.Type().String() + " is not assignable to " + want.String()}
		}
		in[i] = av
	}
	return in, nil
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// Bind wraps a func with no arguments.
func Bind(fn func()) *Unit {
	return &Unit{call: func() error {
		fn()
		return nil
	}}
}

// BindErr wraps a func whose error is surfaced by Invoke.
func BindErr(fn func() error) *Unit {
	return &Unit{call: fn}
}

// Bind1 binds one argument without reflection.
func Bind1[A any](fn func(A), a A) *Unit {
	return Bind(func() { fn(a) })
}

// Bind2 binds two arguments without reflection.
func Bind2[A, B any](fn func(A, B), a A, b B) *Unit {
	return Bind(func() { fn(a, b) })
}

// Bind3 binds three arguments without reflection.
func Bind3[A, B, C any](fn func(A, B, C), a A, b B, c C) *Unit {
	return Bind(func() { fn(a, b, c) })
}

// Invoke calls the bound function. Only the first call runs it; later calls
// return ErrUnitConsumed. Panics raised by the function are not recovered.
func (u *Unit) Invoke() error {
	if !u.consumed.CompareAndSwap(false, true) {
		return ErrUnitConsumed
	}
	call := u.call
	u.call = nil
	return call()
}

// claim marks u as owned by a dispatcher queue or worker.
func (u *Unit) claim() error {
	if u.consumed.Load() {
		return ErrUnitConsumed
	}
	if !u.owned.CompareAndSwap(false, true) {
		return ErrUnitEnqueued
	}
	return nil
}

// Consumed reports whether Invoke has been called.
func (u *Unit) Consumed() bool {
	return u.consumed.Load()
}
