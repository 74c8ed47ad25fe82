package core

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// TestNewUnit_ZeroArgs verifies the no-argument fast paths
// Given: func() and func() error callables
// When: Units are built and invoked
// Then: Each callable runs once and errors are surfaced
func TestNewUnit_ZeroArgs(t *testing.T) {
	// Arrange
	var calls int
	plain, err := NewUnit(func() { calls++ })
	if err != nil {
		t.Fatalf("NewUnit(func()) error = %v", err)
	}
	wantErr := errors.New("boom")
	failing, err := NewUnit(func() error { return wantErr })
	if err != nil {
		t.Fatalf("NewUnit(func() error) error = %v", err)
	}

	// Act & Assert
	if err := plain.Invoke(); err != nil {
		t.Errorf("plain.Invoke() = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err := failing.Invoke(); !errors.Is(err, wantErr) {
		t.Errorf("failing.Invoke() = %v, want %v", err, wantErr)
	}
}

// TestNewUnit_BoundArguments verifies by-value and by-reference binding
// Given: A callable taking a value, a pointer and a string
// When: The caller mutates its copy after binding
// Then: The value argument keeps the bound copy and the pointer writes through
func TestNewUnit_BoundArguments(t *testing.T) {
	// Arrange
	value := 1
	var out int
	var label string
	u, err := NewUnit(func(v int, dst *int, s string) {
		*dst = v * 10
		label = s
	}, value, &out, "bound")
	if err != nil {
		t.Fatalf("NewUnit error = %v", err)
	}
	value = 2

	// Act
	if err := u.Invoke(); err != nil {
		t.Fatalf("Invoke() = %v", err)
	}

	// Assert
	if out != 10 {
		t.Errorf("out = %d, want 10 (bound value, not the later mutation)", out)
	}
	if label != "bound" {
		t.Errorf("label = %q, want %q", label, "bound")
	}
}

// TestNewUnit_Variadic verifies variadic callables accept any tail length
func TestNewUnit_Variadic(t *testing.T) {
	var got string
	u, err := NewUnit(func(prefix string, parts ...string) {
		got = prefix + strings.Join(parts, ",")
	}, "p:", "a", "b", "c")
	if err != nil {
		t.Fatalf("NewUnit error = %v", err)
	}
	if err := u.Invoke(); err != nil {
		t.Fatalf("Invoke() = %v", err)
	}
	if got != "p:a,b,c" {
		t.Errorf("got = %q, want %q", got, "p:a,b,c")
	}

	empty, err := NewUnit(func(prefix string, parts ...string) {
		got = prefix
	}, "only")
	if err != nil {
		t.Fatalf("NewUnit with empty variadic tail error = %v", err)
	}
	_ = empty.Invoke()
	if got != "only" {
		t.Errorf("got = %q, want %q", got, "only")
	}
}

// TestNewUnit_NilArgument verifies nil binds the zero value of nilable params
func TestNewUnit_NilArgument(t *testing.T) {
	var sawNil bool
	u, err := NewUnit(func(p *int, e error) {
		sawNil = p == nil && e == nil
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewUnit error = %v", err)
	}
	_ = u.Invoke()
	if !sawNil {
		t.Error("expected both parameters to be nil")
	}

	if _, err := NewUnit(func(int) {}, nil); !IsBindError(err) {
		t.Errorf("nil for int parameter: err = %v, want *BindError", err)
	}
}

// TestNewUnit_Errors verifies construction failures
func TestNewUnit_Errors(t *testing.T) {
	var nilFn func()

	tests := []struct {
		name  string
		fn    any
		args  []any
		check func(error) bool
	}{
		{"nil", nil, nil, func(err error) bool { return errors.Is(err, ErrNilCallable) }},
		{"nil func value", nilFn, nil, func(err error) bool { return errors.Is(err, ErrNilCallable) }},
		{"not a func", 42, nil, func(err error) bool { return errors.Is(err, ErrNotCallable) }},
		{"too many args", func() {}, []any{1}, IsBindError},
		{"too few args", func(int, int) {}, []any{1}, IsBindError},
		{"wrong type", func(int) {}, []any{"x"}, IsBindError},
		{"variadic too few", func(int, ...int) {}, nil, IsBindError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUnit(tt.fn, tt.args...)
			if u != nil {
				t.Errorf("unit = %v, want nil", u)
			}
			if !tt.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}

	var bindErr *BindError
	_, err := NewUnit(func(int, string) {}, 1, 2)
	if !errors.As(err, &bindErr) || bindErr.Index != 1 {
		t.Errorf("err = %v, want BindError at index 1", err)
	}
}

// TestNewUnit_ErrorResult verifies the trailing error result is surfaced
func TestNewUnit_ErrorResult(t *testing.T) {
	wantErr := errors.New("parse failed")
	u, err := NewUnit(func(s string) (int, error) {
		return 0, wantErr
	}, "x")
	if err != nil {
		t.Fatalf("NewUnit error = %v", err)
	}
	if err := u.Invoke(); !errors.Is(err, wantErr) {
		t.Errorf("Invoke() = %v, want %v", err, wantErr)
	}

	ok, _ := NewUnit(func(s string) (int, error) { return 1, nil }, "x")
	if err := ok.Invoke(); err != nil {
		t.Errorf("Invoke() = %v, want nil", err)
	}
}

// TestNewUnit_PassThrough verifies a bound *Unit is reused as-is
func TestNewUnit_PassThrough(t *testing.T) {
	inner := Bind2(func(a, b int) {}, 1, 2)
	u, err := NewUnit(inner)
	if err != nil {
		t.Fatalf("NewUnit error = %v", err)
	}
	if u != inner {
		t.Error("expected the same *Unit back")
	}
}

// TestUnit_InvokeAtMostOnce verifies concurrent invokes run the callable once
// Given: A unit shared by many goroutines
// When: All of them call Invoke at once
// Then: The callable runs exactly once and every other call gets ErrUnitConsumed
func TestUnit_InvokeAtMostOnce(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	u := Bind(func() { calls.Add(1) })

	// Act
	var wg sync.WaitGroup
	var consumed atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(u.Invoke(), ErrUnitConsumed) {
				consumed.Add(1)
			}
		}()
	}
	wg.Wait()

	// Assert
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if consumed.Load() != 31 {
		t.Errorf("consumed errors = %d, want 31", consumed.Load())
	}
	if !u.Consumed() {
		t.Error("Consumed() = false after Invoke")
	}
}

// TestUnit_PanicPropagates verifies a panicking callable is not recovered
func TestUnit_PanicPropagates(t *testing.T) {
	u := Bind1(func(msg string) { panic(msg) }, "kaboom")

	defer func() {
		if r := recover(); r != "kaboom" {
			t.Errorf("recovered %v, want kaboom", r)
		}
	}()
	_ = u.Invoke()
	t.Fatal("Invoke returned instead of panicking")
}

// TestBind3 verifies the typed binders
func TestBind3(t *testing.T) {
	var sum int
	u := Bind3(func(a, b, c int) { sum = a + b + c }, 1, 2, 3)
	if err := u.Invoke(); err != nil {
		t.Fatalf("Invoke() = %v", err)
	}
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}
}
