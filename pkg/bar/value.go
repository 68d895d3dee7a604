package bar

import "fmt"

// Value produces the text of an item. It is either fixed text or a
// provider function evaluated on every redraw. The interface is sealed;
// use Static, Func, FuncErr or Stringer to build one.
type Value interface {
	eval() (string, error)
}

type staticValue string

func (v staticValue) eval() (string, error) { return string(v), nil }

type funcValue func() (string, error)

func (f funcValue) eval() (string, error) { return f() }

// Static returns a Value that always renders as s.
func Static(s string) Value {
	return staticValue(s)
}

// Func returns a Value evaluated by calling fn on every redraw. fn runs on
// the bar's redraw goroutine and must not block for long.
func Func(fn func() string) Value {
	if fn == nil {
		return Static("")
	}
	return funcValue(func() (string, error) { return fn(), nil })
}

// FuncErr is like Func for providers that can fail. A failing provider is
// rendered as the bar's error text.
func FuncErr(fn func() (string, error)) Value {
	if fn == nil {
		return Static("")
	}
	return funcValue(fn)
}

// Stringer returns a Value that calls s.String on every redraw.
func Stringer(s fmt.Stringer) Value {
	if s == nil {
		return Static("")
	}
	return funcValue(func() (string, error) { return s.String(), nil })
}

// evaluate renders v, turning a panicking provider into an error.
func evaluate(v Value) (text string, err error) {
	if v == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("value provider panicked: %v", r)
		}
	}()
	return v.eval()
}
