package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/wudi/pdfoverlay/coords"
)

// GojaEngine runs automation scripts on a goja JavaScript runtime. One
// engine serves one host; it is not safe for concurrent Execute calls.
type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// RegisterHost installs the 'editor' and 'app' globals. Host failures
// are thrown into the script as JS exceptions so automation code can
// try/catch them.
func (e *GojaEngine) RegisterHost(host EditorHost) error {
	app := e.vm.NewObject()
	if err := app.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		host.Alert(msg)
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := e.vm.Set("app", app); err != nil {
		return err
	}

	editor := e.vm.NewObject()

	if err := editor.Set("pageCount", func(call goja.FunctionCall) goja.Value {
		n, err := host.PageCount()
		if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		return e.vm.ToValue(n)
	}); err != nil {
		return err
	}

	if err := editor.Set("rotation", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.vm.ToValue("rotation(page) needs a page number"))
		}
		r, err := host.PageRotation(int(call.Arguments[0].ToInteger()))
		if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		return e.vm.ToValue(int(r))
	}); err != nil {
		return err
	}

	if err := editor.Set("insertText", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 5 {
			panic(e.vm.ToValue("insertText(page, x, y, size, text) needs 5 arguments"))
		}
		err := host.InsertText(
			int(call.Arguments[0].ToInteger()),
			call.Arguments[1].ToFloat(),
			call.Arguments[2].ToFloat(),
			call.Arguments[3].ToFloat(),
			call.Arguments[4].String(),
		)
		if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := editor.Set("insertOnPages", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			panic(e.vm.ToValue("insertOnPages(pages, text, box) needs 3 arguments"))
		}
		pages, err := exportPages(call.Arguments[0])
		if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		box, err := exportBox(call.Arguments[2])
		if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		ok, failed, err := host.InsertOnPages(pages, call.Arguments[1].String(), box)
		if err != nil {
			panic(e.vm.ToValue(err.Error()))
		}
		res := e.vm.NewObject()
		_ = res.Set("succeeded", ok)
		_ = res.Set("failed", failed)
		return res
	}); err != nil {
		return err
	}

	return e.vm.Set("editor", editor)
}

func exportPages(v goja.Value) ([]int, error) {
	raw, ok := v.Export().([]interface{})
	if !ok {
		return nil, fmt.Errorf("scripting: pages must be an array, got %T", v.Export())
	}
	pages := make([]int, 0, len(raw))
	for _, e := range raw {
		n, ok := e.(int64)
		if !ok {
			return nil, fmt.Errorf("scripting: page number %v is not an integer", e)
		}
		pages = append(pages, int(n))
	}
	return pages, nil
}

func exportBox(v goja.Value) (coords.Rect, error) {
	obj, ok := v.Export().(map[string]interface{})
	if !ok {
		return coords.Rect{}, fmt.Errorf("scripting: box must be an object with x, y, width, height")
	}
	get := func(key string) (float64, error) {
		raw, ok := obj[key]
		if !ok {
			return 0, fmt.Errorf("scripting: box is missing %q", key)
		}
		switch n := raw.(type) {
		case int64:
			return float64(n), nil
		case float64:
			return n, nil
		}
		return 0, fmt.Errorf("scripting: box %q is not a number", key)
	}
	var (
		r   coords.Rect
		err error
	)
	if r.X, err = get("x"); err != nil {
		return coords.Rect{}, err
	}
	if r.Y, err = get("y"); err != nil {
		return coords.Rect{}, err
	}
	if r.Width, err = get("width"); err != nil {
		return coords.Rect{}, err
	}
	if r.Height, err = get("height"); err != nil {
		return coords.Rect{}, err
	}
	return r, nil
}
