package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/toolforge/toolforge/internal/schema"
)

// FuncTool adapts a typed handler into a schema.Tool. The handler's input
// struct is inspected once at construction to infer the parameter schema.
type FuncTool[In any] struct {
	name        string
	description string
	params      []param
	parameters  json.RawMessage
	fn          func(ctx context.Context, in In) (any, error)
}

// NewFuncTool builds a tool from fn. In must be a struct type; use struct{}
// for tools without parameters. It panics if In cannot describe parameters,
// which is a programming error caught at startup.
func NewFuncTool[In any](name, description string, fn func(ctx context.Context, in In) (any, error)) *FuncTool[In] {
	params, err := parseParams(reflect.TypeFor[In]())
	if err != nil {
		panic(fmt.Sprintf("tool %q: %v", name, err))
	}
	raw, err := json.Marshal(schemaOf(params))
	if err != nil {
		panic(fmt.Sprintf("tool %q: marshal schema: %v", name, err))
	}
	return &FuncTool[In]{
		name:        name,
		description: description,
		params:      params,
		parameters:  raw,
		fn:          fn,
	}
}

func (t *FuncTool[In]) Name() string                { return t.name }
func (t *FuncTool[In]) Description() string         { return t.description }
func (t *FuncTool[In]) Parameters() json.RawMessage { return t.parameters }

// Call binds args onto In and runs the handler.
func (t *FuncTool[In]) Call(ctx context.Context, args map[string]any) (any, error) {
	var in In
	v := reflect.ValueOf(&in).Elem()
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	if err := bind(t.name, t.params, v, args); err != nil {
		return nil, err
	}
	return t.fn(ctx, in)
}

var _ schema.Tool = (*FuncTool[struct{}])(nil)
