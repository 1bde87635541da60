package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"
	"unicode"

	"github.com/toolforge/toolforge/internal/schema"
	"github.com/toolforge/toolforge/internal/shared/stringutils"
)

// Gateway is the single entry point through which transports invoke tools.
// It turns every result, returned error and panic into a schema.Outcome.
type Gateway struct {
	registry *Registry
}

// NewGateway returns a Gateway over r.
func NewGateway(r *Registry) *Gateway {
	return &Gateway{registry: r}
}

// Registry returns the catalogue the gateway dispatches into.
func (g *Gateway) Registry() *Registry { return g.registry }

// Invoke looks up name and calls it with args. It never panics.
func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (out schema.Outcome) {
	tool, ok := g.registry.Lookup(name)
	if !ok {
		return schema.Fail(schema.KindNotFound, fmt.Sprintf("Tool '%s' not found", name))
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked", "tool", name, "panic", r, "stack", string(debug.Stack()))
			out = schema.Fail(schema.KindPanic, fmt.Sprint(r))
		}
		slog.Debug("tool invoked", "tool", name, "args", stringutils.Truncate(fmt.Sprint(args), 200),
			"duration", time.Since(start), "ok", out.OK())
	}()

	value, err := tool.Call(ctx, args)
	if err != nil {
		return schema.Fail(ErrorKind(err), err.Error())
	}
	return schema.Success(value)
}

// ErrorKind names the class of err: the Kind of a schema.KindError in its
// chain, else the first exported concrete type name found while unwrapping,
// else "Error".
func ErrorKind(err error) string {
	var ke schema.KindError
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		t := reflect.TypeOf(e)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if name := t.Name(); name != "" && unicode.IsUpper([]rune(name)[0]) {
			return name
		}
	}
	return schema.KindGeneric
}
