package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/toolforge/toolforge/internal/schema"
)

type addArgs struct {
	A int `json:"a"`
	B int `json:"b" default:"10"`
}

type kindErr struct{}

func (kindErr) Error() string { return "bad table" }
func (kindErr) Kind() string  { return "OperationalError" }

func newTestGateway() *Gateway {
	r := NewRegistryBuilder().
		WithTool(NewFuncTool("add", "Add two numbers.", func(_ context.Context, in addArgs) (any, error) {
			return map[string]any{"sum": in.A + in.B}, nil
		})).
		WithTool(NewFuncTool("greet", "", func(_ context.Context, in echoArgs) (any, error) {
			return "hello " + in.Text, nil
		})).
		WithTool(NewFuncTool("fail", "", func(_ context.Context, _ struct{}) (any, error) {
			return nil, errors.New("boom")
		})).
		WithTool(NewFuncTool("fail_kind", "", func(_ context.Context, _ struct{}) (any, error) {
			return nil, fmt.Errorf("query: %w", kindErr{})
		})).
		WithTool(NewFuncTool("fail_path", "", func(_ context.Context, _ struct{}) (any, error) {
			return nil, fmt.Errorf("open db: %w", &fs.PathError{Op: "open", Path: "x.db", Err: fs.ErrNotExist})
		})).
		WithTool(NewFuncTool("panics", "", func(_ context.Context, _ struct{}) (any, error) {
			panic("kaboom")
		})).
		Build()
	return NewGateway(r)
}

func TestGateway_NotFound(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "nope", map[string]any{})
	if out.OK() {
		t.Fatal("expected failure for unknown tool")
	}
	if out.Failure.Kind != schema.KindNotFound {
		t.Errorf("expected kind NotFound, got %q", out.Failure.Kind)
	}
	if out.Failure.Text() != "Tool 'nope' not found" {
		t.Errorf("unexpected text %q", out.Failure.Text())
	}
}

func TestGateway_SuccessWithDefault(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "add", map[string]any{"a": float64(5)})
	if !out.OK() {
		t.Fatalf("unexpected failure: %+v", out.Failure)
	}
	got := out.Value.(map[string]any)["sum"]
	if got != 15 {
		t.Errorf("expected sum 15, got %v", got)
	}
}

func TestGateway_CoercesNumericStrings(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "add", map[string]any{"a": "2", "b": "3"})
	if !out.OK() {
		t.Fatalf("unexpected failure: %+v", out.Failure)
	}
	if got := out.Value.(map[string]any)["sum"]; got != 5 {
		t.Errorf("expected sum 5, got %v", got)
	}
}

func TestGateway_MissingRequiredArgument(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "add", nil)
	if out.OK() {
		t.Fatal("expected failure for missing argument")
	}
	if out.Failure.Kind != schema.KindType {
		t.Errorf("expected TypeError, got %q", out.Failure.Kind)
	}
	if !strings.Contains(out.Failure.Message, "'a'") {
		t.Errorf("expected message to name the missing argument, got %q", out.Failure.Message)
	}
}

func TestGateway_NullRequiredArgumentIsMissing(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "add", map[string]any{"a": nil})
	if out.OK() {
		t.Fatal("expected failure for null required argument")
	}
	if out.Failure.Text() != "TypeError: add() missing required argument: 'a'" {
		t.Errorf("unexpected text %q", out.Failure.Text())
	}

	out = newTestGateway().Invoke(context.Background(), "add", map[string]any{"a": float64(1), "b": nil})
	if !out.OK() || out.Value.(map[string]any)["sum"] != 11 {
		t.Errorf("null optional argument should take its default, got %+v", out)
	}
}

func TestGateway_UnexpectedArgument(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "greet", map[string]any{"text": "x", "loud": true})
	if out.OK() {
		t.Fatal("expected failure for extra argument")
	}
	if !strings.Contains(out.Failure.Text(), "TypeError: greet() got an unexpected keyword argument 'loud'") {
		t.Errorf("unexpected text %q", out.Failure.Text())
	}
}

func TestGateway_NonIntegralNumber(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "add", map[string]any{"a": 1.5})
	if out.OK() || out.Failure.Kind != schema.KindType {
		t.Fatalf("expected TypeError, got %+v", out)
	}
}

func TestGateway_StringFieldRendersScalars(t *testing.T) {
	out := newTestGateway().Invoke(context.Background(), "greet", map[string]any{"text": float64(42)})
	if !out.OK() {
		t.Fatalf("unexpected failure: %+v", out.Failure)
	}
	if out.Value != "hello 42" {
		t.Errorf("expected %q, got %v", "hello 42", out.Value)
	}
}

func TestGateway_ErrorKinds(t *testing.T) {
	cases := []struct {
		tool string
		kind string
		text string
	}{
		{"fail", "Error", "Error: boom"},
		{"fail_kind", "OperationalError", "OperationalError: query: bad table"},
		{"fail_path", "PathError", "PathError: open db: open x.db: file does not exist"},
		{"panics", "Panic", "Panic: kaboom"},
	}
	g := newTestGateway()
	for _, tc := range cases {
		out := g.Invoke(context.Background(), tc.tool, nil)
		if out.OK() {
			t.Errorf("%s: expected failure", tc.tool)
			continue
		}
		if out.Failure.Kind != tc.kind {
			t.Errorf("%s: expected kind %q, got %q", tc.tool, tc.kind, out.Failure.Kind)
		}
		if out.Failure.Text() != tc.text {
			t.Errorf("%s: expected text %q, got %q", tc.tool, tc.text, out.Failure.Text())
		}
	}
}

func TestGateway_ConcurrentInvocations(t *testing.T) {
	g := newTestGateway()
	var wg sync.WaitGroup
	errs := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			out := g.Invoke(context.Background(), "add", map[string]any{"a": float64(n), "b": float64(n)})
			if !out.OK() || out.Value.(map[string]any)["sum"] != 2*n {
				errs <- fmt.Sprintf("invocation %d: %+v", n, out)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
