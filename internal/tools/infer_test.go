package tools

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type previewArgs struct {
	TableName string `json:"table_name"`
	Limit     int    `json:"limit" default:"20"`
}

type mixedArgs struct {
	Query   string            `json:"query"`
	Count   int64             `json:"count"`
	Ratio   float64           `json:"ratio"`
	Tags    []string          `json:"tags" default:"[]"`
	Extra   map[string]string `json:"extra" default:"{}"`
	Flag    bool              `json:"flag" default:"false"`
	Skipped string            `json:"-"`
	hidden  string
}

func decodeSchema(t *testing.T, s ParameterSchema) map[string]any {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return out
}

func TestInfer_RequiredAndDefaults(t *testing.T) {
	s, err := Infer(reflect.TypeFor[previewArgs]())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(s.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(s.Properties))
	}
	if s.Properties[0] != (Property{Name: "table_name", Type: TypeString}) {
		t.Errorf("unexpected first property: %+v", s.Properties[0])
	}
	if s.Properties[1] != (Property{Name: "limit", Type: TypeInteger}) {
		t.Errorf("unexpected second property: %+v", s.Properties[1])
	}
	if !reflect.DeepEqual(s.Required, []string{"table_name"}) {
		t.Errorf("expected required [table_name], got %v", s.Required)
	}
}

func TestInfer_FallbackTypes(t *testing.T) {
	s, err := Infer(reflect.TypeFor[mixedArgs]())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := map[string]string{
		"query": TypeString,
		"count": TypeInteger,
		"ratio": TypeString,
		"tags":  TypeString,
		"extra": TypeString,
		"flag":  TypeString,
	}
	if len(s.Properties) != len(want) {
		t.Fatalf("expected %d properties, got %+v", len(want), s.Properties)
	}
	for _, p := range s.Properties {
		if want[p.Name] != p.Type {
			t.Errorf("property %q: expected type %q, got %q", p.Name, want[p.Name], p.Type)
		}
	}
	if !reflect.DeepEqual(s.Required, []string{"query", "count", "ratio"}) {
		t.Errorf("unexpected required list: %v", s.Required)
	}
}

func TestInfer_NoParameters(t *testing.T) {
	s, err := Infer(reflect.TypeFor[struct{}]())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	out := decodeSchema(t, s)
	props, _ := out["properties"].(map[string]any)
	if len(props) != 0 {
		t.Errorf("expected empty properties, got %v", props)
	}
	req, ok := out["required"].([]any)
	if !ok {
		t.Fatalf("expected required to be an array, got %T", out["required"])
	}
	if len(req) != 0 {
		t.Errorf("expected empty required list, got %v", req)
	}
}

func TestInfer_RejectsNonStruct(t *testing.T) {
	if _, err := Infer(reflect.TypeFor[string]()); err == nil {
		t.Fatal("expected error for non-struct parameters")
	}
}

func TestParameterSchema_KeepsDeclarationOrder(t *testing.T) {
	s := ParameterSchema{
		Properties: []Property{{Name: "zeta", Type: TypeString}, {Name: "alpha", Type: TypeInteger}},
		Required:   []string{"zeta"},
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"integer"}},"required":["zeta"]}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestParameterSchema_IsValidJSONSchema(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[previewArgs](),
		reflect.TypeFor[mixedArgs](),
		reflect.TypeFor[struct{}](),
	} {
		s, err := Infer(typ)
		if err != nil {
			t.Fatalf("Infer(%v): %v", typ, err)
		}
		data, _ := json.Marshal(s)
		compiled, err := jsonschema.CompileString("params.json", string(data))
		if err != nil {
			t.Fatalf("schema for %v does not compile: %v", typ, err)
		}
		if typ == reflect.TypeFor[previewArgs]() {
			var ok, missing any
			_ = json.Unmarshal([]byte(`{"table_name":"users","limit":5}`), &ok)
			_ = json.Unmarshal([]byte(`{"limit":5}`), &missing)
			if err := compiled.Validate(ok); err != nil {
				t.Errorf("expected valid arguments, got %v", err)
			}
			if err := compiled.Validate(missing); err == nil {
				t.Error("expected missing table_name to fail validation")
			}
		}
	}
}
