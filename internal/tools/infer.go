package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Parameter types understood by the inferrer. Everything that is not a
// textual or whole-number value is described as a string.
const (
	TypeString  = "string"
	TypeInteger = "integer"
)

// Property describes one parameter in a ParameterSchema.
type Property struct {
	Name string
	Type string
}

// ParameterSchema is the JSON-Schema-like description of a tool's parameters.
// Properties keep their declaration order when marshalled.
type ParameterSchema struct {
	Properties []Property
	Required   []string
}

// MarshalJSON renders {"type":"object","properties":{...},"required":[...]}
// with properties in declaration order.
func (s ParameterSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, p := range s.Properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, `:{"type":%q}`, p.Type)
	}
	buf.WriteString(`},"required":`)
	required := s.Required
	if required == nil {
		required = []string{}
	}
	req, err := json.Marshal(required)
	if err != nil {
		return nil, err
	}
	buf.Write(req)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// param is one bindable struct field.
type param struct {
	name       string
	index      int
	typ        string
	required   bool
	defaultVal string
}

// Infer describes the parameters declared by the struct type t. Field names
// come from json tags; a field carrying a `default` tag is optional.
func Infer(t reflect.Type) (ParameterSchema, error) {
	params, err := parseParams(t)
	if err != nil {
		return ParameterSchema{}, err
	}
	return schemaOf(params), nil
}

func schemaOf(params []param) ParameterSchema {
	s := ParameterSchema{
		Properties: make([]Property, 0, len(params)),
		Required:   []string{},
	}
	for _, p := range params {
		s.Properties = append(s.Properties, Property{Name: p.name, Type: p.typ})
		if p.required {
			s.Required = append(s.Required, p.name)
		}
	}
	return s
}

func parseParams(t reflect.Type) ([]param, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool parameters must be a struct, got %v", t)
	}

	params := make([]param, 0, t.NumField())
	seen := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate parameter %q", name)
		}
		seen[name] = true

		def, hasDefault := f.Tag.Lookup("default")
		params = append(params, param{
			name:       name,
			index:      i,
			typ:        classify(f.Type),
			required:   !hasDefault,
			defaultVal: def,
		})
	}
	return params, nil
}

func classify(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	default:
		return TypeString
	}
}
