package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FunctionSchema describes a tool the host can call: its name, what it does and
// the JSON schema of its arguments object.
type FunctionSchema struct {
	// Name is the name of the function to be called.
	Name string `json:"name"`
	// Description is a description of what the function does.
	Description string `json:"description"`
	// Parameters is the schema for the arguments object that the function expects.
	Parameters ValueSchema `json:"parameters"`
}

// ValueSchema is the subset of JSON Schema that tool arguments use: a flat
// object whose properties are strings, numbers, integers or booleans.
type ValueSchema struct {
	// Type is one of "object", "string", "integer", "number" or "boolean".
	Type string `json:"type,omitempty"`
	// Description provides a brief explanation of the value or field.
	Description string `json:"description,omitempty"`
	// Properties holds the schema of each argument. Only used when Type is "object".
	Properties map[string]ValueSchema `json:"properties,omitempty"`
	// Required lists the arguments that must be present when Type is "object".
	Required []string `json:"required,omitempty"`
	// Default is the value the tool assumes when an optional argument is omitted.
	Default any `json:"default,omitempty"`
}

// generateSchema builds the schema for a tool whose arguments decode into typ.
func generateSchema(name, description string, typ reflect.Type) FunctionSchema {
	return FunctionSchema{
		Name:        name,
		Description: description,
		Parameters:  generateObjectSchema(typ),
	}
}

// scalarSchema maps a Go field type to its JSON type. Pointers mark optional
// values and map to their element type.
func scalarSchema(t reflect.Type) ValueSchema {
	switch t.Kind() {
	case reflect.String:
		return ValueSchema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ValueSchema{Type: "integer"}
	case reflect.Bool:
		return ValueSchema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return ValueSchema{Type: "number"}
	case reflect.Ptr:
		return scalarSchema(t.Elem())
	default:
		panic("unsupported argument type: " + t.Kind().String())
	}
}

// generateObjectSchema reads the exported fields of a struct. A field is
// required unless its json tag says omitempty.
func generateObjectSchema(typ reflect.Type) ValueSchema {
	properties := make(map[string]ValueSchema)
	required := []string{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(jsonTag, ",")
		if name == "" {
			name = field.Name
		}

		fieldSchema := scalarSchema(field.Type)
		fieldSchema.Description = field.Tag.Get("description")
		if def, ok := field.Tag.Lookup("default"); ok {
			fieldSchema.Default = parseDefault(field.Type, def)
		}
		properties[name] = fieldSchema
		if opts != "omitempty" {
			required = append(required, name)
		}
	}
	return ValueSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// parseDefault converts a `default` struct tag into a value of the field's JSON
// type. It panics on malformed tags since they are programming errors.
func parseDefault(t reflect.Type, tag string) any {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return tag
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(tag, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("invalid integer default %q: %v", tag, err))
		}
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(tag, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("invalid unsigned default %q: %v", tag, err))
		}
		return n
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(tag, 64)
		if err != nil {
			panic(fmt.Sprintf("invalid number default %q: %v", tag, err))
		}
		return f
	case reflect.Bool:
		b, err := strconv.ParseBool(tag)
		if err != nil {
			panic(fmt.Sprintf("invalid boolean default %q: %v", tag, err))
		}
		return b
	default:
		panic("default tag not supported for kind " + t.Kind().String())
	}
}

// decodeArguments validates raw arguments against schema and returns them in
// a form encoding/json can decode into the tool's parameter struct. Integer
// arguments written as whole-number floats (3.0, 1e1) are rewritten as
// integers. Arguments the schema does not name are kept and ignored later.
func decodeArguments(schema ValueSchema, raw json.RawMessage) (json.RawMessage, error) {
	if schema.Type != "object" {
		return nil, errors.New("schema error: received an invalid object schema")
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil || args == nil {
		return nil, errors.New("invalid JSON format")
	}

	for key, val := range args {
		fieldSchema, found := schema.Properties[key]
		if !found {
			continue
		}
		normalized, err := checkValue(fieldSchema, val)
		if err != nil {
			return nil, fmt.Errorf("field \"%s\": %w", key, err)
		}
		args[key] = normalized
	}

	for _, field := range schema.Required {
		if _, exists := args[field]; !exists {
			return nil, fmt.Errorf("missing required field: %q", field)
		}
	}

	return json.Marshal(args)
}

// checkValue checks a decoded JSON value against a scalar schema.
func checkValue(fieldSchema ValueSchema, data any) (any, error) {
	switch fieldSchema.Type {
	case "integer":
		num, ok := data.(float64)
		if !ok || num != math.Trunc(num) {
			return nil, fmt.Errorf("type mismatch: expected integer, got %T", data)
		}
		if num < math.MinInt64 || num >= math.MaxInt64 {
			return nil, fmt.Errorf("integer %g out of range", num)
		}
		return int64(num), nil
	case "number":
		if _, ok := data.(float64); !ok {
			return nil, fmt.Errorf("type mismatch: expected number, got %T", data)
		}
	case "string":
		if _, ok := data.(string); !ok {
			return nil, fmt.Errorf("type mismatch: expected string, got %T", data)
		}
	case "boolean":
		if _, ok := data.(bool); !ok {
			return nil, fmt.Errorf("type mismatch: expected boolean, got %T", data)
		}
	default:
		return nil, fmt.Errorf("unsupported type: %q", fieldSchema.Type)
	}
	return data, nil
}
