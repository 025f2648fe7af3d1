package todo

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// todosSchema constrains the payload the server returns for a list read.
// Kept deliberately loose: it guards against malformed responses, not
// against business rules.
const todosSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "completed", "userId"],
    "properties": {
      "id": {"type": "integer", "minimum": 0},
      "title": {"type": "string"},
      "completed": {"type": "boolean"},
      "userId": {"type": "integer", "minimum": 0}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("todos.json", strings.NewReader(todosSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("todos.json")
	})
	return schema, schemaErr
}

// ValidationError describes a payload validation failure with its location.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks a decoded list payload against the todos schema. When the
// schema cannot be compiled it falls back to minimal field checks.
func Validate(todos []Todo) error {
	if len(todos) == 0 {
		return nil
	}

	s, err := compiledSchema()
	if err != nil {
		return validateMinimal(todos)
	}

	// Round-trip through JSON so the schema sees the wire shape.
	data, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("marshal todos for validation: %w", err)
	}
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("unmarshal todos for validation: %w", err)
	}

	if err := s.Validate(payload); err != nil {
		return firstSchemaError(err)
	}
	return nil
}

// validateMinimal performs the fallback checks without JSON Schema.
func validateMinimal(todos []Todo) error {
	for i, t := range todos {
		if t.ID < 0 {
			return &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("must be non-negative, got %d", t.ID),
			}
		}
		if t.OwnerID < 0 {
			return &ValidationError{
				Path: fmt.Sprintf("[%d].userId", i),
				Err:  fmt.Errorf("must be non-negative, got %d", t.OwnerID),
			}
		}
	}
	return nil
}

// firstSchemaError extracts the deepest cause from a jsonschema error tree.
func firstSchemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{
		Path: strings.TrimPrefix(ve.InstanceLocation, "/"),
		Err:  fmt.Errorf("%s", ve.Message),
	}
}
