package storage

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "tasks.schema.json"

// schemaSource describes the persisted file. It is used only for diagnostics:
// Decode is more lenient than the schema and never rejects on its findings.
const schemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "maxItems": 100,
  "items": {
    "type": "object",
    "required": ["name", "priority", "description", "deadline", "categories", "subtasks"],
    "properties": {
      "name": {"type": "string", "minLength": 1, "maxLength": 49},
      "priority": {"type": "integer", "minimum": 1, "maximum": 9},
      "description": {"type": "string", "maxLength": 99},
      "deadline": {"type": "string", "pattern": "^[0-9]{2}/[0-9]{2}/[0-9]{4}$"},
      "status": {"enum": ["done", "pending"]},
      "categories": {
        "type": "array",
        "maxItems": 10,
        "items": {"type": "string", "maxLength": 29}
      },
      "subtasks": {
        "type": "array",
        "maxItems": 50,
        "items": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string", "minLength": 1, "maxLength": 49},
            "status": {"enum": ["done", "pending"]}
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// ValidationError is a schema finding at a path such as tasks[2].deadline.
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

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Check validates data against the file schema and returns every finding.
// Data that is not JSON yields no findings; Decode reports that case.
func Check(data []byte) []*ValidationError {
	sch, err := compiledSchema()
	if err != nil {
		return []*ValidationError{{Err: fmt.Errorf("schema unavailable: %w", err)}}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []*ValidationError{{Err: err}}
	}
	var out []*ValidationError
	collectSchemaErrors(&out, ve)
	return out
}

func collectSchemaErrors(out *[]*ValidationError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*out = append(*out, &ValidationError{
			Path: pointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(out, cause)
	}
}

// pointerToPath turns "/2/subtasks/0/name" into "tasks[2].subtasks[0].name".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	path := "tasks"
	if ptr == "" {
		return path
	}
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		path += "." + part
	}
	return path
}
