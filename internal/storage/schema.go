package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// taskSchema describes the persisted document: a JSON array of task records.
// There is no versioning field; a document that does not match is rejected
// rather than silently migrated.
const taskSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "start", "end", "category", "completed"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string", "minLength": 1},
      "start": {"type": "string", "format": "date-time"},
      "end": {"type": "string", "format": "date-time"},
      "category": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("tasks.schema.json", strings.NewReader(taskSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("tasks.schema.json")
})

// validate checks raw file contents against the task schema.
func validate(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile task schema: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse task file: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid task file: %w", err)
	}
	return nil
}
