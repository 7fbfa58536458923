package document

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaJSON is the JSON schema every specification document must match.
//
//go:embed schema.json
var SchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *openapi3.Schema
	schemaErr  error
)

// Schema returns the parsed document schema.
func Schema() (*openapi3.Schema, error) {
	schemaOnce.Do(func() {
		var s openapi3.Schema
		if err := json.Unmarshal(SchemaJSON, &s); err != nil {
			schemaErr = fmt.Errorf("failed to parse document schema: %w", err)
			return
		}
		schema = &s
	})
	return schema, schemaErr
}

// validateSchema checks a generic JSON value against the schema and returns
// every violation in document order.
func validateSchema(value any) ([]string, error) {
	s, err := Schema()
	if err != nil {
		return nil, err
	}

	verr := s.VisitJSON(value, openapi3.MultiErrors())
	if verr == nil {
		return nil, nil
	}
	return violations(verr), verr
}

// violations flattens a validation error into readable messages.
func violations(err error) []string {
	switch e := err.(type) {
	case openapi3.MultiError:
		var out []string
		for _, inner := range e {
			out = append(out, violations(inner)...)
		}
		return out
	case *openapi3.SchemaError:
		message := e.Reason
		if pointer := e.JSONPointer(); len(pointer) > 0 {
			message = "/" + strings.Join(pointer, "/") + ": " + message
		}
		return []string{message}
	default:
		return []string{err.Error()}
	}
}
