package mapping

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names one of the payload shapes accepted at the service boundary.
type Schema string

const (
	// DefinitionSchema is a rules file: {mapping, filter?}.
	DefinitionSchema Schema = "definition"
	// SaveSchema is a save request: {source, mapping, filter?}.
	SaveSchema Schema = "save"
	// PreviewSchema is a preview request: {document, mapping, filter?}.
	PreviewSchema Schema = "preview"
)

const definitions = `
"field": {
	"type": "object",
	"required": ["path"],
	"properties": {
		"path": {"type": "string", "minLength": 1},
		"alias": {"type": ["string", "null"]}
	}
},
"mapping": {
	"type": "object",
	"required": ["fields"],
	"properties": {
		"fields": {"type": "array", "items": {"$ref": "#/definitions/field"}}
	}
},
"condition": {
	"type": "object",
	"required": ["field", "operator"],
	"properties": {
		"field": {"type": "string"},
		"operator": {"type": "string"}
	}
},
"filter": {
	"type": ["object", "null"],
	"properties": {
		"conditions": {"type": ["array", "null"], "items": {"$ref": "#/definitions/condition"}},
		"sort": {
			"type": ["object", "null"],
			"required": ["field"],
			"properties": {
				"field": {"type": "string"},
				"order": {"type": "string"}
			}
		},
		"startIndex": {"type": ["number", "null"]},
		"limit": {"type": ["number", "null"]}
	}
},
"source": {
	"type": "object",
	"required": ["type", "value"],
	"properties": {
		"type": {"type": "string"},
		"value": {"type": "string", "minLength": 1}
	}
}`

var schemaSources = map[Schema]string{
	DefinitionSchema: `{
		"type": "object",
		"required": ["mapping"],
		"properties": {
			"mapping": {"$ref": "#/definitions/mapping"},
			"filter": {"$ref": "#/definitions/filter"}
		},
		"definitions": {` + definitions + `}
	}`,
	SaveSchema: `{
		"type": "object",
		"required": ["source", "mapping"],
		"properties": {
			"source": {"$ref": "#/definitions/source"},
			"mapping": {"$ref": "#/definitions/mapping"},
			"filter": {"$ref": "#/definitions/filter"}
		},
		"definitions": {` + definitions + `}
	}`,
	PreviewSchema: `{
		"type": "object",
		"required": ["document", "mapping"],
		"properties": {
			"document": {"type": ["object", "array"]},
			"mapping": {"$ref": "#/definitions/mapping"},
			"filter": {"$ref": "#/definitions/filter"}
		},
		"definitions": {` + definitions + `}
	}`,
}

var (
	compileSchemas sync.Once
	schemas        map[Schema]*gojsonschema.Schema
	schemaErr      error
)

func loadSchemas() (map[Schema]*gojsonschema.Schema, error) {
	compileSchemas.Do(func() {
		schemas = make(map[Schema]*gojsonschema.Schema, len(schemaSources))
		for name, source := range schemaSources {
			compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			schemas[name] = compiled
		}
	})
	return schemas, schemaErr
}

// ValidatePayload checks a raw JSON payload against the named schema.
// Violations are reported as ErrInvalidRules listing every failing location.
func ValidatePayload(schema Schema, payload []byte) error {
	compiled, err := loadSchemas()
	if err != nil {
		return err
	}

	s, ok := compiled[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidRules, strings.Join(problems, "; "))
	}

	return nil
}
