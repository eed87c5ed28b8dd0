package mapping

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/rowmap/internal/value"
)

// Definition is the content of a rules file: the mapping plus an optional query.
type Definition struct {
	Mapping Rules  `json:"mapping"`
	Filter  *Query `json:"filter,omitempty"`
}

// Compile validates the definition.
func (d Definition) Compile() (*Plan, error) {
	return Compile(d.Mapping, d.Filter)
}

// LoadDefinition reads a rules file written in YAML or JSON.
//
//	mapping:
//	  fields:
//	    - path: name
//	    - path: score
//	      alias: s
//	filter:
//	  conditions:
//	    - {field: s, operator: gte, value: 60}
//	  sort: {field: s, order: desc}
//	  limit: 10
func LoadDefinition(r io.Reader) (Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Definition{}, fmt.Errorf("read rules: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return Definition{}, fmt.Errorf("%w: parse rules: %v", ErrInvalidRules, err)
	}
	if generic == nil {
		return Definition{}, fmt.Errorf("%w: rules file is empty", ErrInvalidRules)
	}

	// Conditions distinguish an omitted value from null, which only the JSON
	// decoding of filter.Condition preserves.
	encoded, err := value.Marshal(generic)
	if err != nil {
		return Definition{}, fmt.Errorf("%w: normalize rules: %v", ErrInvalidRules, err)
	}

	if err := ValidatePayload(DefinitionSchema, encoded); err != nil {
		return Definition{}, err
	}

	var def Definition
	if err := value.Unmarshal(encoded, &def); err != nil {
		return Definition{}, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	return def, nil
}
