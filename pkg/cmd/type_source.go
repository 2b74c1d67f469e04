package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/pipeline"
)

// NewTypeSource loads property type definitions from a JSON file
// mapping artifact type names to their property type lists. An empty
// path yields an empty source, which makes every property change
// trigger fail with an unknown property type.
func NewTypeSource(path string) (pipeline.StaticTypeSource, error) {
	if path == "" {
		return pipeline.StaticTypeSource{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read property types file: %w", err)
	}

	var source map[string][]models.PropertyType
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse property types file: %w", err)
	}

	return source, nil
}
