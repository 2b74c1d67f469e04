package wire

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// workflowSchema is the JSON Schema for the wire form of a workflow
// definition. Action and condition elements only require the
// discriminator tag; unknown tags pass so newer variants deserialize.
const workflowSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["n", "st"],
  "properties": {
    "n": {"type": "string", "minLength": 1, "maxLength": 128},
    "d": {"type": "string", "maxLength": 4000},
    "st": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["n"],
        "properties": {
          "n": {"type": "string"},
          "d": {"type": "string"},
          "in": {"type": "boolean"}
        }
      }
    },
    "tr": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["n", "f", "to"],
        "properties": {
          "n": {"type": "string"},
          "d": {"type": "string"},
          "f": {"type": "string"},
          "to": {"type": "string"},
          "pm": {
            "type": "object",
            "required": ["sk"],
            "properties": {
              "sk": {"type": "boolean"},
              "g": {"type": "array", "items": {"type": "integer"}}
            }
          },
          "tg": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["n", "ph", "a"],
              "properties": {
                "n": {"type": "string"},
                "ph": {"enum": ["s", "a"]},
                "c": {"type": "object", "required": ["t"]},
                "a": {"type": "object", "required": ["t"]}
              }
            }
          }
        }
      }
    },
    "pr": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "i": {"type": "integer"},
          "p": {"type": "string"}
        }
      }
    },
    "ty": {"type": "array", "items": {"type": "string"}}
  }
}`

// ValidateDocument checks a raw wire payload against the workflow
// schema before decoding. Violations are returned as human-readable
// strings; the error return is reserved for schema machinery failures.
func ValidateDocument(data []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(workflowSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("wire: schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return violations, nil
}
