package config

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rawSchema constrains the config document shape before decoding, so typos
// like an unknown section name fail loudly instead of being ignored.
const rawSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "app": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "log_level": {"type": "string"},
        "log_path": {"type": "string"},
        "output_dir": {"type": "string"}
      }
    },
    "station": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "reference_stage": {"type": "number"},
        "min_year": {"type": "integer"}
      }
    },
    "usgs": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "base_url": {"type": "string"},
        "parameter_code": {"type": "string"},
        "timeout": {"type": "string"}
      }
    },
    "crests": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "csv_path": {"type": "string"}
      }
    },
    "report": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "snapshot": {"type": "boolean"},
        "serve": {"type": "boolean"},
        "listen": {"type": "string"}
      }
    },
    "store": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "path": {"type": "string"}
      }
    }
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", strings.NewReader(rawSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("config.schema.json")
}

func validateSchema(settings map[string]any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
