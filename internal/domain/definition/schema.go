package definition

// documentSchema is the JSON-schema description of a relay.yaml document.
// It guards structure only; semantic checks (key satisfiability, kinds)
// live in Document.Validate.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pipelines"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string", "pattern": "^v[0-9]+\\.[0-9]+\\.[0-9]+$"},
    "pipelines": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["steps"],
        "additionalProperties": false,
        "properties": {
          "description": {"type": "string"},
          "steps": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name", "kind", "uses"],
              "additionalProperties": false,
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "kind": {"enum": ["analyze", "mutate", "validate", "notify"]},
                "uses": {"type": "string", "minLength": 1},
                "requires": {"type": "array", "items": {"type": "string"}},
                "produces": {"type": "array", "items": {"type": "string"}},
                "retryable": {"type": "boolean"},
                "timeout": {"type": "string"},
                "with": {
                  "type": "object",
                  "additionalProperties": {"type": "string"}
                }
              }
            }
          }
        }
      }
    }
  }
}`
