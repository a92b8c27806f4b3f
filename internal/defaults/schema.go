package defaults

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
)

// documentSchema constrains the defaults file to known profile sections
// holding scalar fields. Structured values are rejected here so the
// loader only ever has to stringify scalars.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "snowflake":  {"$ref": "#/definitions/section"},
    "databricks": {"$ref": "#/definitions/section"},
    "s3":         {"$ref": "#/definitions/section"}
  },
  "definitions": {
    "section": {
      "type": "object",
      "additionalProperties": {
        "type": ["string", "number", "boolean", "null"]
      }
    }
  }
}`

func validateDocument(doc map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("defaults schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return ccerrors.ConfigError{
		Field:      "defaults",
		Message:    "defaults file does not match the expected structure",
		Suggestion: "Profile sections (snowflake, databricks, s3) may only contain scalar fields. Problems: " + strings.Join(details, "; "),
	}
}
