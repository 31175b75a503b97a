package parsing

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema selects the JSON Schema a model reply must satisfy.
type Schema int

const (
	// SchemaNone skips schema validation.
	SchemaNone Schema = iota
	// SchemaProfile covers candidate profile extraction replies.
	SchemaProfile
	// SchemaMatch covers match evaluation replies.
	SchemaMatch
)

//go:embed schemas/profile.json
var profileSchemaJSON string

//go:embed schemas/match.json
var matchSchemaJSON string

func schemaLoader(schema Schema) gojsonschema.JSONLoader {
	switch schema {
	case SchemaProfile:
		return gojsonschema.NewStringLoader(profileSchemaJSON)
	case SchemaMatch:
		return gojsonschema.NewStringLoader(matchSchemaJSON)
	default:
		return nil
	}
}

func validate(doc string, schema Schema) error {
	loader := schemaLoader(schema)
	if loader == nil {
		return nil
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &ParseError{Reason: "schema validation failed", Preview: preview(doc), Err: err}
	}

	if !result.Valid() {
		return &ParseError{Reason: "schema violation: " + joinSchemaErrors(result), Preview: preview(doc)}
	}

	return nil
}

func joinSchemaErrors(result *gojsonschema.Result) string {
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}

	return strings.Join(messages, "; ")
}
