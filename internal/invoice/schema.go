package invoice

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/invoice.schema.json
var schemaFS embed.FS

const schemaName = "schemas/invoice.schema.json"

// SchemaJSON returns the raw canonical schema. It doubles as the target
// schema description handed to the record extractor.
func SchemaJSON() ([]byte, error) {
	return schemaFS.ReadFile(schemaName)
}

// CompileSchema compiles the canonical invoice schema for validation.
func CompileSchema() (*jsonschema.Schema, error) {
	raw, err := SchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add invoice schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile invoice schema: %w", err)
	}
	return schema, nil
}
