package ingestfront

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// SchemaValidator checks a raw ingest request body against the embedded
// OpenAPI Span schema before it is ever unmarshalled into a spanmodel.Span,
// catching malformed shapes (wrong types, missing required fields) ahead of
// the field-level checks in internal/validation (spec §6 ingest contract).
type SchemaValidator struct {
	spanSchema  *openapi3.Schema
	batchSchema *openapi3.Schema
}

// NewSchemaValidator parses the embedded OpenAPI document once at startup.
func NewSchemaValidator() (*SchemaValidator, error) {
	doc, err := openapi3.NewLoader().LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded ingest schema: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("embedded ingest schema is invalid: %w", err)
	}

	spanRef, ok := doc.Components.Schemas["Span"]
	if !ok || spanRef.Value == nil {
		return nil, fmt.Errorf("embedded ingest schema is missing the Span definition")
	}
	batchRef, ok := doc.Components.Schemas["SpanBatch"]
	if !ok || batchRef.Value == nil {
		return nil, fmt.Errorf("embedded ingest schema is missing the SpanBatch definition")
	}

	return &SchemaValidator{spanSchema: spanRef.Value, batchSchema: batchRef.Value}, nil
}

// ValidateSpan checks raw against the Span schema.
func (v *SchemaValidator) ValidateSpan(raw []byte) error {
	return visitJSON(v.spanSchema, raw)
}

// ValidateBatch checks raw against the SpanBatch schema (a JSON array of
// Span-shaped objects, bounded by maxItems).
func (v *SchemaValidator) ValidateBatch(raw []byte) error {
	return visitJSON(v.batchSchema, raw)
}

func visitJSON(schema *openapi3.Schema, raw []byte) error {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if err := schema.VisitJSON(data); err != nil {
		return fmt.Errorf("request body does not match the span schema: %w", err)
	}
	return nil
}
