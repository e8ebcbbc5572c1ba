package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// request body schemas compiled once at startup; a broken embedded schema
// is a programming error, so loading panics.
var bodySchemas = mustLoadSchemas("signup", "offer_create", "review_create")

func mustLoadSchemas(names ...string) map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		b, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", name, err))
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", name, err))
		}
		out[name] = rs
	}
	return out
}

// validateBody checks a raw JSON request body against a named schema and
// reports the first violation as a validation error.
func validateBody(ctx context.Context, name string, body []byte) error {
	rs, ok := bodySchemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	verrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("invalid json: %w", models.ErrValidation)
	}
	if len(verrs) > 0 {
		return fmt.Errorf("%s: %w", verrs[0].Message, models.ErrValidation)
	}
	return nil
}
