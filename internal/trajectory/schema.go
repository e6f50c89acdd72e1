package trajectory

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

// compiledSchema compiles the embedded schema once. A compile failure here
// is a programming error (the schema ships with the binary), surfaced to
// every caller rather than panicking at init.
func compiledSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		schemaValue = ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := schemaValue.Err(); err != nil {
			schemaErr = fmt.Errorf("compile embedded schema: %w", err)
		}
	})
	return schemaValue, schemaErr
}

// validateSchema checks raw document bytes against the embedded CUE
// schema. Returns a DocumentError on mismatch.
func validateSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	expr, err := cuejson.Extract("document.json", data)
	if err != nil {
		return &DocumentError{Code: ErrCodeSyntax, Message: err.Error()}
	}

	ctx := schema.Context()
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return &DocumentError{Code: ErrCodeSyntax, Message: err.Error()}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &DocumentError{Code: ErrCodeSchema, Message: err.Error()}
	}
	return nil
}
