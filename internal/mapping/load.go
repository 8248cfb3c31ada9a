package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// mappingSchema constrains a document to nested groups with integer leaves.
// JSON is a subset of CUE, so the raw document unifies directly against it.
const mappingSchema = `
#Mapping: {
	[string]: int | #Mapping
}
#Mapping
`

// Load reads and validates a mapping document from a JSON file.
//
// Every failure (missing file, malformed JSON, non-integer leaf) is returned
// as a *LoadError; callers that want to continue fall back to Default and
// record that the fallback was taken.
func Load(file string) (Document, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return Document{}, &LoadError{File: file, Err: err}
	}
	doc, err := Parse(raw)
	if err != nil {
		return Document{}, &LoadError{File: file, Err: err}
	}
	return doc, nil
}

// Parse validates and decodes a raw JSON mapping document.
func Parse(raw []byte) (Document, error) {
	if err := validateShape(raw); err != nil {
		return Document{}, err
	}

	// Decode with json.Number so large codes survive without float64
	// precision loss.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return FromMap(tree), nil
}

// validateShape unifies the raw document against the mapping schema.
func validateShape(raw []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(mappingSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile mapping schema: %w", err)
	}

	doc := ctx.CompileBytes(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid mapping document: %w", err)
	}
	return nil
}
