package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrValidation can be used with errors.Is to detect profile document
// validation failures.
var ErrValidation = errors.New("validation failed")

// Profile document kinds, matching the schema file names in the schemas
// directory (jobseeker_profile.json, interviewer_profile.json).
const (
	DocJobSeekerProfile   = "jobseeker_profile"
	DocInterviewerProfile = "interviewer_profile"
)

// Validator checks incoming profile documents against their JSON schemas
// before they reach the profile store. Matching reads skill names and
// is_primary flags from these documents, so malformed payloads are
// rejected at the boundary rather than breaking the matcher later.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles all *.json schema files from schemaDir, keyed by
// file name without extension.
func NewValidator(schemaDir string) (*Validator, error) {
	entries, err := os.ReadDir(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %q: %w", schemaDir, err)
	}
	schemas := make(map[string]*jsonschema.Schema)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		kind := e.Name()[:len(e.Name())-len(".json")]
		path := filepath.Join(schemaDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		id := "https://talentboard.dev/schemas/" + kind
		schemas[kind], err = jsonschema.CompileString(id, string(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", kind, err)
		}
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("no schemas found in %q", schemaDir)
	}
	return &Validator{schemas: schemas}, nil
}

// Validate hard-rejects a document that does not match the schema for its
// kind.
func (v *Validator) Validate(kind string, doc json.RawMessage) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}
	var parsed interface{}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
