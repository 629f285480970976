package extraction

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fieldsSchema describes the expected shape by type only. No property is
// required because the model output is never guaranteed complete.
const fieldsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "str": {"type": ["string", "null"]},
    "num": {"type": ["number", "null"]},
    "int": {"type": ["integer", "null"]},
    "bool": {"type": ["boolean", "null"]}
  },
  "properties": {
    "summary": {"$ref": "#/definitions/str"},
    "intent": {"type": ["object", "null"], "properties": {
      "intent_type": {"$ref": "#/definitions/str"},
      "confidence_score": {"$ref": "#/definitions/num"}
    }},
    "reported_by_and_main_contact_are_same": {"$ref": "#/definitions/bool"},
    "claim_type": {"type": ["object", "null"], "properties": {
      "category": {"$ref": "#/definitions/str"},
      "sub_category": {"$ref": "#/definitions/str"}
    }},
    "reporting_contact": {"type": ["object", "null"]},
    "best_contact": {"type": ["object", "null"]},
    "reply_to_emails": {"type": ["array", "null"], "items": {"$ref": "#/definitions/str"}},
    "insured": {"type": ["object", "null"]},
    "claimants": {"type": ["array", "null"], "items": {"type": ["object", "null"]}},
    "claimants_count": {"$ref": "#/definitions/int"},
    "injured_person_contact": {"type": ["object", "null"], "properties": {
      "medical_treatment_received": {"$ref": "#/definitions/bool"}
    }},
    "plaintiff": {"$ref": "#/definitions/str"},
    "policy": {"type": ["object", "null"]},
    "loss": {"type": ["object", "null"]},
    "matter": {"$ref": "#/definitions/str"},
    "acknowledgment": {"type": ["object", "null"], "properties": {
      "acknowledgment_sent": {"$ref": "#/definitions/bool"}
    }},
    "lawsuit_or_complaint_received": {"$ref": "#/definitions/bool"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("fnol-fields.json", fieldsSchema)
	})
	return compiledSchema, schemaErr
}

// Validate checks values against the advisory field schema.
func Validate(values map[string]any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := s.Validate(values); err != nil {
		return fmt.Errorf("fields do not match schema: %w", err)
	}
	return nil
}
