package server

import (
	"encoding/json"
	"fmt"

	"github.com/hyperjump/meishi/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// contactSchema describes the body of POST and PUT /api/v1/contacts.
// Name presence is checked by the service after trimming.
const contactSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name":    {"type": "string", "maxLength": 256},
    "company": {"type": "string", "maxLength": 256},
    "title":   {"type": "string", "maxLength": 256},
    "phone":   {"type": "string", "maxLength": 64},
    "email":   {"type": "string", "maxLength": 320},
    "website": {"type": "string", "maxLength": 2048},
    "address": {"type": "string", "maxLength": 1024},
    "notes":   {"type": "string", "maxLength": 65536},
    "tags": {
      "type": "array",
      "maxItems": 64,
      "items": {"type": "string", "maxLength": 64}
    }
  }
}`

var compiledContactSchema = jsonschema.MustCompileString("contact.json", contactSchema)

// schemaError is a request body that is valid JSON but does not match the schema.
type schemaError struct {
	err error
}

func (e *schemaError) Error() string { return e.err.Error() }

func (e *schemaError) Unwrap() error { return e.err }

// decodeContactInput validates body against the contact schema and decodes it.
// Malformed JSON yields a plain error; a schema mismatch yields *schemaError.
func decodeContactInput(body []byte) (models.ContactInput, error) {
	var in models.ContactInput
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return in, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledContactSchema.Validate(doc); err != nil {
		return in, &schemaError{err: err}
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return in, fmt.Errorf("invalid JSON: %w", err)
	}
	return in, nil
}
