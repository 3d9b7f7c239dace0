package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	docgen "github.com/alnah/go-docgen"
)

// MaxBodySize bounds the generate request body.
const MaxBodySize = 1 << 20

const generateSchema = `{
  "type": "object",
  "properties": {
    "templateId": {"type": "string", "minLength": 1},
    "version":    {"type": "string"},
    "format":     {"type": "string", "enum": ["html", "pdf"]},
    "data":       {"type": "object", "minProperties": 1}
  },
  "required": ["templateId", "data"],
  "additionalProperties": false
}`

// compiled once; the schema is a constant.
var requestSchema = mustSchema(generateSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("httpapi: invalid request schema: %v", err))
	}
	return s
}

// validationError carries every problem found in a request body.
type validationError struct {
	messages []string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.messages)
}

// decodeRequest reads, validates and converts a generate request body.
// A body cut short by http.MaxBytesReader returns the *http.MaxBytesError.
// Numbers are decoded as json.Number so integers survive unchanged.
func decodeRequest(body io.Reader) (docgen.Request, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return docgen.Request{}, err
		}
		if errors.Is(err, io.EOF) {
			return docgen.Request{}, &validationError{messages: []string{"request body is required"}}
		}
		return docgen.Request{}, &validationError{messages: []string{"request body must be valid JSON"}}
	}
	if dec.More() {
		return docgen.Request{}, &validationError{messages: []string{"request body must contain a single JSON object"}}
	}

	result, err := requestSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return docgen.Request{}, &validationError{messages: []string{err.Error()}}
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return docgen.Request{}, &validationError{messages: msgs}
	}

	obj := doc.(map[string]any)
	req := docgen.Request{
		TemplateID: obj["templateId"].(string),
		Data:       convertNumbers(obj["data"]).(map[string]any),
	}
	if v, ok := obj["version"].(string); ok {
		req.Version = v
	}
	if f, ok := obj["format"].(string); ok {
		req.Format = docgen.Format(f)
	}
	return req, nil
}

// convertNumbers replaces json.Number with int64 when exact, float64 otherwise.
func convertNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = convertNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = convertNumbers(child)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
