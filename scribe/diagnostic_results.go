package scribe

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DiagnosticResult is one named test and its result.
type DiagnosticResult struct {
	Test   string `json:"test" jsonschema:"required" jsonschema_description:"Test name" validate:"nonblank"`
	Result string `json:"result" jsonschema:"required" jsonschema_description:"Result as stated" validate:"nonblank"`
}

// DiagnosticResults maps test name to result, keeping the order in which tests were stated.
// It serializes as a JSON object and decodes from either an object or an array of test/result pairs.
type DiagnosticResults []DiagnosticResult

// Get returns the result recorded for test.
func (d DiagnosticResults) Get(test string) (string, bool) {
	for _, r := range d {
		if r.Test == test {
			return r.Result, true
		}
	}
	return "", false
}

func (d DiagnosticResults) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	om := orderedmap.New[string, string]()
	for _, r := range d {
		om.Set(r.Test, r.Result)
	}
	return json.Marshal(om)
}

func (d *DiagnosticResults) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var pairs []DiagnosticResult
		if err := json.Unmarshal(b, &pairs); err != nil {
			return &resultsError{err: err}
		}
		*d = pairs
		return nil
	}

	out, err := decodeResultsObject(b)
	if err != nil {
		return &resultsError{err: err}
	}
	*d = out
	return nil
}

// decodeResultsObject reads the object form key by key, so a repeated test name is kept as a
// second pair for validation to reject instead of silently replacing the first.
func decodeResultsObject(b []byte) (DiagnosticResults, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("want object or array, got %v", tok)
	}
	out := DiagnosticResults{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		test, _ := tok.(string)
		var result string
		if err := dec.Decode(&result); err != nil {
			return nil, fmt.Errorf("result for %q: %w", test, err)
		}
		out = append(out, DiagnosticResult{Test: test, Result: result})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

type resultsError struct{ err error }

func (e *resultsError) Error() string { return "diagnostic_results: " + e.err.Error() }

func (e *resultsError) Unwrap() error { return e.err }

// JSONSchema exposes the pair form: strict structured output cannot describe objects with free-form keys.
func (DiagnosticResults) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("test", &jsonschema.Schema{Type: "string", Description: "Test name"})
	props.Set("result", &jsonschema.Schema{Type: "string", Description: "Result as stated"})
	return &jsonschema.Schema{
		Type: "array",
		Items: &jsonschema.Schema{
			Type:                 "object",
			Properties:           props,
			Required:             []string{"test", "result"},
			AdditionalProperties: jsonschema.FalseSchema,
		},
	}
}
