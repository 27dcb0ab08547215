package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/signalhouse/brandgraph/pkg/common"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// GenerateSchema builds a JSON Schema for the given Go value's type, suitable
// for structured-output requests.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// StripMarkdownFence removes a surrounding ``` or ```json fence from model
// output, if present. Content without a fence passes through unchanged.
func StripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DecodeModelJSON parses model output into out with increasingly forgiving
// strategies: strip any markdown fence, try strict JSON, unwrap a
// double-encoded JSON string, then repair malformed JSON before one last
// attempt. All strategies failing is an error; there is no default value.
func DecodeModelJSON(input string, out any) error {
	input = StripMarkdownFence(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = StripMarkdownFence(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("%w: json repair failed: %s (input: %s)", common.ErrMalformedInference, err, input)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: unmarshal failed after repair: %s (input: %s)", common.ErrMalformedInference, err, input)
	}
	return nil
}
