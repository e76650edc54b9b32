package action

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned for a script body that cannot be run at all.
var ErrInvalidScript = errors.New("invalid script")

// Step is one parsed script entry. Err is set when the entry itself is
// malformed; the runner reports it as that step's failure.
type Step struct {
	Type   string
	Params Params
	Err    error
}

// ParseScript reads a JSON array of {"type": ..., "params": {...}} objects.
// Only an unparsable body or an empty array is an error; problems inside
// individual entries are attached to their Step.
func ParseScript(body []byte) ([]Step, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrInvalidScript)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of actions", ErrInvalidScript)
	}
	entries := root.Array()
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: script is empty", ErrInvalidScript)
	}

	steps := make([]Step, len(entries))
	for i, entry := range entries {
		steps[i] = parseStep(entry)
	}
	return steps, nil
}

func parseStep(entry gjson.Result) Step {
	if !entry.IsObject() {
		return Step{Err: invalid("action", "expected an object, got %s", entry.Type)}
	}
	var step Step
	typ := entry.Get("type")
	if typ.Type != gjson.String || typ.Str == "" {
		step.Err = missing("type")
		return step
	}
	step.Type = typ.Str

	params := entry.Get("params")
	if !params.Exists() {
		step.Err = missing("params")
		return step
	}
	if !params.IsObject() {
		step.Err = invalid("params", "expected an object, got %s", params.Type)
		return step
	}
	m, _ := params.Value().(map[string]interface{})
	step.Params = Params(m)
	return step
}

// ParseYAMLScript reads the same script shape from a YAML sequence of
// mappings. JSON input is accepted too since it is valid YAML.
func ParseYAMLScript(body []byte) ([]Step, error) {
	var entries []interface{}
	if err := yaml.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: script is empty", ErrInvalidScript)
	}

	steps := make([]Step, len(entries))
	for i, entry := range entries {
		steps[i] = parseYAMLStep(entry)
	}
	return steps, nil
}

func parseYAMLStep(entry interface{}) Step {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return Step{Err: invalid("action", "expected a mapping, got %T", entry)}
	}
	var step Step
	typ, _ := m["type"].(string)
	if typ == "" {
		step.Err = missing("type")
		return step
	}
	step.Type = typ

	raw, ok := m["params"]
	if !ok {
		step.Err = missing("params")
		return step
	}
	params, ok := raw.(map[string]interface{})
	if !ok {
		step.Err = invalid("params", "expected a mapping, got %T", raw)
		return step
	}
	step.Params = Params(params)
	return step
}
