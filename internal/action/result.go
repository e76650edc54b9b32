package action

import (
	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
)

// Result is the outcome of one action.
type Result struct {
	Success    bool               `json:"success"               yaml:"success"`
	Message    string             `json:"message"               yaml:"message"`
	X          *int               `json:"x,omitempty"           yaml:"x,omitempty"`
	Y          *int               `json:"y,omitempty"           yaml:"y,omitempty"`
	Bounds     string             `json:"bounds,omitempty"      yaml:"bounds,omitempty"`
	Element    *model.ElementInfo `json:"element,omitempty"     yaml:"element,omitempty"`
	ActualText *string            `json:"actual_text,omitempty" yaml:"actual_text,omitempty"`
	Steps      int                `json:"steps,omitempty"       yaml:"steps,omitempty"`
	Elapsed    string             `json:"elapsed,omitempty"     yaml:"elapsed,omitempty"`
}

// StepResult is the result of one step of a script.
type StepResult struct {
	ActionIndex int    `json:"actionIndex" yaml:"actionIndex"`
	ActionType  string `json:"actionType"  yaml:"actionType"`
	Result      `yaml:",inline"`
}

// ScriptResult is the aggregate result of a script run.
type ScriptResult struct {
	Success      bool         `json:"success"      yaml:"success"`
	TotalActions int          `json:"totalActions" yaml:"totalActions"`
	Results      []StepResult `json:"results"      yaml:"results"`
}

// LastFoundKey is the cache key find_and_click stores its element under.
const LastFoundKey = "last_found"

// Cache holds element handles by name for the duration of one script.
type Cache map[string]platform.Element

func failure(msg string) Result {
	return Result{Success: false, Message: msg}
}

func intPtr(v int) *int { return &v }
