package cmd

import (
	"context"
	"testing"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/config"
	"github.com/mj1618/dump-hierarchy/internal/input"
)

func TestSwipeParams(t *testing.T) {
	params := swipeParams(input.Point{X: 0, Y: 0}, []input.Point{{X: 5, Y: 5}, {X: 10, Y: 10}})
	if params["startX"] != 0 || params["startY"] != 0 {
		t.Errorf("unexpected start: %v, %v", params["startX"], params["startY"])
	}
	steps, ok := params["steps"].([]interface{})
	if !ok || len(steps) != 2 {
		t.Fatalf("unexpected steps: %#v", params["steps"])
	}
}

func TestSwipe_RunsOnSimDevice(t *testing.T) {
	ctrl, err := newController(config.NewDefaultConfig())
	if err != nil {
		t.Fatalf("newController: %v", err)
	}
	from, to := input.Point{X: 540, Y: 1800}, input.Point{X: 540, Y: 600}
	params := swipeParams(from, interpolate(from, to, 4))
	params["duration"] = 0

	res := ctrl.RunScript(context.Background(), []action.Step{{Type: action.TypeSwipe, Params: params}})
	if !res.Success {
		t.Fatalf("swipe failed: %+v", res.Results)
	}
	if res.Results[0].Steps != 4 {
		t.Errorf("expected 4 steps, got %d", res.Results[0].Steps)
	}
}
