package action

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner executes scripts step by step.
type Runner struct {
	exec *Executor
	log  *zap.Logger
}

// NewRunner creates a Runner on top of exec.
func NewRunner(exec *Executor, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{exec: exec, log: log.Named("script")}
}

// Run executes every step in order. A failing step marks the script as
// failed but never stops the steps after it. The element cache lives only
// for this call.
func (r *Runner) Run(ctx context.Context, steps []Step) ScriptResult {
	cache := Cache{}
	out := ScriptResult{Success: true, TotalActions: len(steps), Results: make([]StepResult, 0, len(steps))}
	for i, step := range steps {
		start := time.Now()
		var res Result
		if step.Err != nil {
			res = failure(step.Err.Error())
		} else {
			res = r.exec.Execute(ctx, step.Type, step.Params, cache)
		}
		if !res.Success {
			out.Success = false
		}
		r.log.Debug("script step",
			zap.Int("index", i),
			zap.String("type", step.Type),
			zap.Bool("success", res.Success),
			zap.String("message", res.Message),
			zap.Duration("elapsed", time.Since(start)))
		out.Results = append(out.Results, StepResult{ActionIndex: i, ActionType: step.Type, Result: res})
	}
	r.log.Info("script finished",
		zap.Int("actions", out.TotalActions),
		zap.Bool("success", out.Success))
	return out
}
