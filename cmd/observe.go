package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/server"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Watch for UI changes and stream diffs as JSONL",
	Long: `Listen for content-changed events and emit the elements that were added,
removed or changed as JSONL to stdout. Nothing is written while the UI is
stable.

Output is always JSONL regardless of the --format flag.

Use Ctrl+C or --duration to stop observing.`,
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().Int("duration", 0, "Max seconds to observe (0 = until Ctrl+C)")
	observeCmd.Flags().Bool("compressed", true, "Diff the compressed tree")
	observeCmd.Flags().Bool("ignore-bounds", false, "Ignore element position changes")
}

// observeEvent is one JSONL line.
type observeEvent struct {
	TS int64 `json:"ts"`
	model.UIChange
}

func runObserve(cmd *cobra.Command, args []string) error {
	durationSec, _ := cmd.Flags().GetInt("duration")
	compressed, _ := cmd.Flags().GetBool("compressed")
	ignoreBounds, _ := cmd.Flags().GetBool("ignore-bounds")

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if durationSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(durationSec)*time.Second)
		defer cancel()
	}
	return observe(ctx, ctrl, os.Stdout, compressed, ignoreBounds)
}

// observe writes one line per UI change until ctx is done.
func observe(ctx context.Context, ctrl *server.Controller, w io.Writer, compressed, ignoreBounds bool) error {
	changed := make(chan struct{}, 1)
	if !ctrl.OnChange(func(model.AccessibilityEvent) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}) {
		return fmt.Errorf("this backend does not report UI changes")
	}

	roots, err := ctrl.Nodes(compressed)
	if err != nil {
		return err
	}
	prev := model.Flatten(roots)
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Watch(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-changed:
			}
			roots, err := ctrl.Nodes(compressed)
			if err != nil {
				return err
			}
			curr := model.Flatten(roots)
			ts := time.Now().UnixMilli()
			for _, c := range model.DiffNodes(prev, curr) {
				if ignoreBounds {
					delete(c.Changes, "bounds")
					if c.Type == model.ChangeChanged && len(c.Changes) == 0 {
						continue
					}
				}
				if err := enc.Encode(observeEvent{TS: ts, UIChange: c}); err != nil {
					return err
				}
			}
			prev = curr
		}
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
