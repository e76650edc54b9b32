package output

import (
	"fmt"
	"strings"

	"github.com/mj1618/dump-hierarchy/internal/model"
)

// FormatAgentString renders one line per element worth acting on:
//
//	[0/1/2] btn "Sign in" id=com.example:id/login (540,960) [40,900][1040,1020]
//
// Elements without text, id, description, or input capability are skipped.
// The bracketed path can be fed back to tools that accept a flatten path.
func FormatAgentString(roots []model.Node) string {
	var b strings.Builder
	for _, n := range model.Flatten(roots) {
		if n.Text == "" && n.ResourceID == "" && n.ContentDesc == "" && !n.Interactive() {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s", n.Path, model.MapRole(n.Class))
		label := n.Text
		if label == "" {
			label = n.ContentDesc
		}
		if label != "" {
			fmt.Fprintf(&b, " %q", label)
		}
		if n.ResourceID != "" {
			fmt.Fprintf(&b, " id=%s", n.ResourceID)
		}
		if n.Checkable {
			if n.Checked {
				b.WriteString(" checked")
			} else {
				b.WriteString(" unchecked")
			}
		}
		if !n.Enabled {
			b.WriteString(" disabled")
		}
		if n.Focused {
			b.WriteString(" focused")
		}
		fmt.Fprintf(&b, " (%d,%d) %s\n", n.Bounds.CenterX(), n.Bounds.CenterY(), n.Bounds.ShortString())
	}
	return b.String()
}
