package model

import "strconv"

// ChangeType represents the kind of UI change detected.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// UIChange represents a single change between two snapshots.
type UIChange struct {
	Type    ChangeType           `json:"type"              yaml:"type"`
	Path    string               `json:"path"              yaml:"path"`
	Class   string               `json:"class"             yaml:"class"`
	Changes map[string][2]string `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// DiffNodes compares two flattened snapshots. Nodes are matched by path.
func DiffNodes(prev, curr []FlatNode) []UIChange {
	prevMap := make(map[string]FlatNode, len(prev))
	for _, n := range prev {
		prevMap[n.Path] = n
	}
	currMap := make(map[string]FlatNode, len(curr))
	for _, n := range curr {
		currMap[n.Path] = n
	}

	var changes []UIChange
	for _, n := range curr {
		p, existed := prevMap[n.Path]
		if !existed || p.Class != n.Class {
			changes = append(changes, UIChange{Type: ChangeAdded, Path: n.Path, Class: n.Class})
			continue
		}
		if diffs := diffProperties(p.Attributes, n.Attributes); len(diffs) > 0 {
			changes = append(changes, UIChange{Type: ChangeChanged, Path: n.Path, Class: n.Class, Changes: diffs})
		}
	}
	for _, n := range prev {
		if c, exists := currMap[n.Path]; !exists || c.Class != n.Class {
			changes = append(changes, UIChange{Type: ChangeRemoved, Path: n.Path, Class: n.Class})
		}
	}
	return changes
}

func diffProperties(prev, curr Attributes) map[string][2]string {
	diffs := make(map[string][2]string)
	str := func(key, a, b string) {
		if a != b {
			diffs[key] = [2]string{a, b}
		}
	}
	flag := func(key string, a, b bool) {
		if a != b {
			diffs[key] = [2]string{strconv.FormatBool(a), strconv.FormatBool(b)}
		}
	}
	str("text", prev.Text, curr.Text)
	str("resource-id", prev.ResourceID, curr.ResourceID)
	str("content-desc", prev.ContentDesc, curr.ContentDesc)
	str("bounds", prev.Bounds.ShortString(), curr.Bounds.ShortString())
	flag("checked", prev.Checked, curr.Checked)
	flag("enabled", prev.Enabled, curr.Enabled)
	flag("focused", prev.Focused, curr.Focused)
	flag("selected", prev.Selected, curr.Selected)

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
