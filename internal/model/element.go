package model

import "gopkg.in/yaml.v3"

// Attributes are the per-element properties exposed by the UI-tree library.
type Attributes struct {
	Text          string `json:"text,omitempty"           yaml:"text,omitempty"`
	ResourceID    string `json:"resource-id,omitempty"    yaml:"resource-id,omitempty"`
	Class         string `json:"class,omitempty"          yaml:"class,omitempty"`
	Package       string `json:"package,omitempty"        yaml:"package,omitempty"`
	ContentDesc   string `json:"content-desc,omitempty"   yaml:"content-desc,omitempty"`
	Checkable     bool   `json:"checkable,omitempty"      yaml:"checkable,omitempty"`
	Checked       bool   `json:"checked,omitempty"        yaml:"checked,omitempty"`
	Clickable     bool   `json:"clickable,omitempty"      yaml:"clickable,omitempty"`
	Enabled       bool   `json:"enabled"                  yaml:"enabled"`
	Focusable     bool   `json:"focusable,omitempty"      yaml:"focusable,omitempty"`
	Focused       bool   `json:"focused,omitempty"        yaml:"focused,omitempty"`
	Scrollable    bool   `json:"scrollable,omitempty"     yaml:"scrollable,omitempty"`
	LongClickable bool   `json:"long-clickable,omitempty" yaml:"long-clickable,omitempty"`
	Password      bool   `json:"password,omitempty"       yaml:"password,omitempty"`
	Selected      bool   `json:"selected,omitempty"       yaml:"selected,omitempty"`
	Bounds        Rect   `json:"bounds"                   yaml:"bounds"`
}

// Node is one element of a UI hierarchy snapshot.
type Node struct {
	Attributes `yaml:",inline"`
	Index      int    `json:"index"              yaml:"index,omitempty"`
	Children   []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// UnmarshalYAML decodes a node with enabled=true unless the document says otherwise.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	type rawNode Node
	raw := rawNode{Attributes: Attributes{Enabled: true}}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*n = Node(raw)
	return nil
}

// Interactive reports whether the element accepts any kind of user input.
func (a Attributes) Interactive() bool {
	return a.Clickable || a.LongClickable || a.Checkable || a.Focusable || a.Scrollable
}

// ElementInfo is the JSON shape of an element returned by the query routes.
type ElementInfo struct {
	Text          string `json:"text"           yaml:"text"`
	ID            string `json:"id"             yaml:"id"`
	ClassName     string `json:"class_name"     yaml:"class_name"`
	Package       string `json:"package"        yaml:"package"`
	ContentDesc   string `json:"content_desc"   yaml:"content_desc"`
	Checkable     bool   `json:"checkable"      yaml:"checkable"`
	Checked       bool   `json:"checked"        yaml:"checked"`
	Clickable     bool   `json:"clickable"      yaml:"clickable"`
	Enabled       bool   `json:"enabled"        yaml:"enabled"`
	Focusable     bool   `json:"focusable"      yaml:"focusable"`
	Focused       bool   `json:"focused"        yaml:"focused"`
	Scrollable    bool   `json:"scrollable"     yaml:"scrollable"`
	LongClickable bool   `json:"long_clickable" yaml:"long_clickable"`
	Selected      bool   `json:"selected"       yaml:"selected"`
	Bounds        string `json:"bounds"         yaml:"bounds"`
}

// Info converts attributes to their wire representation.
func (a Attributes) Info() ElementInfo {
	return ElementInfo{
		Text:          a.Text,
		ID:            a.ResourceID,
		ClassName:     a.Class,
		Package:       a.Package,
		ContentDesc:   a.ContentDesc,
		Checkable:     a.Checkable,
		Checked:       a.Checked,
		Clickable:     a.Clickable,
		Enabled:       a.Enabled,
		Focusable:     a.Focusable,
		Focused:       a.Focused,
		Scrollable:    a.Scrollable,
		LongClickable: a.LongClickable,
		Selected:      a.Selected,
		Bounds:        a.Bounds.ShortString(),
	}
}
