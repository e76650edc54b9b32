package model

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestElementInfo_JSONKeys(t *testing.T) {
	attrs := Attributes{
		Text:       "OK",
		ResourceID: "com.example:id/ok",
		Class:      "android.widget.Button",
		Clickable:  true,
		Enabled:    true,
		Bounds:     Rect{Left: 10, Top: 20, Right: 110, Bottom: 50},
	}
	data, err := json.Marshal(attrs.Info())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"text", "id", "class_name", "package", "content_desc", "checkable", "checked",
		"clickable", "enabled", "focusable", "focused", "scrollable", "long_clickable",
		"selected", "bounds",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in JSON output", key)
		}
	}
	if m["bounds"] != "[10,20][110,50]" {
		t.Errorf("bounds: got %v, want [10,20][110,50]", m["bounds"])
	}
	if m["id"] != "com.example:id/ok" {
		t.Errorf("id: got %v", m["id"])
	}
}

func TestNode_YAMLDefaultsEnabled(t *testing.T) {
	var nodes []Node
	src := `
- class: android.widget.FrameLayout
  bounds: "[0,0][1080,2400]"
  children:
    - text: Submit
      clickable: true
      bounds: "[100,200][300,260]"
    - text: Disabled
      enabled: false
      bounds: "[100,300][300,360]"
`
	if err := yaml.Unmarshal([]byte(src), &nodes); err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || len(nodes[0].Children) != 2 {
		t.Fatalf("unexpected tree shape: %+v", nodes)
	}
	if !nodes[0].Enabled {
		t.Error("root should default to enabled")
	}
	if !nodes[0].Children[0].Enabled {
		t.Error("child without enabled key should default to enabled")
	}
	if nodes[0].Children[1].Enabled {
		t.Error("explicit enabled: false should be kept")
	}
	if got := nodes[0].Children[0].Bounds; got != (Rect{100, 200, 300, 260}) {
		t.Errorf("bounds: got %+v", got)
	}
}
