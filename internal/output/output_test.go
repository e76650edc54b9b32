package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"gopkg.in/yaml.v3"
)

func sampleWindows() []model.Node {
	return []model.Node{
		{
			Attributes: model.Attributes{Class: "android.widget.FrameLayout", Enabled: true,
				Bounds: model.Rect{Left: 0, Top: 0, Right: 1080, Bottom: 2400}},
			Children: []model.Node{
				{Attributes: model.Attributes{Class: "android.widget.Button", Text: "OK", ResourceID: "com.example:id/ok",
					Clickable: true, Enabled: true, Bounds: model.Rect{Left: 10, Top: 20, Right: 110, Bottom: 50}}},
				{Attributes: model.Attributes{Class: "android.widget.CheckBox", Text: "Remember", Checkable: true,
					Checked: true, Enabled: false, Bounds: model.Rect{Left: 10, Top: 60, Right: 110, Bottom: 90}}},
			},
		},
	}
}

func TestWriteYAML(t *testing.T) {
	result := DumpResult{TS: 1707500000, Windows: sampleWindows()}

	var buf bytes.Buffer
	if err := WriteYAML(&buf, result); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded DumpResult
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Windows) != 1 || len(decoded.Windows[0].Children) != 2 {
		t.Fatalf("windows did not survive encoding: %+v", decoded.Windows)
	}
	if decoded.Windows[0].Children[0].Bounds != (model.Rect{Left: 10, Top: 20, Right: 110, Bottom: 50}) {
		t.Errorf("bounds: got %+v", decoded.Windows[0].Children[0].Bounds)
	}
	if decoded.Windows[0].Children[1].Enabled {
		t.Error("enabled=false should survive encoding")
	}
}

func TestWriteJSON_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]string{"url": "a<b>&c"}, false); err != nil {
		t.Fatal(err)
	}
	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "\n") {
		t.Errorf("compact JSON should be single-line, got:\n%s", out)
	}
	if !strings.Contains(out, "a<b>&c") {
		t.Errorf("HTML characters should not be escaped, got %s", out)
	}
}

func TestWriteJSON_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"a": 1, "b": 2}, true); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") < 3 {
		t.Errorf("pretty JSON should be indented, got:\n%s", buf.String())
	}
}

func TestFormatAgentString(t *testing.T) {
	out := FormatAgentString(sampleWindows())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (structural root skipped), got %d:\n%s", len(lines), out)
	}
	if want := `[0/0] btn "OK" id=com.example:id/ok (60,35) [10,20][110,50]`; lines[0] != want {
		t.Errorf("line 0:\n got %s\nwant %s", lines[0], want)
	}
	if !strings.Contains(lines[1], "chk") || !strings.Contains(lines[1], "checked") || !strings.Contains(lines[1], "disabled") {
		t.Errorf("line 1 missing state flags: %s", lines[1])
	}
}

func TestFprint_AgentFallsBackToYAML(t *testing.T) {
	old := OutputFormat
	OutputFormat = FormatAgent
	defer func() { OutputFormat = old }()

	var buf bytes.Buffer
	if err := Fprint(&buf, map[string]bool{"ok": true}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "ok: true" {
		t.Errorf("expected YAML fallback, got %q", buf.String())
	}
}
