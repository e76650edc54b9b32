package action

import (
	"errors"
	"testing"

	"github.com/mj1618/dump-hierarchy/internal/input"
)

func TestParams_Int(t *testing.T) {
	p := Params{"a": 3, "b": 4.0, "c": "5", "d": " 6 ", "e": "seven", "f": true, "g": int64(8)}
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"a", 3, false},
		{"b", 4, false},
		{"c", 5, false},
		{"d", 6, false},
		{"e", 0, true},
		{"f", 0, true},
		{"g", 8, false},
		{"missing", 0, true},
	}
	for _, tt := range tests {
		got, err := p.RequireInt(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("RequireInt(%q) err = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("RequireInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestParams_IntRejectsFractionsAndOverflow(t *testing.T) {
	p := Params{
		"frac":     100.7,
		"fracStr":  "12.5",
		"huge":     1e300,
		"hugeStr":  "-1e19",
		"whole":    250.0,
		"wholeStr": "3e2",
	}
	for _, key := range []string{"frac", "fracStr", "huge", "hugeStr"} {
		_, err := p.RequireInt(key)
		var pe *ParamError
		if !errors.As(err, &pe) {
			t.Errorf("RequireInt(%q) err = %v, want a ParamError", key, err)
		}
	}
	if v, err := p.RequireInt("whole"); err != nil || v != 250 {
		t.Errorf("whole: got %d, %v", v, err)
	}
	if v, err := p.RequireInt("wholeStr"); err != nil || v != 300 {
		t.Errorf("wholeStr: got %d, %v", v, err)
	}
}

func TestParams_BoolOr(t *testing.T) {
	p := Params{"yes": true, "no": "false", "bad": "maybe", "num": 1}
	if v, err := p.BoolOr("yes", false); err != nil || !v {
		t.Errorf("yes: got %v, %v", v, err)
	}
	if v, err := p.BoolOr("no", true); err != nil || v {
		t.Errorf("no: got %v, %v", v, err)
	}
	if v, err := p.BoolOr("absent", true); err != nil || !v {
		t.Errorf("absent should use default, got %v, %v", v, err)
	}
	if _, err := p.BoolOr("bad", true); err == nil {
		t.Error("bad: expected error")
	}
	if _, err := p.BoolOr("num", true); err == nil {
		t.Error("num: expected error")
	}
}

func TestParams_StringAcceptsScalars(t *testing.T) {
	p := Params{"n": 42.0, "s": "hi"}
	if s, _ := p.RequireString("n"); s != "42" {
		t.Errorf("n: got %q", s)
	}
	if s, _ := p.RequireString("s"); s != "hi" {
		t.Errorf("s: got %q", s)
	}
	if _, err := p.RequireString("missing"); err == nil {
		t.Error("missing: expected error")
	}
}

func TestParams_Points(t *testing.T) {
	p := Params{"steps": []interface{}{
		map[string]interface{}{"x": 1.0, "y": 2.0},
		map[string]interface{}{"x": 3, "y": "4"},
	}}
	got, err := p.points("steps")
	if err != nil {
		t.Fatal(err)
	}
	want := []input.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
