package model

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rect is a screen rectangle in device pixels, edges inclusive-exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() int { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() int { return (r.Top + r.Bottom) / 2 }

// Width returns the rectangle width.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// ShortString formats the rectangle as "[left,top][right,bottom]".
func (r Rect) ShortString() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}

// ParseRect parses a "[left,top][right,bottom]" string.
func ParseRect(s string) (Rect, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
	}
	parts := strings.Split(trimmed[1:len(trimmed)-1], "][")
	if len(parts) != 2 {
		return Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
	}
	vals := make([]int, 0, 4)
	for _, p := range parts {
		xy := strings.Split(p, ",")
		if len(xy) != 2 {
			return Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
		}
		for _, v := range xy {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return Rect{}, fmt.Errorf("invalid bounds %q: %w", s, err)
			}
			vals = append(vals, n)
		}
	}
	return Rect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
}

// MarshalYAML writes the rectangle in its short string form.
func (r Rect) MarshalYAML() (interface{}, error) {
	return r.ShortString(), nil
}

// UnmarshalYAML reads the rectangle from its short string form.
func (r *Rect) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseRect(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalJSON writes the rectangle in its short string form.
func (r Rect) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.ShortString())), nil
}

// UnmarshalJSON reads the rectangle from its short string form.
func (r *Rect) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid bounds %s: %w", data, err)
	}
	parsed, err := ParseRect(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
