// Package selector turns (type, value) pairs into element predicates and
// waits for matching elements to appear.
package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/dump-hierarchy/internal/model"
)

var (
	// ErrUnknownType is returned by Build for an unrecognized selector type.
	ErrUnknownType = errors.New("unknown selector type")
	// ErrInvalidValue is returned by Build when a boolean selector gets a
	// value that is not a boolean.
	ErrInvalidValue = errors.New("invalid selector value")
)

// Kind is a selector variant tag.
type Kind string

const (
	KindText                Kind = "text"
	KindTextContains        Kind = "textContains"
	KindTextStartsWith      Kind = "textStartsWith"
	KindID                  Kind = "id"
	KindClass               Kind = "className"
	KindDescription         Kind = "description"
	KindDescriptionContains Kind = "descriptionContains"
	KindPackage             Kind = "package"
	KindCheckable           Kind = "checkable"
	KindChecked             Kind = "checked"
	KindClickable           Kind = "clickable"
	KindEnabled             Kind = "enabled"
	KindFocusable           Kind = "focusable"
	KindFocused             Kind = "focused"
	KindScrollable          Kind = "scrollable"
	KindSelected            Kind = "selected"
)

// aliases maps accepted spellings to their kind. Lookup is case-insensitive
// after stripping '-' and '_', so "text-contains", "text_contains" and
// "textContains" are the same selector.
var aliases = map[string]Kind{
	"text":                       KindText,
	"textcontains":               KindTextContains,
	"textstartswith":             KindTextStartsWith,
	"id":                         KindID,
	"resourceid":                 KindID,
	"res":                        KindID,
	"class":                      KindClass,
	"classname":                  KindClass,
	"clazz":                      KindClass,
	"description":                KindDescription,
	"desc":                       KindDescription,
	"contentdescription":         KindDescription,
	"descriptioncontains":        KindDescriptionContains,
	"desccontains":               KindDescriptionContains,
	"contentdescriptioncontains": KindDescriptionContains,
	"package":                    KindPackage,
	"pkg":                        KindPackage,
	"checkable":                  KindCheckable,
	"checked":                    KindChecked,
	"clickable":                  KindClickable,
	"enabled":                    KindEnabled,
	"focusable":                  KindFocusable,
	"focused":                    KindFocused,
	"scrollable":                 KindScrollable,
	"selected":                   KindSelected,
}

// Selector is a single-attribute predicate over element attributes.
type Selector struct {
	kind Kind
	str  string
	flag bool
}

// Build creates a selector from its wire form.
func Build(typ, value string) (Selector, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(typ)))
	kind, ok := aliases[key]
	if !ok {
		return Selector{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	s := Selector{kind: kind, str: value}
	if kind.isBool() {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, kind, value)
		}
		s.flag = b
	}
	return s, nil
}

func (k Kind) isBool() bool {
	switch k {
	case KindCheckable, KindChecked, KindClickable, KindEnabled,
		KindFocusable, KindFocused, KindScrollable, KindSelected:
		return true
	}
	return false
}

// Kind implements platform.Predicate.
func (s Selector) Kind() string { return string(s.kind) }

// Match implements platform.Predicate.
func (s Selector) Match(a model.Attributes) bool {
	switch s.kind {
	case KindText:
		return a.Text == s.str
	case KindTextContains:
		return strings.Contains(a.Text, s.str)
	case KindTextStartsWith:
		return strings.HasPrefix(a.Text, s.str)
	case KindID:
		return a.ResourceID == s.str
	case KindClass:
		return a.Class == s.str
	case KindDescription:
		return a.ContentDesc == s.str
	case KindDescriptionContains:
		return strings.Contains(a.ContentDesc, s.str)
	case KindPackage:
		return a.Package == s.str
	case KindCheckable:
		return a.Checkable == s.flag
	case KindChecked:
		return a.Checked == s.flag
	case KindClickable:
		return a.Clickable == s.flag
	case KindEnabled:
		return a.Enabled == s.flag
	case KindFocusable:
		return a.Focusable == s.flag
	case KindFocused:
		return a.Focused == s.flag
	case KindScrollable:
		return a.Scrollable == s.flag
	case KindSelected:
		return a.Selected == s.flag
	}
	return false
}

func (s Selector) String() string {
	if s.kind.isBool() {
		return fmt.Sprintf("%s=%t", s.kind, s.flag)
	}
	return fmt.Sprintf("%s=%q", s.kind, s.str)
}
