package model

import "strings"

// RoleMap maps widget class names to compact role codes.
var RoleMap = map[string]string{
	"android.widget.Button":               "btn",
	"android.widget.ImageButton":          "btn",
	"android.widget.TextView":             "txt",
	"android.widget.ImageView":            "img",
	"android.widget.EditText":             "input",
	"android.widget.AutoCompleteTextView": "input",
	"android.widget.CheckBox":             "chk",
	"android.widget.Switch":               "toggle",
	"android.widget.ToggleButton":         "toggle",
	"android.widget.RadioButton":          "radio",
	"android.widget.ListView":             "list",
	"android.widget.GridView":             "list",
	"android.widget.Spinner":              "menu",
	"android.widget.TabWidget":            "tab",
	"android.widget.ScrollView":           "scroll",
	"android.widget.HorizontalScrollView": "scroll",
	"android.widget.FrameLayout":          "group",
	"android.widget.LinearLayout":         "group",
	"android.widget.RelativeLayout":       "group",
	"android.widget.Toolbar":              "toolbar",
	"android.webkit.WebView":              "web",
}

// suffixRoles covers support-library and custom subclasses whose simple name
// still identifies the widget, e.g. "androidx.recyclerview.widget.RecyclerView".
var suffixRoles = []struct {
	suffix string
	role   string
}{
	{"RecyclerView", "list"},
	{"Button", "btn"},
	{"EditText", "input"},
	{"TextView", "txt"},
	{"ImageView", "img"},
	{"Layout", "group"},
	{"ScrollView", "scroll"},
	{"Toolbar", "toolbar"},
}

// MapRole converts a widget class name to a compact code.
func MapRole(class string) string {
	if short, ok := RoleMap[class]; ok {
		return short
	}
	for _, s := range suffixRoles {
		if strings.HasSuffix(class, s.suffix) {
			return s.role
		}
	}
	return "other"
}
