package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// HierarchyXML renders window roots in the uiautomator dump format:
//
//	<hierarchy rotation="0"><node index="0" text="" ... bounds="[0,0][1080,2400]">...</node></hierarchy>
func HierarchyXML(roots []Node, rotation int) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version='1.0' encoding='UTF-8' standalone='yes'`)
	hierarchy := doc.CreateElement("hierarchy")
	hierarchy.CreateAttr("rotation", strconv.Itoa(rotation))
	for _, root := range roots {
		appendNode(hierarchy, root)
	}
	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("write hierarchy xml: %w", err)
	}
	return out, nil
}

func appendNode(parent *etree.Element, n Node) {
	el := parent.CreateElement("node")
	el.CreateAttr("index", strconv.Itoa(n.Index))
	el.CreateAttr("text", n.Text)
	el.CreateAttr("resource-id", n.ResourceID)
	el.CreateAttr("class", n.Class)
	el.CreateAttr("package", n.Package)
	el.CreateAttr("content-desc", n.ContentDesc)
	el.CreateAttr("checkable", strconv.FormatBool(n.Checkable))
	el.CreateAttr("checked", strconv.FormatBool(n.Checked))
	el.CreateAttr("clickable", strconv.FormatBool(n.Clickable))
	el.CreateAttr("enabled", strconv.FormatBool(n.Enabled))
	el.CreateAttr("focusable", strconv.FormatBool(n.Focusable))
	el.CreateAttr("focused", strconv.FormatBool(n.Focused))
	el.CreateAttr("scrollable", strconv.FormatBool(n.Scrollable))
	el.CreateAttr("long-clickable", strconv.FormatBool(n.LongClickable))
	el.CreateAttr("password", strconv.FormatBool(n.Password))
	el.CreateAttr("selected", strconv.FormatBool(n.Selected))
	el.CreateAttr("bounds", n.Bounds.ShortString())
	for _, child := range n.Children {
		appendNode(el, child)
	}
}

// DescribeRoot formats a window root the way accessibility node dumps do,
// e.g. "Node[class=android.widget.FrameLayout; package=com.example; bounds=[0,0][1080,2400]; children=3]".
func DescribeRoot(n Node) string {
	var b strings.Builder
	b.WriteString("Node[class=")
	b.WriteString(n.Class)
	b.WriteString("; package=")
	b.WriteString(n.Package)
	if n.Text != "" {
		fmt.Fprintf(&b, "; text=%s", n.Text)
	}
	if n.ContentDesc != "" {
		fmt.Fprintf(&b, "; contentDescription=%s", n.ContentDesc)
	}
	fmt.Fprintf(&b, "; bounds=%s; children=%d]", n.Bounds.ShortString(), len(n.Children))
	return b.String()
}

// DescribeRoots formats several roots as a bracketed, comma-separated list.
func DescribeRoots(roots []Node) string {
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = DescribeRoot(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
