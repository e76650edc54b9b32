package model

import "strconv"

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	Attributes
	// Path is the chain of child indexes from the window root, e.g. "0/2/1".
	Path  string
	Depth int
}

// Flatten converts a forest of nodes into a pre-order list.
func Flatten(roots []Node) []FlatNode {
	var result []FlatNode
	for i, root := range roots {
		flattenRecursive(root, strconv.Itoa(i), 0, &result)
	}
	return result
}

func flattenRecursive(n Node, path string, depth int, result *[]FlatNode) {
	*result = append(*result, FlatNode{Attributes: n.Attributes, Path: path, Depth: depth})
	for i, child := range n.Children {
		flattenRecursive(child, path+"/"+strconv.Itoa(i), depth+1, result)
	}
}

// Lookup returns the node at the given Flatten path.
func Lookup(roots []Node, path string) (*Node, bool) {
	cur := roots
	var found *Node
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '/' {
			continue
		}
		idx, err := strconv.Atoi(path[start:i])
		if err != nil || idx < 0 || idx >= len(cur) {
			return nil, false
		}
		found = &cur[idx]
		cur = found.Children
		start = i + 1
	}
	return found, found != nil
}

// Reindex assigns each node its position among its siblings.
func Reindex(nodes []Node) {
	for i := range nodes {
		nodes[i].Index = i
		Reindex(nodes[i].Children)
	}
}
