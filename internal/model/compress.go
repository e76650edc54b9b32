package model

// isEmptyContainer returns true if the node carries nothing a client could
// select on or interact with: no text, id, or description, and no input
// capability.
func isEmptyContainer(n Node) bool {
	return n.Text == "" && n.ResourceID == "" && n.ContentDesc == "" && !n.Interactive()
}

// Compress removes structural-only container nodes from a tree, promoting
// their children to the parent. Top-level roots are always kept so the
// result still has one node per window.
func Compress(roots []Node) []Node {
	result := make([]Node, 0, len(roots))
	for _, root := range roots {
		kept := root
		kept.Children = pruneChildren(root.Children)
		result = append(result, kept)
	}
	Reindex(result)
	return result
}

func pruneChildren(nodes []Node) []Node {
	var result []Node
	for _, n := range nodes {
		pruned := pruneChildren(n.Children)
		if isEmptyContainer(n) {
			result = append(result, pruned...)
			continue
		}
		kept := n
		kept.Children = pruned
		result = append(result, kept)
	}
	return result
}
