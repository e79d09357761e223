package extraction

import "sort"

// ArrayElement is the path segment recorded for array members.
const ArrayElement = "[]"

// Node is one value reached while walking a decoded JSON document.
type Node struct {
	// Path holds the object keys from the root, with ArrayElement for array members.
	Path  []string
	Value any
	Depth int
}

// Object returns the node as a JSON object.
func (n Node) Object() (map[string]any, bool) {
	m, ok := n.Value.(map[string]any)
	return m, ok
}

// Key is the last object key on the path, skipping array markers.
func (n Node) Key() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] != ArrayElement {
			return n.Path[i]
		}
	}
	return ""
}

// Walk visits every node of doc depth-first in pre-order, up to maxDepth levels
// below the root. Object keys are visited in sorted order so results are
// deterministic. Returning false from visit skips the node's children.
func Walk(doc any, maxDepth int, visit func(Node) bool) {
	walk(doc, nil, 0, maxDepth, visit)
}

func walk(v any, path []string, depth, maxDepth int, visit func(Node) bool) {
	if depth > maxDepth {
		return
	}
	if !visit(Node{Path: path, Value: v, Depth: depth}) {
		return
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(t[k], appendPath(path, k), depth+1, maxDepth, visit)
		}
	case []any:
		child := appendPath(path, ArrayElement)
		for _, item := range t {
			walk(item, child, depth+1, maxDepth, visit)
		}
	}
}

// appendPath never shares a backing array between siblings.
func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}
