// Package diagtree traverses diagnostics trace trees
package diagtree

import "github.com/yildizm/DiagSum/internal/parser"

// Flatten returns root and all of its descendants in pre-order. Nil children
// are skipped. Traversal uses an explicit stack so arbitrarily deep trees do
// not grow the goroutine stack.
func Flatten(root *parser.Record) []*parser.Record {
	var nodes []*parser.Record
	Walk(root, func(r *parser.Record) bool {
		nodes = append(nodes, r)
		return true
	})
	return nodes
}

// Walk visits root and its descendants in pre-order until fn returns false
func Walk(root *parser.Record, fn func(*parser.Record) bool) {
	if root == nil {
		return
	}

	stack := []*parser.Record{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(node) {
			return
		}

		// push in reverse so the first child is visited first
		for i := len(node.Children) - 1; i >= 0; i-- {
			if child := node.Children[i]; child != nil {
				stack = append(stack, child)
			}
		}
	}
}

// Find returns the first node in pre-order for which match returns true
func Find(root *parser.Record, match func(*parser.Record) bool) *parser.Record {
	var found *parser.Record
	Walk(root, func(r *parser.Record) bool {
		if match(r) {
			found = r
			return false
		}
		return true
	})
	return found
}

// WithRequestStats returns the nodes that carry client side request stats
func WithRequestStats(root *parser.Record) []*parser.Record {
	var nodes []*parser.Record
	Walk(root, func(r *parser.Record) bool {
		if r.Data != nil && r.Data.RequestStats != nil {
			nodes = append(nodes, r)
		}
		return true
	})
	return nodes
}
