package engine

import "github.com/razeghi71/xmlq/document"

// FindExact returns the first element below node, in document order, whose
// name equals name. node itself is never returned.
func FindExact(node *document.Node, name string) *document.Node {
	for _, c := range node.Children {
		if c.IsElement() && c.Name == name {
			return c
		}
		if found := FindExact(c, name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll appends every element below node named name to acc, in document order.
func FindAll(node *document.Node, name string, acc []*document.Node) []*document.Node {
	for _, c := range node.Children {
		if c.IsElement() && c.Name == name {
			acc = append(acc, c)
		}
		acc = FindAll(c, name, acc)
	}
	return acc
}

// FindByPartialPath returns every element below root whose name is the last
// component and whose ancestors, up to and including root, contain the
// remaining components in order. Intervening ancestors are allowed, so
// order.total matches invoice/order/total and order/lines/total alike.
func FindByPartialPath(root *document.Node, components []string) []*document.Node {
	if len(components) == 0 {
		return nil
	}
	return collectPartial(root, root, components, nil)
}

func collectPartial(root, node *document.Node, components []string, acc []*document.Node) []*document.Node {
	for _, c := range node.Children {
		if matchesSuffix(root, c, components) {
			acc = append(acc, c)
		}
		acc = collectPartial(root, c, components, acc)
	}
	return acc
}

// firstByPartialPath is FindByPartialPath(root, components)[0] without
// walking the rest of the tree.
func firstByPartialPath(root *document.Node, components []string) *document.Node {
	if len(components) == 0 {
		return nil
	}
	return findFirstPartial(root, root, components)
}

func findFirstPartial(root, node *document.Node, components []string) *document.Node {
	for _, c := range node.Children {
		if matchesSuffix(root, c, components) {
			return c
		}
		if found := findFirstPartial(root, c, components); found != nil {
			return found
		}
	}
	return nil
}

// matchesSuffix matches components greedily right to left against n and its
// ancestor chain, stopping after root.
func matchesSuffix(root, n *document.Node, components []string) bool {
	last := len(components) - 1
	if !n.IsElement() || n.Name != components[last] {
		return false
	}
	i := last - 1
	for a := n.Parent; i >= 0 && a != nil; a = a.Parent {
		if a.IsElement() && a.Name == components[i] {
			i--
		}
		if a == root {
			break
		}
	}
	return i < 0
}

// CountMatchingPaths counts the partial-path matches of components in doc.
func CountMatchingPaths(doc *document.Node, components []string) int {
	return len(FindByPartialPath(doc, components))
}

// resolve finds the node a field path designates relative to node: a name
// search for single components, the first partial-path match otherwise.
func resolve(node *document.Node, components []string) *document.Node {
	switch len(components) {
	case 0:
		return nil
	case 1:
		return FindExact(node, components[0])
	default:
		return firstByPartialPath(node, components)
	}
}

// resolveAll is resolve returning every match instead of the first.
func resolveAll(node *document.Node, components []string) []*document.Node {
	if len(components) == 1 {
		return FindAll(node, components[0], nil)
	}
	return FindByPartialPath(node, components)
}
