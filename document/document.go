// Package document holds the in-memory tree every loader produces. Trees
// are built once by a loader and only read afterwards, so a single tree may
// be handed to one worker without copying.
package document

import "strings"

// Kind distinguishes the synthetic document root from elements.
type Kind int

const (
	KindDocument Kind = iota
	KindElement
)

// Node is a document root or an element.
type Node struct {
	Kind     Kind
	Name     string // empty for the document root
	Text     string // first non-blank text content directly under the element
	Parent   *Node
	Children []*Node
}

// New returns an empty document root.
func New() *Node {
	return &Node{Kind: KindDocument}
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == KindElement
}

// AppendElement adds a child element called name and returns it.
func (n *Node) AppendElement(name string) *Node {
	child := &Node{Kind: KindElement, Name: name, Parent: n}
	n.Children = append(n.Children, child)
	return child
}

// AppendText records text as the element's value unless one is already set.
// Whitespace-only text never becomes the value.
func (n *Node) AppendText(text string) {
	if n.Text != "" || strings.TrimSpace(text) == "" {
		return
	}
	n.Text = text
}

// HasChild reports whether n has a direct child element called name.
func (n *Node) HasChild(name string) bool {
	for _, c := range n.Children {
		if c.Kind == KindElement && c.Name == name {
			return true
		}
	}
	return false
}

// Path returns the element names from the root down to n, dot-joined.
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil && cur.Kind == KindElement; cur = cur.Parent {
		names = append(names, cur.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, ".")
}
