package feedsync

import "strings"

// Node is one element of a normalized feed document.
//
// Children are always grouped into slices keyed by element name, so an element
// that appears once is still reachable as a one-element list. Attributes are
// not kept. All accessors are safe on a nil *Node and return zero values.
type Node struct {
	Name     string
	Text     string
	children map[string][]*Node
	order    []string
	// content interleaves text runs and children in document order
	content  []contentPart
	hasText  bool
}

type contentPart struct {
	text  string
	child *Node
}

// NewNode creates an empty node with the given element name
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddChild appends a child element
func (n *Node) AddChild(child *Node) {
	if n.children == nil {
		n.children = make(map[string][]*Node)
	}
	if _, seen := n.children[child.Name]; !seen {
		n.order = append(n.order, child.Name)
	}
	n.children[child.Name] = append(n.children[child.Name], child)
	n.content = append(n.content, contentPart{child: child})
}

// AppendText records a run of character data at the current position, so
// DeepText can interleave it with the surrounding child elements. Blank runs
// are ignored. Text is not changed.
func (n *Node) AppendText(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	n.content = append(n.content, contentPart{text: s})
	n.hasText = true
}

// All returns every direct child with the given name
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// Child returns the first direct child with the given name, or nil
func (n *Node) Child(name string) *Node {
	all := n.All(name)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// Has reports whether at least one child with the given name exists
func (n *Node) Has(name string) bool {
	return len(n.All(name)) > 0
}

// Path walks the given element names and returns every node reached.
// Repeated elements fan out, so Path("Urunler", "Urun") on a document with
// two Urunler blocks returns the Urun items of both.
func (n *Node) Path(names ...string) []*Node {
	if n == nil {
		return nil
	}
	current := []*Node{n}
	for _, name := range names {
		var next []*Node
		for _, node := range current {
			next = append(next, node.All(name)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Value returns the trimmed text of the first child with the given name
func (n *Node) Value(name string) string {
	child := n.Child(name)
	if child == nil {
		return ""
	}
	return child.Text
}

// FirstValue returns the first non-empty Value among the given names
func (n *Node) FirstValue(names ...string) string {
	for _, name := range names {
		if v := n.Value(name); v != "" {
			return v
		}
	}
	return ""
}

// Values returns the non-empty texts of every child with the given name
func (n *Node) Values(name string) []string {
	all := n.All(name)
	values := make([]string, 0, len(all))
	for _, child := range all {
		if child.Text != "" {
			values = append(values, child.Text)
		}
	}
	return values
}

// ChildNames returns the distinct child element names in document order
func (n *Node) ChildNames() []string {
	if n == nil {
		return nil
	}
	names := make([]string, len(n.order))
	copy(names, n.order)
	return names
}

// DeepText returns the text of the node and all its descendants in document
// order, with whitespace collapsed to single spaces. It recovers the content
// of fields whose markup was not wrapped in CDATA and was parsed as child
// elements. For nodes built without AppendText, the node's own Text comes
// before its children.
func (n *Node) DeepText() string {
	if n == nil {
		return ""
	}
	var parts []string
	n.collectText(&parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func (n *Node) collectText(parts *[]string) {
	if !n.hasText && n.Text != "" {
		*parts = append(*parts, n.Text)
	}
	for _, part := range n.content {
		if part.child != nil {
			part.child.collectText(parts)
			continue
		}
		*parts = append(*parts, part.text)
	}
}
