package dom

import (
	"sort"
	"strings"

	"github.com/vango-dev/hermes/pkg/surface"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <ul>, <li>, etc.
	KindText                // Plain text node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Node is an element or text node. It implements surface.Element.
type Node struct {
	doc       *Document
	kind      Kind
	id        string
	tag       string
	text      string
	classes   []string
	attrs     map[string]string
	parent    *Node
	children  []*Node
	listeners map[string][]*listener
}

var _ surface.Element = (*Node)(nil)

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// ID implements surface.Element.
func (n *Node) ID() string { return n.id }

// Tag implements surface.Element. Text nodes have an empty tag.
func (n *Node) Tag() string { return n.tag }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Children returns the child nodes, including text nodes.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ElementChildren returns only the element children.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == KindElement {
			out = append(out, c)
		}
	}
	return out
}

// Connected reports whether n is attached to the document body.
func (n *Node) Connected() bool {
	for p := n; p != nil; p = p.parent {
		if p == n.doc.body {
			return true
		}
	}
	return false
}

// AddClass implements surface.Element. Duplicates and empty names are ignored.
func (n *Node) AddClass(classes ...string) {
	var added []string
	for _, c := range classes {
		if c == "" || n.HasClass(c) {
			continue
		}
		n.classes = append(n.classes, c)
		added = append(added, c)
	}
	if len(added) > 0 && n.Connected() {
		n.doc.notify(Mutation{Op: MutationAddClass, ID: n.id, Classes: added})
	}
}

// RemoveClass implements surface.Element.
func (n *Node) RemoveClass(classes ...string) {
	var removed []string
	for _, c := range classes {
		for i, have := range n.classes {
			if have == c {
				n.classes = append(n.classes[:i], n.classes[i+1:]...)
				removed = append(removed, c)
				break
			}
		}
	}
	if len(removed) > 0 && n.Connected() {
		n.doc.notify(Mutation{Op: MutationRemoveClass, ID: n.id, Classes: removed})
	}
}

// HasClass implements surface.Element.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

// Classes implements surface.Element. The result is in insertion order.
func (n *Node) Classes() []string {
	return append([]string(nil), n.classes...)
}

// ClassName returns the classes joined by spaces, as in a class attribute.
func (n *Node) ClassName() string {
	return strings.Join(n.classes, " ")
}

// SetAttr implements surface.Element.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
	if n.Connected() {
		n.doc.notify(Mutation{Op: MutationSetAttr, ID: n.id, Key: key, Value: value})
	}
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// AttrKeys returns the attribute names in sorted order.
func (n *Node) AttrKeys() []string {
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetText implements surface.Element.
func (n *Node) SetText(text string) {
	if n.kind == KindText {
		n.text = text
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	t := n.doc.NewText(text)
	t.parent = n
	n.children = []*Node{t}
	if n.Connected() {
		n.doc.notify(Mutation{Op: MutationSetText, ID: n.id, Value: text})
	}
}

// Text implements surface.Element.
func (n *Node) Text() string {
	if n.kind == KindText {
		return n.text
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.Text())
	}
	return b.String()
}

// AppendChild implements surface.Element.
func (n *Node) AppendChild(child surface.Element) {
	n.InsertBefore(child, nil)
}

// InsertBefore implements surface.Element. When ref is not a child of n
// the child is appended.
func (n *Node) InsertBefore(child, ref surface.Element) {
	c := asNode(child)
	r := asNode(ref)
	if c == nil || c == n {
		return
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}

	idx := len(n.children)
	if r != nil {
		for i, existing := range n.children {
			if existing == r {
				idx = i
				break
			}
		}
	}

	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = c
	c.parent = n

	if n.Connected() {
		m := Mutation{Op: MutationInsertNode, ID: c.id, ParentID: n.id, Node: c}
		if idx+1 < len(n.children) {
			m.BeforeID = n.children[idx+1].id
		}
		n.doc.notify(m)
	}
}

// FirstChild implements surface.Element. It returns the first element
// child, skipping text nodes.
func (n *Node) FirstChild() surface.Element {
	for _, c := range n.children {
		if c.kind == KindElement {
			return c
		}
	}
	return nil
}

// RemoveChild implements surface.Element. Removing a node that is not a
// child of n does nothing.
func (n *Node) RemoveChild(child surface.Element) {
	c := asNode(child)
	if c == nil || c.parent != n {
		return
	}
	connected := n.Connected()
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	c.parent = nil
	if connected {
		n.doc.notify(Mutation{Op: MutationRemoveNode, ID: c.id})
	}
}

// Parent implements surface.Element.
func (n *Node) Parent() surface.Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// ParentNode returns the parent as a *Node.
func (n *Node) ParentNode() *Node { return n.parent }

// walk visits n and its descendants depth-first until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
