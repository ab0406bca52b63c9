package dom

import (
	"strconv"

	"github.com/vango-dev/hermes/pkg/surface"
)

// Document owns a tree of nodes rooted at a body element.
type Document struct {
	body      *Node
	counter   uint64
	observers []*observerEntry
}

type observerEntry struct {
	fn Observer
}

// NewDocument creates an empty document with a body element.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.newNode(KindElement, "body")
	return d
}

// Body returns the root element. It is always connected.
func (d *Document) Body() *Node {
	return d.body
}

// CreateElement implements surface.Surface.
func (d *Document) CreateElement(tag string) surface.Element {
	return d.NewElement(tag)
}

// NewElement creates a detached element node.
func (d *Document) NewElement(tag string) *Node {
	return d.newNode(KindElement, tag)
}

// NewText creates a detached text node.
func (d *Document) NewText(text string) *Node {
	n := d.newNode(KindText, "")
	n.text = text
	return n
}

func (d *Document) newNode(kind Kind, tag string) *Node {
	d.counter++
	return &Node{
		doc:  d,
		kind: kind,
		id:   "n" + strconv.FormatUint(d.counter, 10),
		tag:  tag,
	}
}

// ByID finds a connected node by its ID.
func (d *Document) ByID(id string) *Node {
	var found *Node
	d.body.walk(func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Observe registers fn to receive mutations of connected nodes.
// The returned function unregisters it.
func (d *Document) Observe(fn Observer) func() {
	e := &observerEntry{fn: fn}
	d.observers = append(d.observers, e)
	return func() {
		for i, other := range d.observers {
			if other == e {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) notify(m Mutation) {
	for _, o := range d.observers {
		o.fn(m)
	}
}

// asNode converts a surface element back to a node of this package.
func asNode(el surface.Element) *Node {
	if el == nil {
		return nil
	}
	n, ok := el.(*Node)
	if !ok {
		panic("dom: element not created by this package")
	}
	return n
}
