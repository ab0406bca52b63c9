// Package dom is a small mutable element tree that implements the
// render surface contract from pkg/surface.
//
// Nodes carry a tag, an ordered class list, attributes, text and children.
// Events fired on a node bubble to its ancestors until a listener stops
// propagation. Every change to a node that is connected to the document body
// is reported to mutation observers, which is how pkg/live mirrors the tree
// into a browser.
//
// # Usage
//
//	doc := dom.NewDocument()
//	li := doc.NewElement("li")
//	li.AddClass("toast", "toast-in")
//	doc.Body().AppendChild(li)
//
//	li.AddEventListener("transitionend", func(e surface.Event) {
//	    e.StopPropagation()
//	})
//	li.Fire("transitionend")
//
// A Document is not safe for concurrent use. Like the notifier that drives
// it, it belongs to a single event loop.
package dom
