// Package render converts pkg/dom trees into HTML.
//
// Text and attribute values are escaped, classes are written as a single
// class attribute in insertion order, and other attributes are written in
// sorted order so output is deterministic.
//
//	r := render.NewRenderer(render.RendererConfig{IncludeIDs: true})
//	html, err := r.RenderToString(doc.Body())
//
// IncludeIDs adds a data-nid attribute carrying each element's node ID. The
// live client uses it to route patches and end signals back to nodes.
package render
