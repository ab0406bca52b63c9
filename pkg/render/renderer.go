package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vango-dev/hermes/pkg/dom"
)

// IDAttr is the attribute carrying node IDs when IncludeIDs is set.
const IDAttr = "data-nid"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Only for humans.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// IncludeIDs writes each element's node ID as a data-nid attribute.
	IncludeIDs bool
}

// Renderer writes dom trees as HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders node and its subtree to a string.
func (r *Renderer) RenderToString(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams node and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *dom.Node) error {
	return r.renderNode(w, node, 0)
}

// String renders node with the zero configuration, ignoring errors.
// Handy in logs and tests.
func String(node *dom.Node) string {
	s, _ := NewRenderer(RendererConfig{}).RenderToString(node)
	return s
}

func (r *Renderer) renderNode(w io.Writer, node *dom.Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind() {
	case dom.KindElement:
		return r.renderElement(w, node, depth)
	case dom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text()))
		return err
	default:
		return fmt.Errorf("render: unknown node kind: %d", node.Kind())
	}
}

func (r *Renderer) renderElement(w io.Writer, node *dom.Node, depth int) error {
	tag := node.Tag()

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}

	if isVoidElement(tag) {
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	children := node.Children()
	hasBlockChildren := len(node.ElementChildren()) > 0
	if r.config.Pretty && hasBlockChildren {
		io.WriteString(w, "\n")
	}

	for _, child := range children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}

	if r.config.Pretty && hasBlockChildren {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

func (r *Renderer) renderAttributes(w io.Writer, node *dom.Node) error {
	if r.config.IncludeIDs {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, IDAttr, escapeAttr(node.ID())); err != nil {
			return err
		}
	}

	if class := node.ClassName(); class != "" {
		if _, err := fmt.Fprintf(w, ` class="%s"`, escapeAttr(class)); err != nil {
			return err
		}
	}

	for _, key := range node.AttrKeys() {
		if key == "class" || (r.config.IncludeIDs && key == IDAttr) {
			continue
		}
		value, _ := node.Attr(key)
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(value)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}

// isVoidElement reports whether tag never has children or a closing tag.
func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "source", "track", "wbr":
		return true
	}
	return false
}
