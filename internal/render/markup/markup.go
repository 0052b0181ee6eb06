// Package markup builds the HTML fragment trees produced by the card
// renderers. Fragments are composed as values (so attachment maps can
// travel alongside them) and serialized to HTML only at the outermost
// caller.
package markup

import (
	"html"
	"sort"
	"strings"
)

// Node is one element of a fragment tree. A node with a non-empty Text
// and no Tag is a text leaf; everything else is an element.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Style    map[string]string
	Children []*Node
	Text     string
}

// El builds an element node.
func El(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Children: children}
}

// Text builds a text leaf. Content is escaped at serialization time.
func Text(s string) *Node {
	return &Node{Text: s}
}

// Attr sets an attribute and returns the node for chaining.
func (n *Node) Attr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[key] = value
	return n
}

// Styled sets inline style properties from alternating key/value pairs.
func (n *Node) Styled(kv ...string) *Node {
	if n.Style == nil {
		n.Style = map[string]string{}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Style[kv[i]] = kv[i+1]
	}
	return n
}

// Append adds children and returns the node for chaining.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// voidTags are serialized without a closing tag.
var voidTags = map[string]bool{
	"img": true,
	"br":  true,
	"hr":  true,
}

// Render serializes the tree to HTML. Attribute order is deterministic
// (sorted) so output is stable across renders of identical input.
func (n *Node) Render() string {
	var b strings.Builder
	n.writeTo(&b)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		b.WriteString(html.EscapeString(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)

	for _, key := range sortedKeys(n.Attrs) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.Attrs[key]))
		b.WriteByte('"')
	}

	if len(n.Style) > 0 {
		b.WriteString(` style="`)
		for i, key := range sortedKeys(n.Style) {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(html.EscapeString(key))
			b.WriteString(": ")
			b.WriteString(html.EscapeString(n.Style[key]))
		}
		b.WriteByte('"')
	}

	if voidTags[n.Tag] {
		b.WriteString("/>")
		return
	}

	b.WriteByte('>')
	for _, child := range n.Children {
		child.writeTo(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// PlainText returns the concatenated text content of the tree, useful
// for terminal previews and tests.
func (n *Node) PlainText() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		b.WriteString(n.Text)
		return
	}
	for _, child := range n.Children {
		child.collectText(b)
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
